// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/rewriterc/cmd/rewriterc/commands"
	"github.com/walteh/rewriterc/cmd/rewriterc/opts"
)

const testConfig = `
root: src
extensions: [".js"]
passes:
  - name: theme
    exclude: ["legacy.js"]
    rules:
      - pattern: 'className="bg-white"'
        replacement: 'className="bg-card"'
`

// setupProject writes a config and a small source tree, returning the config path
func setupProject(t *testing.T) string {
	t.Helper()
	t.Setenv("REWRITERC_CONFIG", "")
	t.Setenv("REWRITERC_ROOT", "")
	t.Setenv("REWRITERC_DEBUG", "")

	dir := t.TempDir()
	src := filepath.Join(dir, "src")
	require.NoError(t, os.MkdirAll(src, 0o755), "creating src")

	files := map[string]string{
		"card.js":   `<div className="bg-white">`,
		"plain.js":  `<div className="p-4">`,
		"legacy.js": `<div className="bg-white">`,
		"notes.txt": `className="bg-white"`,
	}
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(src, name), []byte(content), 0o644), "writing %s", name)
	}

	cfgPath := filepath.Join(dir, ".rewriterc.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(testConfig), 0o644), "writing config")
	return cfgPath
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	color.NoColor = true
	var out bytes.Buffer
	cmd := newRootCmd(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	ctx := zerolog.New(zerolog.NewTestWriter(t)).WithContext(context.Background())
	err := cmd.ExecuteContext(ctx)
	return out.String(), err
}

func readSource(t *testing.T, cfgPath, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(filepath.Dir(cfgPath), "src", name))
	require.NoError(t, err, "reading %s", name)
	return string(data)
}

func TestRun(t *testing.T) {
	tests := []struct {
		name        string
		args        func(cfgPath string) []string
		errContains string
		validate    func(t *testing.T, cfgPath string)
	}{
		{
			name: "rewrites_eligible_files",
			args: func(cfgPath string) []string { return []string{"run", "-c", cfgPath} },
			validate: func(t *testing.T, cfgPath string) {
				assert.Equal(t, `<div className="bg-card">`, readSource(t, cfgPath, "card.js"), "card should be rewritten")
				assert.Equal(t, `<div className="p-4">`, readSource(t, cfgPath, "plain.js"), "plain should be untouched")
				assert.Equal(t, `<div className="bg-white">`, readSource(t, cfgPath, "legacy.js"), "excluded file should be untouched")
				assert.Equal(t, `className="bg-white"`, readSource(t, cfgPath, "notes.txt"), "other extensions should be untouched")
			},
		},
		{
			name: "dry_run_writes_nothing",
			args: func(cfgPath string) []string { return []string{"run", "-c", cfgPath, "--dry-run", "--diff"} },
			validate: func(t *testing.T, cfgPath string) {
				assert.Equal(t, `<div className="bg-white">`, readSource(t, cfgPath, "card.js"), "dry run should not write")
			},
		},
		{
			name: "explicit_files",
			args: func(cfgPath string) []string { return []string{"run", "-c", cfgPath, "legacy.js"} },
			validate: func(t *testing.T, cfgPath string) {
				assert.Equal(t, `<div className="bg-white">`, readSource(t, cfgPath, "card.js"), "unlisted file should be untouched")
				assert.Equal(t, `<div className="bg-white">`, readSource(t, cfgPath, "legacy.js"), "listed files are still excluded")
			},
		},
		{
			name: "root_override",
			args: func(cfgPath string) []string {
				return []string{"run", "-c", cfgPath, "-r", filepath.Dir(cfgPath)}
			},
			validate: func(t *testing.T, cfgPath string) {
				assert.Equal(t, `<div className="bg-white">`, readSource(t, cfgPath, "card.js"), "non-recursive run at the parent should not reach src")
			},
		},
		{
			name:        "missing_config",
			args:        func(cfgPath string) []string { return []string{"run", "-c", cfgPath + ".missing"} },
			errContains: "loading config",
		},
		{
			name: "missing_root",
			args: func(cfgPath string) []string {
				return []string{"run", "-c", cfgPath, "-r", filepath.Join(filepath.Dir(cfgPath), "nope")}
			},
			errContains: "checking root",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfgPath := setupProject(t)

			_, err := execute(t, tt.args(cfgPath)...)
			if tt.errContains != "" {
				require.Error(t, err, "expected an error")
				assert.Contains(t, err.Error(), tt.errContains, "error message should match")
				return
			}
			require.NoError(t, err, "running command")
			if tt.validate != nil {
				tt.validate(t, cfgPath)
			}
		})
	}
}

func TestCheck(t *testing.T) {
	cfgPath := setupProject(t)

	_, err := execute(t, "check", "-c", cfgPath)
	require.Error(t, err, "check should fail while files would change")
	assert.ErrorIs(t, err, commands.ErrChangesPending, "check should report pending changes")
	assert.Equal(t, `<div className="bg-white">`, readSource(t, cfgPath, "card.js"), "check should not write")

	_, err = execute(t, "run", "-c", cfgPath)
	require.NoError(t, err, "running rewrite")

	_, err = execute(t, "check", "-c", cfgPath)
	assert.NoError(t, err, "check should pass once the tree is rewritten")
}

func TestRunOutput(t *testing.T) {
	cfgPath := setupProject(t)

	out, err := execute(t, "run", "-c", cfgPath, "--dry-run", "--diff")
	require.NoError(t, err, "dry run")
	assert.Contains(t, out, "checking files", "dry run header")
	assert.Contains(t, out, `+<div className="bg-card">`, "patch should be printed")
	assert.Contains(t, out, "1/3 files would change", "summary verdict")
}

func TestConfigFromEnvironment(t *testing.T) {
	cfgPath := setupProject(t)
	t.Setenv("REWRITERC_CONFIG", cfgPath)

	_, err := execute(t, "run")
	require.NoError(t, err, "running with config from environment")
	assert.Equal(t, `<div className="bg-card">`, readSource(t, cfgPath, "card.js"), "card should be rewritten")
}

func TestClean(t *testing.T) {
	cfgPath := setupProject(t)
	leftover := filepath.Join(filepath.Dir(cfgPath), "src", ".card.js.tmp-1234")
	require.NoError(t, os.WriteFile(leftover, []byte("partial"), 0o600), "writing leftover")

	out, err := execute(t, "clean", "-c", cfgPath)
	require.NoError(t, err, "cleaning")
	assert.Contains(t, out, "cleaning temp files", "clean should print its header")
	assert.Contains(t, out, "Removed 1 temp files", "clean should report the count")

	_, err = os.Stat(leftover)
	assert.True(t, os.IsNotExist(err), "leftover should be removed")
	assert.Equal(t, `<div className="bg-white">`, readSource(t, cfgPath, "card.js"), "sources should be untouched")
}

func TestVersion(t *testing.T) {
	t.Setenv("REWRITERC_CONFIG", filepath.Join(t.TempDir(), "missing.yaml"))

	out, err := execute(t, "version")
	require.NoError(t, err, "version should not need a config")
	assert.Contains(t, out, "rewriterc version info", "version output")

	out, err = execute(t, "version", "--json")
	require.NoError(t, err, "version --json")
	assert.Contains(t, out, `"go_version"`, "json output")
}

func TestSessionRequiresConfig(t *testing.T) {
	_, err := (&opts.RootOpts{}).Session(nil)
	assert.Error(t, err, "a session without config should fail")
}
