package text

import (
	"context"
	"fmt"
	"regexp"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// maxFixupPasses bounds the fixed-point loop over fix-up rules
const maxFixupPasses = 32

var (
	// ErrInvalidPattern is returned by Compile for a malformed rule
	ErrInvalidPattern = errors.Base("invalid pattern")
	// ErrFixupDiverged is returned by Apply when fix-ups keep changing content
	ErrFixupDiverged = errors.Base("fix-up rules did not converge")
)

// 🧭 ContextResolver selects a replacement fragment for a file path
type ContextResolver interface {
	Resolve(table, path string) (string, bool)
}

// 📊 ReplacementResult contains the results of applying a Table to one file
type ReplacementResult struct {
	// WasModified indicates the content differs from the original
	WasModified bool

	// ReplacementCount is the number of matches substituted
	ReplacementCount int

	// OriginalContent is the content before replacements
	OriginalContent []byte

	// ModifiedContent is the content after replacements and fix-ups
	ModifiedContent []byte

	// Applied lists rules that matched at least once, in order
	Applied []string

	// Guarded lists rules skipped because their guard reported them applied
	Guarded []string

	// NoContext lists rules skipped because the path had no context match
	NoContext []string
}

// 📚 Table is an ordered, compiled rule table
type Table struct {
	rules  []*Rule
	fixups []*Rule
}

// Compile validates and compiles rules and fix-ups. A malformed pattern
// fails the whole table.
func Compile(rules []RuleSpec, fixups []RuleSpec) (*Table, error) {
	t := &Table{
		rules:  make([]*Rule, 0, len(rules)),
		fixups: make([]*Rule, 0, len(fixups)),
	}

	for i, spec := range rules {
		r, err := compileRule(spec, fmt.Sprintf("rule[%d]", i))
		if err != nil {
			return nil, err
		}
		t.rules = append(t.rules, r)
	}

	for i, spec := range fixups {
		if spec.Context != "" {
			return nil, errors.Errorf("%w: fixup[%d]: fix-ups cannot use a path context", ErrInvalidPattern, i)
		}
		r, err := compileRule(spec, fmt.Sprintf("fixup[%d]", i))
		if err != nil {
			return nil, err
		}
		t.fixups = append(t.fixups, r)
	}

	return t, nil
}

// MustCompile is like Compile but panics on error
func MustCompile(rules []RuleSpec, fixups []RuleSpec) *Table {
	t, err := Compile(rules, fixups)
	if err != nil {
		panic(err)
	}
	return t
}

func compileRule(spec RuleSpec, fallbackName string) (*Rule, error) {
	name := spec.Name
	if name == "" {
		name = fallbackName
	}
	if spec.Pattern == "" {
		return nil, errors.Errorf("%w: %s: pattern is required", ErrInvalidPattern, name)
	}

	exprs := append([]string{spec.Pattern}, spec.Alternatives...)
	patterns := make([]*regexp.Regexp, 0, len(exprs))
	for _, expr := range exprs {
		if expr == "" {
			return nil, errors.Errorf("%w: %s: empty alternative", ErrInvalidPattern, name)
		}
		if spec.Literal {
			expr = regexp.QuoteMeta(expr)
		}
		re, err := compilePattern(expr)
		if err != nil {
			return nil, errors.Errorf("%s: %w", name, err)
		}
		patterns = append(patterns, re)
	}

	replacement := spec.Replacement
	if !spec.Literal {
		replacement = normalizeTemplate(replacement)
	}

	return &Rule{
		name:        name,
		patterns:    patterns,
		replacement: replacement,
		literal:     spec.Literal,
		guard:       spec.Guard,
		context:     spec.Context,
	}, nil
}

// Len returns the number of regular (non fix-up) rules
func (t *Table) Len() int {
	return len(t.rules)
}

// Contexts returns the distinct path-context names referenced by the table
func (t *Table) Contexts() []string {
	seen := map[string]bool{}
	var names []string
	for _, r := range t.rules {
		if r.context == "" || seen[r.context] {
			continue
		}
		seen[r.context] = true
		names = append(names, r.context)
	}
	return names
}

// Apply runs every rule in order over content and then iterates the fix-up
// rules to a fixed point. path is only used to resolve path contexts and for
// logging; resolver may be nil when no rule names a context.
func (t *Table) Apply(ctx context.Context, path string, content []byte, resolver ContextResolver) (*ReplacementResult, error) {
	logger := zerolog.Ctx(ctx).With().Str("file", path).Logger()

	result := &ReplacementResult{
		OriginalContent: content,
		ModifiedContent: content,
	}

	current := string(content)
	for _, r := range t.rules {
		var fragment string
		if r.context != "" {
			var ok bool
			if resolver != nil {
				fragment, ok = resolver.Resolve(r.context, path)
			}
			if !ok {
				logger.Debug().Str("rule", r.name).Str("context", r.context).Msg("no path-context match")
				result.NoContext = append(result.NoContext, r.name)
				continue
			}
		}

		if r.guard != nil {
			_, plain := r.template(fragment)
			if r.guard.Applied(plain, current) {
				logger.Debug().Str("rule", r.name).Msg("guard reports rule already applied")
				result.Guarded = append(result.Guarded, r.name)
				continue
			}
		}

		next, n := r.apply(current, fragment)
		if n == 0 {
			continue
		}

		logger.Debug().Str("rule", r.name).Int("matches", n).Msg("rule applied")
		result.ReplacementCount += n
		result.Applied = append(result.Applied, r.name)
		current = next
	}

	current, err := t.fixpoint(current, result)
	if err != nil {
		return nil, errors.Errorf("%s: %w", path, err)
	}

	result.ModifiedContent = []byte(current)
	result.WasModified = current != string(content)
	return result, nil
}

// fixpoint applies fix-ups until a full round leaves content unchanged
func (t *Table) fixpoint(current string, result *ReplacementResult) (string, error) {
	if len(t.fixups) == 0 {
		return current, nil
	}

	applied := map[string]bool{}
	for pass := 0; ; pass++ {
		if pass == maxFixupPasses {
			return "", errors.Errorf("%w after %d passes", ErrFixupDiverged, maxFixupPasses)
		}

		before := current
		for _, r := range t.fixups {
			if r.guard != nil && r.guard.Applied(r.replacement, current) {
				continue
			}
			next, n := r.apply(current, "")
			if next == current {
				continue
			}
			result.ReplacementCount += n
			if !applied[r.name] {
				applied[r.name] = true
				result.Applied = append(result.Applied, r.name)
			}
			current = next
		}

		if current == before {
			return current, nil
		}
	}
}
