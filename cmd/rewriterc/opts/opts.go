package opts

import (
	"github.com/walteh/rewriterc/pkg/config"
	"github.com/walteh/rewriterc/pkg/operation"
	"gitlab.com/tozd/go/errors"
)

// RootOpts contains shared options used by all commands
type RootOpts struct {
	Config  *config.Config
	Options operation.Options
	Root    string
}

// Session creates a session from the compiled options. Each command tweaks
// its own copy through with, so one command never leaks flags into another.
func (o *RootOpts) Session(with func(*operation.Options)) (*operation.Session, error) {
	if o == nil || o.Config == nil {
		return nil, errors.New("configuration not loaded")
	}
	opts := o.Options
	if with != nil {
		with(&opts)
	}
	return operation.New(opts)
}

// PassNames lists the configured passes in run order
func (o *RootOpts) PassNames() []string {
	names := make([]string, 0, len(o.Options.Passes))
	for _, p := range o.Options.Passes {
		names = append(names, p.Name)
	}
	return names
}
