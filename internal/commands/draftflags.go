package commands

import (
	"flag"

	"taskman/internal/service"
)

// optionalString is a string flag that remembers whether it was given,
// so that an explicit empty value can be told apart from an absent one.
type optionalString struct {
	value string
	set   bool
}

func (o *optionalString) String() string { return o.value }

func (o *optionalString) Set(v string) error {
	o.value = v
	o.set = true
	return nil
}

// draftFlags are the task fields settable from the command line.
type draftFlags struct {
	title       optionalString
	description optionalString
	priority    optionalString
	status      optionalString
}

// register resets the flags and binds them to fs. Title is only a flag for
// commands that take it positionally otherwise.
func (f *draftFlags) register(fs *flag.FlagSet, withTitle bool) {
	*f = draftFlags{}
	if withTitle {
		fs.Var(&f.title, "title", "")
	}
	fs.Var(&f.description, "description", "")
	fs.Var(&f.description, "d", "")
	fs.Var(&f.priority, "priority", "")
	fs.Var(&f.priority, "p", "")
	fs.Var(&f.status, "status", "")
}

// apply overlays the given flags on d.
func (f *draftFlags) apply(d service.Draft) (service.Draft, error) {
	if f.title.set {
		d.Title = f.title.value
	}
	if f.description.set {
		d.Description = f.description.value
	}
	if f.priority.set {
		p, err := service.ParsePriority(f.priority.value)
		if err != nil {
			return d, err
		}
		d.Priority = p
	}
	if f.status.set {
		s, err := service.ParseStatus(f.status.value)
		if err != nil {
			return d, err
		}
		if s != "" {
			d.Status = s
		}
	}
	return d, nil
}

// changed reports whether at least one field was given.
func (f *draftFlags) changed() bool {
	return f.title.set || f.description.set || f.priority.set || f.status.set
}
