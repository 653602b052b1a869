package commands

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"golang.org/x/term"
)

// errNoTTY is returned when a value is missing and there is no terminal to ask on.
var errNoTTY = errors.New("stdin is not a terminal")

// field is one value to collect from the user.
type field struct {
	title  string
	value  *string
	secret bool
}

// stdinIsTerminal is swapped in tests.
var stdinIsTerminal = func() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// promptMissing asks for every field whose value is still empty.
func promptMissing(fields ...field) error {
	var inputs []huh.Field
	for _, f := range fields {
		if *f.value != "" {
			continue
		}
		in := huh.NewInput().
			Title(f.title).
			Validate(required(f.title)).
			Value(f.value)
		if f.secret {
			in = in.EchoMode(huh.EchoModePassword)
		}
		inputs = append(inputs, in)
	}
	if len(inputs) == 0 {
		return nil
	}
	if !stdinIsTerminal() {
		return errNoTTY
	}
	return huh.NewForm(huh.NewGroup(inputs...)).Run()
}

func required(name string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", strings.ToLower(name))
		}
		return nil
	}
}
