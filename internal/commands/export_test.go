package commands

// SetStdinIsTerminal overrides terminal detection and returns a restore func.
func SetStdinIsTerminal(v bool) func() {
	prev := stdinIsTerminal
	stdinIsTerminal = func() bool { return v }
	return func() { stdinIsTerminal = prev }
}
