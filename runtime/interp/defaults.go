package interp

// DefaultRegistry returns a registry holding every built-in command.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	registerStackCommands(r)
	registerExprCommands(r)
	registerDocumentCommands(r)
	registerModeCommands(r)
	registerEntryCommands(r)
	registerDissectCommands(r)
	return r
}
