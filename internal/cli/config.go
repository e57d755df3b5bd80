package cli

// Config holds the options shared by every command
type Config struct {
	// ConfigFile is the application configuration, relative to Root unless absolute
	ConfigFile string

	// Root is the directory namespaces are resolved against
	Root string

	// Out is the generated catalog path, <Root>/autogen_catalog.go when empty
	Out string

	// ModuleName overrides the import path of Root derived from go.mod
	ModuleName string

	// Verbose enables detailed logging
	Verbose bool

	// Quiet only shows errors and final results
	Quiet bool
}
