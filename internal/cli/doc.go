// Package cli provides command-line interface setup and configuration
// for the frwolof application. It handles flag parsing, command creation,
// configuration management using cobra and viper, the process logger and
// interactive prompts.
package cli
