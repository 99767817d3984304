package app

import "github.com/spf13/pflag"

// CliOptions is the interface an application's options struct implements to
// participate in flag registration, config unmarshalling and validation.
type CliOptions interface {
	// AddFlags adds flags to the flagset.
	AddFlags(fs *pflag.FlagSet)
	// Complete completes the options with defaults.
	Complete() error
	// Validate validates the options.
	Validate() error
}
