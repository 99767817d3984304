// Package options defines the generic options contract shared by all
// docqa configuration blocks.
package options

import (
	"strings"

	"github.com/spf13/pflag"
)

// Join concatenates flag-name prefixes with "." and appends a trailing "."
// when the result is non-empty, producing names like "milvus.address" or
// "serve.milvus.address".
func Join(prefixes ...string) string {
	joined := strings.Join(prefixes, ".")
	if joined != "" {
		joined += "."
	}
	return joined
}

// IOptions is implemented by every configuration block.
type IOptions interface {
	// Validate validates the options and may complete missing defaults.
	Validate() []error

	// AddFlags registers the block's flags on the given flagset.
	AddFlags(fs *pflag.FlagSet, prefixes ...string)
}
