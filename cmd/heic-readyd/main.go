// Command heic-readyd watches configured folders and converts HEIC/HEIF
// images to JPEG in place. Run without arguments to see available
// subcommands.
package main

import (
	"errors"
	"fmt"
	"os"
)

func main() {
	if err := Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		var validationErr *ValidationError
		if errors.As(err, &validationErr) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}
