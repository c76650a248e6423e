package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/viper"
)

// PrintError prints a user-friendly message, or the underlying technical
// error when --verbose is set. It does not exit.
func PrintError(userMsg string, technicalErr error) {
	if viper.GetBool("verbose") && technicalErr != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", technicalErr)
	} else {
		fmt.Fprintln(os.Stderr, userMsg)
	}
}

// HandleFatalError prints like PrintError and exits with status 1.
func HandleFatalError(userMsg string, technicalErr error) {
	PrintError(userMsg, technicalErr)
	os.Exit(1)
}
