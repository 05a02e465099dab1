// Command imprintsctl inspects persisted column imprint files.
//
//	imprintsctl info   FILE...   print the header of each file
//	imprintsctl dump   FILE      render the per-page bin masks
//	imprintsctl verify PATH...   fully decode files, or every file in a directory
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const (
	exitSuccess = 0
	exitError   = 1
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "imprintsctl",
		Short:         "Inspect column imprint files",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newInfoCmd(), newDumpCmd(), newVerifyCmd())
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(exitError)
	}
	os.Exit(exitSuccess)
}
