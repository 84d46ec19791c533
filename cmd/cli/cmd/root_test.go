package cmd

import (
	"bytes"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

func resetViper() {
	viper.Reset()
}

// resetFlags clears flag values and their changed state, which otherwise
// leak between Execute calls in the same test binary.
func resetFlags(cmd *cobra.Command) {
	cmd.Flags().VisitAll(func(fl *pflag.Flag) {
		fl.Value.Set(fl.DefValue)
		fl.Changed = false
	})
}

func executeCommand(args ...string) (string, error) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}
