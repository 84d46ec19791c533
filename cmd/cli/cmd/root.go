package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "synctl",
	Short: "Catalog sync control tool",
	Long: `synctl talks to the catsync controller API to trigger catalog
synchronizations, import individual products, and inspect job status,
product mappings and tenant settings.

The controller URL and API token can be set via flags, the
CATSYNC_URL and CATSYNC_TOKEN environment variables, or a config
file at $HOME/.synctl.yaml.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.synctl.yaml)")
	rootCmd.PersistentFlags().String("url", "http://localhost:6161", "controller API URL")
	rootCmd.PersistentFlags().StringP("token", "t", "", "tenant API token")

	viper.BindPFlag("url", rootCmd.PersistentFlags().Lookup("url"))
	viper.BindPFlag("token", rootCmd.PersistentFlags().Lookup("token"))
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
			viper.SetConfigType("yaml")
			viper.SetConfigName(".synctl")
		}
	}

	viper.SetEnvPrefix("CATSYNC")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}
