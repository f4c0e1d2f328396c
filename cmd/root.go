// Package cmd implements the command-line interface for the organization
// classifier.
package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/chsoares/org-classifier/internal/config"
)

var (
	// cfgFile holds the path to the configuration file.
	cfgFile string

	// debug enables debug logging for all commands.
	debug bool

	rootCmd = &cobra.Command{
		Use:   "org-classifier",
		Short: "Classify organizations as insurance or non-insurance",
		Long: `org-classifier resolves an organization's website, extracts
descriptive content from it and asks a language model whether the
organization operates in the insurance industry. Every stage is cached
on disk, so interrupted runs resume where they stopped.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
)

// Execute runs the root command.
func Execute() error {
	// Load .env early so environment variables are visible to viper.
	_ = godotenv.Load()

	if err := initConfig(); err != nil {
		return fmt.Errorf("initializing configuration: %w", err)
	}

	return rootCmd.ExecuteContext(context.Background())
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"config file (default is ./config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("org-classifier version %s\n", "1.0.0")
		},
	})

	rootCmd.AddCommand(newProcessCommand())
	rootCmd.AddCommand(newClassifyCommand())
	rootCmd.AddCommand(newCacheCommand())
}

// initConfig reads the config file and environment variables into viper.
// The config file is optional: defaults plus environment variables are a
// complete configuration.
func initConfig() error {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("./config")
	}

	config.SetDefaults(viper.GetViper())

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && cfgFile != "" {
			return fmt.Errorf("reading config file: %w", err)
		}
	}

	if debug {
		viper.Set("log.level", "debug")
		viper.Set("log.development", true)
	}
	return nil
}

// loadConfig builds the typed configuration after flag parsing.
func loadConfig() (*config.Config, error) {
	return config.Load(viper.GetViper())
}
