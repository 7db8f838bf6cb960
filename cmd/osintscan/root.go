package main

import (
	"context"

	"github.com/spf13/cobra"

	"osintscan/cmd/osintscan/app"
	"osintscan/cmd/osintscan/scan"
	"osintscan/cmd/osintscan/server"
)

func newRootCommand() *cobra.Command {
	opts := &app.Options{}

	rootCmd := &cobra.Command{
		Use:     "osintscan",
		Short:   "Concurrent OSINT reconnaissance for a target domain",
		Long:    `osintscan runs DNS probing, passive enumeration, theHarvester, WHOIS, IP resolution and social scraping against a domain and merges what they find`,
		Version: app.Version,
	}

	rootCmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "", "Path to a YAML configuration file")
	rootCmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "Enable verbose logging")

	rootCmd.AddCommand(scan.NewScanCommand(opts))
	rootCmd.AddCommand(scan.NewScansCommand(opts))
	rootCmd.AddCommand(server.NewServerCommand(opts))
	return rootCmd
}

func Execute() error {
	return newRootCommand().ExecuteContext(context.Background())
}
