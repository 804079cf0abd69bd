package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:   "mle-monitor",
	Short: "Experiment protocol & resource monitoring CLI",
	Long: `A command line tool for tracking machine-learning experiments.
Records experiment metadata in a local protocol database, optionally mirrors
it to Google Cloud Storage and renders a live monitoring dashboard.`,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().String("protocol", "", "Protocol database file (overrides MLE_PROTOCOL_PATH)")
	rootCmd.PersistentFlags().Bool("gcs-sync", false, "Mirror the protocol database to GCS")
	rootCmd.PersistentFlags().String("project-name", "", "GCP project for cloud sync")
	rootCmd.PersistentFlags().String("bucket-name", "", "GCS bucket for cloud sync")
	viper.BindPFlag("protocol_path", rootCmd.PersistentFlags().Lookup("protocol"))
	viper.BindPFlag("use_gcs_sync", rootCmd.PersistentFlags().Lookup("gcs-sync"))
	viper.BindPFlag("project_name", rootCmd.PersistentFlags().Lookup("project-name"))
	viper.BindPFlag("bucket_name", rootCmd.PersistentFlags().Lookup("bucket-name"))
}

func initConfig() {
	// Environment variables
	viper.SetEnvPrefix("MLE")
	viper.AutomaticEnv()

	// Also bind the standard GCP credentials variable
	viper.BindEnv("credentials_path", "GOOGLE_APPLICATION_CREDENTIALS")

	// Set defaults
	viper.SetDefault("protocol_path", "~/.mle_protocol.json")
	viper.SetDefault("usage_path", "~/.mle_usage.json")
	viper.SetDefault("gcs_protocol_path", "mle_protocol.json")
	viper.SetDefault("use_gcs_sync", false)
	viper.SetDefault("sync_results", false)
}

func checkError(err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
