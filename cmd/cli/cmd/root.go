package cmd

import (
	"context"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"

	cliapi "fixture-matching/internal/cli"
	"fixture-matching/internal/config"
)

var (
	configFile string
	serverURL  string
	format     string
	quiet      bool
	noColor    bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "fixture-matcher",
	Short: "CLI client for the fixture matching API",
	Long: `Fixture Matcher CLI manages vessel open positions and cargo orders
through a REST API. You can register vessels and cargos, parse broker
emails, run the matching engine, and accept or reject the proposed
fixtures.`,
	Version: "1.0.0",
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	fang.Execute(context.Background(), rootCmd)
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Config file (default is fixture-matcher.yaml in ., ./config or $HOME)")
	rootCmd.PersistentFlags().StringVarP(&serverURL, "server", "s", "http://localhost:8080", "API server address")
	rootCmd.PersistentFlags().StringVarP(&format, "format", "f", "table", "Output format (table, json)")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Quiet mode (minimal output)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable color output")

	// Bind environment variables
	rootCmd.PersistentFlags().Lookup("server").DefValue = getEnvOrDefault("FIXTURE_MATCHER_SERVER", "http://localhost:8080")
	rootCmd.PersistentFlags().Lookup("format").DefValue = getEnvOrDefault("FIXTURE_MATCHER_FORMAT", "table")
	rootCmd.PersistentFlags().Lookup("quiet").DefValue = getEnvOrDefault("FIXTURE_MATCHER_QUIET", "false")
	rootCmd.PersistentFlags().Lookup("no-color").DefValue = getEnvOrDefault("NO_COLOR", "false")
}

// getEnvOrDefault returns environment variable value or default
func getEnvOrDefault(envVar, defaultVal string) string {
	if val := os.Getenv(envVar); val != "" {
		return val
	}
	return defaultVal
}

// loadCLIConfig resolves configuration. An explicit --config file goes
// through the Viper loader; otherwise the JSON-file/env loader applies.
// Flags set on the command line always win.
func loadCLIConfig() (*cliapi.Config, error) {
	if configFile == "" {
		return cliapi.LoadConfig(serverURL, format, quiet)
	}

	cfg, err := config.LoadCLIConfigWithFile(configFile)
	if err != nil {
		return nil, err
	}

	flags := rootCmd.PersistentFlags()
	if flags.Changed("server") {
		cfg.ServerURL = serverURL
	}
	if flags.Changed("format") {
		cfg.Format = format
	}
	if quiet {
		cfg.Quiet = true
	}
	return cfg, cfg.Validate()
}

// initializeClient sets up configuration, formatter, and API client
func initializeClient() (*cliapi.Config, *cliapi.OutputFormatter, *cliapi.Client, error) {
	config, err := loadCLIConfig()
	if err != nil {
		return nil, nil, nil, err
	}
	if noColor {
		config.NoColor = true
	}

	formatter := cliapi.NewOutputFormatter(config.Format, config.Quiet)
	client := cliapi.NewClientWithTimeout(config.ServerURL, config.RequestTimeout)

	// Test connectivity
	if err := client.HealthCheck(); err != nil {
		formatter.PrintError(err)
		return nil, nil, nil, err
	}

	return config, formatter, client, nil
}
