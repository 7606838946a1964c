package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"eventfeed/internal/client"
	"eventfeed/internal/config"
)

var cfgFile string
var jsonOutput bool
var yamlOutput bool

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "eventfeed",
	Short: "Watch detection events from a video analytics backend",
	Long: `Poll the detection backend for its current event list and show it as a
table that is refreshed on a fixed interval.`,
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(func() {
		if err := config.InitConfig(cfgFile); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: could not load config: %v\n", err)
		}
	})

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.eventfeed.yaml)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output results as JSON")
	rootCmd.PersistentFlags().BoolVar(&yamlOutput, "yaml", false, "Output results as YAML")
	rootCmd.PersistentFlags().String("host", "", "Backend base URL (overrides base_url)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error")

	_ = viper.BindPFlag("base_url", rootCmd.PersistentFlags().Lookup("host"))
	_ = viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
}

// loadSettings resolves configuration or exits.
func loadSettings() config.Settings {
	s, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	return s
}

func newClient(s config.Settings) *client.EventFeedClient {
	return client.New(client.ClientConfig{BaseURL: s.BaseURL, Timeout: s.Timeout})
}

func newLogger(level string, w io.Writer) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn", "warning":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl}))
}

// writeStructured encodes v when --json or --yaml is set and reports
// whether it did.
func writeStructured(w io.Writer, v interface{}) (bool, error) {
	switch {
	case jsonOutput:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return true, enc.Encode(v)
	case yamlOutput:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return true, err
		}
		return true, enc.Close()
	}
	return false, nil
}
