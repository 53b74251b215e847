package main

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/careergini/orchestrator/pkg/config"
)

var (
	configPath string
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:   "orchestrator",
	Short: "CareerGini workflow orchestrator",
	Long: `CareerGini routes career coaching conversations through specialist
handlers (profile guidance, skills-gap analysis, job search, resume
feedback, learning resources) and aggregates their answers into one
response per turn.`,
	SilenceUsage: true,
	PersistentPreRun: func(*cobra.Command, []string) {
		// Missing .env is fine; environment wins over file values.
		_ = godotenv.Load()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to YAML config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(chatCmd)
}

// loadConfig reads the config file if one was given, otherwise returns
// an empty config so every accessor falls back to its default.
func loadConfig() (config.Config, error) {
	if configPath == "" {
		if env := os.Getenv("CAREERGINI_CONFIG"); env != "" {
			configPath = env
		}
	}
	if configPath == "" {
		return config.New(nil), nil
	}
	return config.FromFile(configPath)
}

func newLogger() *slog.Logger {
	var level slog.Level
	switch logLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
