// Package cmd implements the CLI commands for webclipper using Cobra.
package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/gaurav-prasanna/webclipper/host/config"
)

// Set by the linker.
var version = "dev"

// annotation on commands that must run even when the config file is invalid.
const tolerateBadConfig = "webclipper/tolerate-bad-config"

var (
	flagConfigPath string
	flagLogLevel   string
)

// env is the state every subcommand shares, filled in by PersistentPreRunE.
var env struct {
	cfg     config.Config
	backend *config.FileBackend
	log     *logrus.Logger
}

var rootCmd = &cobra.Command{
	Use:   "webclipper",
	Short: "webclipper: clip web pages into Markdown notes",
	Long: `webclipper fetches a web page, extracts its main article, converts it to
Markdown and files it as a note in one of your notebooks.

Usage:
  webclipper clip                       open the interactive clip dialog
  webclipper clip --url <url> --notebook <name>
  webclipper notebooks list|create <name>
  webclipper notes list|show|export
  webclipper config show|set <key> <value>`,
	Version:           version,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfigPath, "config", "", "Config file (default: $XDG_CONFIG_HOME/webclipper/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Override log.level (trace, debug, info, warn, error)")
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func setup(cmd *cobra.Command, _ []string) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("loading .env: %w", err)
	}

	path := flagConfigPath
	if path == "" {
		path = config.DefaultPath()
	}

	cfg, backend, err := config.LoadFrom(path)
	if err != nil {
		if cmd.Annotations[tolerateBadConfig] == "" {
			return err
		}
		logrus.WithError(err).Warn("config is invalid; continuing so it can be fixed")
		backend = config.NewFileBackend(path)
	}
	if flagLogLevel != "" {
		cfg.Log.Level = flagLogLevel
	}

	log, err := newLogger(cfg.Log)
	if err != nil {
		return err
	}

	env.cfg = cfg
	env.backend = backend
	env.log = log
	return nil
}

// newLogger builds the process logger from log.level and log.format.
func newLogger(c config.LogConfig) (*logrus.Logger, error) {
	log := logrus.New()
	log.SetOutput(os.Stderr)

	level := logrus.InfoLevel
	if c.Level != "" {
		parsed, err := logrus.ParseLevel(c.Level)
		if err != nil {
			return nil, fmt.Errorf("log.level: %w", err)
		}
		level = parsed
	}
	log.SetLevel(level)

	switch c.Format {
	case "json":
		log.SetFormatter(&logrus.JSONFormatter{})
	case "", "text":
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	default:
		return nil, fmt.Errorf("log.format: unknown format %q", c.Format)
	}
	return log, nil
}
