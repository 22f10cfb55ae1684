// Copyright Jeffrey Alan Wang, 2026. All rights reserved.

// Package main is the entry point for the grade-convert CLI.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/jeffreyalanwang/grade-conversion-script/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

var (
	// cfg holds the settings resolved from defaults, config file, env and
	// flags. It is loaded before any subcommand runs.
	cfg = types.DefaultConfig()

	logger = slog.Default()
)

// rootCmd is the base command for the grade-convert CLI.
var rootCmd = &cobra.Command{
	Use:   "grade-convert",
	Short: "Convert grade and attendance spreadsheets between LMS formats",
	Long: `grade-convert reads grade data exported from one tool (PollEverywhere,
attendance sheets, Canvas gradebooks, ACR tables) and writes it in the layout
another tool imports, optionally merging onto an existing document.

Use "grade-convert formats" to list the input and output formats and the
parameters each one takes.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := viper.Unmarshal(&cfg); err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		l, err := newLogger(cfg.Log, os.Stderr)
		if err != nil {
			return err
		}
		logger = l
		slog.SetDefault(l)
		if f := viper.ConfigFileUsed(); f != "" {
			logger.Debug("using config file", "path", f)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	d := types.DefaultConfig()
	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "config file (default: ./grade-convert.yaml or ~/.config/grade-convert/grade-convert.yaml)")
	pf.String("log-level", d.Log.Level, "log level: debug, info, warn, error")
	pf.String("log-format", string(d.Log.Format), "log format: text or json")
	mustBind("log.level", pf.Lookup("log-level"))
	mustBind("log.format", pf.Lookup("log-format"))

	viper.SetDefault("log.level", d.Log.Level)
	viper.SetDefault("log.format", string(d.Log.Format))
	viper.SetDefault("merge.mode", d.Merge.Mode)
	viper.SetDefault("merge.warn", d.Merge.Warn)
	viper.SetDefault("batch.parallel", d.Batch.Parallel)
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("grade-convert")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "grade-convert"))
		}
	}

	viper.SetEnvPrefix("GRADE_CONVERT")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			fmt.Fprintln(os.Stderr, "Error reading config file:", err)
		}
	}
}

// mustBind binds a config key to a flag registered in init.
func mustBind(key string, f *pflag.Flag) {
	if err := viper.BindPFlag(key, f); err != nil {
		panic(err)
	}
}

// newLogger builds the slog logger described by lc, writing to w.
func newLogger(lc types.LogConfig, w io.Writer) (*slog.Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(lc.Level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q", lc.Level)
	}
	opts := &slog.HandlerOptions{Level: level}

	switch types.LogFormat(strings.ToLower(string(lc.Format))) {
	case types.LogJSON:
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	case types.LogText, "":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("invalid log format %q (want text or json)", lc.Format)
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
