package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/gorm"

	"github.com/jrodas4044/signature-register/internal/config"
	"github.com/jrodas4044/signature-register/internal/infra/db"
)

const programName = "registerd"

func main() {
	rootCmd := &cobra.Command{
		Use:   programName,
		Short: "Petition sheet and adhesion register service",
		Run: func(cmd *cobra.Command, args []string) {
			serveRun(cmd, args)
		},
	}
	rootCmd.AddCommand(
		serveCommand(),
		migrateCommand(),
		importDictamenCommand(),
		seedCommand(),
	)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if level != "" {
		parsed, err := zapcore.ParseLevel(level)
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", level, err)
		}
		cfg.Level = zap.NewAtomicLevelAt(parsed)
	}
	return cfg.Build()
}

// commonRun loads the environment and prepares the logger and database.
func commonRun() (config.Config, *zap.Logger, *gorm.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, nil, nil, err
	}
	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return config.Config{}, nil, nil, err
	}
	gdb, err := db.Open(cfg.PostgresDSN, cfg.SQLitePath)
	if err != nil {
		return config.Config{}, nil, nil, fmt.Errorf("open database: %w", err)
	}
	return cfg, logger, gdb, nil
}

func fail(logger *zap.Logger, msg string, err error) {
	if logger != nil {
		logger.Error(msg, zap.Error(err))
	} else {
		fmt.Fprintf(os.Stderr, "%s: %v\n", msg, err)
	}
	os.Exit(1)
}
