// Command angler runs the tile simulation headless and validates its content.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/angler/sim/internal/config"
)

const defaultConfigPath = "config/sim.toml"

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "angler",
		Short:         "Angler tile simulation",
		Long:          `Angler runs the tile simulation headless. Scripted proposals are adjudicated by the change policy and animated by the reaction scheduler.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newRunCmd())
	root.AddCommand(newCheckCmd())
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// configPath resolves --config, then ANGLER_CONFIG, then the default path.
func configPath(flag string) string {
	if flag != "" {
		return flag
	}
	if p := os.Getenv("ANGLER_CONFIG"); p != "" {
		return p
	}
	return defaultConfigPath
}

func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapCfg.EncoderConfig.ConsoleSeparator = "  "
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
