package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/danieljhkim/subpkg/internal/clock"
	"github.com/danieljhkim/subpkg/internal/config"
	"github.com/danieljhkim/subpkg/internal/ctxlog"
	"github.com/danieljhkim/subpkg/internal/engine"
	"github.com/danieljhkim/subpkg/internal/fsops"
	"github.com/danieljhkim/subpkg/internal/hash"
)

// newEngine creates a new engine with real implementations of all dependencies.
func newEngine() *engine.Engine {
	return engine.New(fsops.NewRealFS(), hash.NewSHA256Hasher(), &clock.RealClock{})
}

// loadSettings layers the settings file, the environment and the flags of
// cmd, then validates the result.
func loadSettings(cmd *cobra.Command) (config.Settings, error) {
	settings, err := config.Load(config.LoadOptions{
		File:     globalSettings.configFile,
		EnvFiles: globalSettings.envFiles,
	})
	if err != nil {
		return config.Settings{}, fmt.Errorf("failed to load settings: %w", err)
	}
	globalSettings.apply(cmd.Flags(), settings)
	if err := settings.Validate(); err != nil {
		return config.Settings{}, err
	}
	return *settings, nil
}

// commandContext returns a context carrying a logger built from settings.
// Logs go to stderr so JSON output on stdout stays parseable.
func commandContext(settings config.Settings) context.Context {
	logger := ctxlog.New(settings.LogLevel, settings.LogFormat, os.Stderr)
	return ctxlog.WithLogger(context.Background(), logger)
}

// formatJSON formats a value as JSON.
func formatJSON(v interface{}) (string, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// formatError formats an error for display.
func formatError(err error) string {
	return errorColor.Sprintf("Error: %v", err)
}

// outputJSON outputs a value as JSON to stdout.
func outputJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
