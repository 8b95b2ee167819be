// Package config manages subpkg settings.
//
// Settings are layered: built-in defaults, then an optional YAML file
// (subpkg.yaml by default), then .env files and SUBPKG_* environment
// variables, and finally command-line flags applied by the CLI.
//
// The platform may also come from TARO_ENV / PLATFORM_ENV so the tool picks
// up the target a host build was started with.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/danieljhkim/subpkg/internal/platform"
)

// DefaultFile is the settings file looked up in the working directory.
const DefaultFile = "subpkg.yaml"

// Settings holds every tunable of a build.
type Settings struct {
	// Platform selects the file suffix table and the first variant tag.
	Platform string `yaml:"platform" json:"platform"`

	// Mode is the build mode used as a variant tag (e.g. "prod").
	Mode string `yaml:"mode" json:"mode,omitempty"`

	// OutputDir is the emitted mini-program directory.
	OutputDir string `yaml:"outputDir" json:"outputDir"`

	// NpmRoot is the output directory node_modules imports are emitted to.
	NpmRoot string `yaml:"npmRoot" json:"npmRoot"`

	// SharedDir receives components forced back into the main package.
	SharedDir string `yaml:"sharedDir" json:"sharedDir"`

	// AllowMultiOwner keeps components used by several subpackages out of
	// the main package and copies them into each owner instead.
	AllowMultiOwner bool `yaml:"allowMultiOwner" json:"allowMultiOwner"`

	// GlobalStyles are logical paths of style files whose imports are
	// re-based even when the file itself does not move.
	GlobalStyles []string `yaml:"globalStyles" json:"globalStyles"`

	// Concurrency bounds the physical move batch.
	Concurrency int `yaml:"concurrency" json:"concurrency"`

	// ResolverCacheSize bounds the existence cache of disk lookups.
	ResolverCacheSize int `yaml:"resolverCacheSize" json:"resolverCacheSize"`

	// StateFile records the last apply of a scanned output directory.
	// Empty disables the record.
	StateFile string `yaml:"stateFile" json:"stateFile"`

	LogLevel  string `yaml:"logLevel" json:"logLevel"`
	LogFormat string `yaml:"logFormat" json:"logFormat"`
}

// Default returns the built-in settings.
func Default() Settings {
	return Settings{
		Platform:          platform.Weapp,
		OutputDir:         "dist",
		NpmRoot:           "npm",
		SharedDir:         "common",
		GlobalStyles:      []string{"app"},
		Concurrency:       8,
		ResolverCacheSize: 4096,
		StateFile:         ".subpkg/state.json",
		LogLevel:          "info",
		LogFormat:         "text",
	}
}

// LoadOptions controls where Load looks.
type LoadOptions struct {
	// File is the YAML settings path; a missing file is not an error.
	File string

	// EnvFiles are dotenv files loaded before reading the environment.
	// Missing files are skipped.
	EnvFiles []string
}

// Load builds Settings from defaults, the YAML file and the environment.
func Load(opts LoadOptions) (*Settings, error) {
	s := Default()

	if opts.File != "" {
		data, err := os.ReadFile(opts.File)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, &s); err != nil {
				return nil, fmt.Errorf("failed to parse %s: %w", opts.File, err)
			}
		case errors.Is(err, os.ErrNotExist):
		default:
			return nil, fmt.Errorf("failed to read %s: %w", opts.File, err)
		}
	}

	var envFiles []string
	for _, f := range opts.EnvFiles {
		if _, err := os.Stat(f); err == nil {
			envFiles = append(envFiles, f)
		}
	}
	if len(envFiles) > 0 {
		if err := godotenv.Load(envFiles...); err != nil {
			return nil, fmt.Errorf("failed to load env files: %w", err)
		}
	}

	if err := s.applyEnv(); err != nil {
		return nil, err
	}
	return &s, nil
}

func (s *Settings) applyEnv() error {
	s.Platform = firstNonEmpty(env("SUBPKG_PLATFORM"), env("PLATFORM_ENV"), env("TARO_ENV"), s.Platform)
	s.Mode = firstNonEmpty(env("SUBPKG_MODE"), s.Mode)
	s.OutputDir = firstNonEmpty(env("SUBPKG_OUTPUT"), s.OutputDir)
	s.NpmRoot = firstNonEmpty(env("SUBPKG_NPM_ROOT"), s.NpmRoot)
	s.SharedDir = firstNonEmpty(env("SUBPKG_SHARED_DIR"), s.SharedDir)
	s.StateFile = firstNonEmpty(env("SUBPKG_STATE_FILE"), s.StateFile)
	s.LogLevel = firstNonEmpty(env("SUBPKG_LOG_LEVEL"), s.LogLevel)
	s.LogFormat = firstNonEmpty(env("SUBPKG_LOG_FORMAT"), s.LogFormat)

	if raw := env("SUBPKG_CONCURRENCY"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("invalid SUBPKG_CONCURRENCY %q: %w", raw, err)
		}
		s.Concurrency = n
	}
	if raw := env("SUBPKG_ALLOW_MULTI_OWNER"); raw != "" {
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return fmt.Errorf("invalid SUBPKG_ALLOW_MULTI_OWNER %q: %w", raw, err)
		}
		s.AllowMultiOwner = b
	}
	return nil
}

// Validate checks the settings before a build starts.
func (s *Settings) Validate() error {
	if _, ok := platform.Lookup(s.Platform); !ok {
		return fmt.Errorf("unknown platform %q (known: %s)", s.Platform, strings.Join(platform.Names(), ", "))
	}
	if s.Concurrency < 1 {
		return fmt.Errorf("concurrency must be at least 1, got %d", s.Concurrency)
	}
	if s.SharedDir == "" || strings.Contains(s.SharedDir, "..") {
		return fmt.Errorf("invalid shared directory %q", s.SharedDir)
	}
	return nil
}

func env(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
