package cli

import (
	"github.com/spf13/pflag"

	"github.com/danieljhkim/subpkg/internal/config"
)

// settingsFlags are the command-line overrides of config.Settings. They are
// applied after the settings file and the environment, and only when set.
type settingsFlags struct {
	configFile string
	envFiles   []string

	platform        string
	mode            string
	output          string
	npmRoot         string
	sharedDir       string
	allowMultiOwner bool
	concurrency     int
	stateFile       string
	logLevel        string
	logFormat       string
}

var globalSettings settingsFlags

func registerSettingsFlags(fs *pflag.FlagSet) {
	defaults := config.Default()
	f := &globalSettings

	fs.StringVar(&f.configFile, "config", config.DefaultFile, "Settings file")
	fs.StringSliceVar(&f.envFiles, "env-file", []string{".env"}, "Dotenv files loaded before reading the environment")
	fs.StringVarP(&f.platform, "platform", "p", defaults.Platform, "Target platform (weapp, alipay, tt, swan, qq, jd)")
	fs.StringVar(&f.mode, "mode", defaults.Mode, "Build mode used as a file variant tag")
	fs.StringVarP(&f.output, "output", "o", defaults.OutputDir, "Emitted mini-program directory")
	fs.StringVar(&f.npmRoot, "npm-root", defaults.NpmRoot, "Output directory of node_modules imports")
	fs.StringVar(&f.sharedDir, "shared-dir", defaults.SharedDir, "Directory receiving components moved back to the main package")
	fs.BoolVar(&f.allowMultiOwner, "allow-multi-owner", defaults.AllowMultiOwner, "Copy components shared by subpackages into each of them")
	fs.IntVar(&f.concurrency, "concurrency", defaults.Concurrency, "Maximum parallel file operations")
	fs.StringVar(&f.stateFile, "state-file", defaults.StateFile, "Build record of the last apply (empty disables it)")
	fs.StringVar(&f.logLevel, "log-level", defaults.LogLevel, "Log level (debug, info, warn, error)")
	fs.StringVar(&f.logFormat, "log-format", defaults.LogFormat, "Log format (text or json)")
}

// apply overrides s with every flag the user set explicitly.
func (f *settingsFlags) apply(fs *pflag.FlagSet, s *config.Settings) {
	if fs.Changed("platform") {
		s.Platform = f.platform
	}
	if fs.Changed("mode") {
		s.Mode = f.mode
	}
	if fs.Changed("output") {
		s.OutputDir = f.output
	}
	if fs.Changed("npm-root") {
		s.NpmRoot = f.npmRoot
	}
	if fs.Changed("shared-dir") {
		s.SharedDir = f.sharedDir
	}
	if fs.Changed("allow-multi-owner") {
		s.AllowMultiOwner = f.allowMultiOwner
	}
	if fs.Changed("concurrency") {
		s.Concurrency = f.concurrency
	}
	if fs.Changed("state-file") {
		s.StateFile = f.stateFile
	}
	if fs.Changed("log-level") {
		s.LogLevel = f.logLevel
	}
	if fs.Changed("log-format") {
		s.LogFormat = f.logFormat
	}
}
