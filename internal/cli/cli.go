// Package cli parses command-line arguments and the optional YAML options
// file into an app configuration.
package cli

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/vk/lumengo/internal/app"
	"gopkg.in/yaml.v3"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// Parse processes command-line arguments. It returns a populated Config, a
// boolean indicating the program should exit cleanly (help shown, nothing
// to do), or an ExitError. Explicit flags override values from the options
// file.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	flagSet := flag.NewFlagSet("lumen", flag.ContinueOnError)
	flagSet.SetOutput(output)

	flagSet.Usage = func() {
		fmt.Fprint(output, `
Lumen - a configurable research rendering framework.

Usage:
  lumen [options] [SCENE_PATH]

Arguments:
  SCENE_PATH
    Path to a single .hcl scene file or a directory containing .hcl files.

Options:
`)
		flagSet.PrintDefaults()
	}

	sceneFlag := flagSet.String("scene", "", "Path to the scene file or directory.")
	saveFlag := flagSet.String("save", "", "Serialize the object tree to this archive after the run.")
	loadFlag := flagSet.String("load", "", "Restore the object tree from this archive before the run.")
	logFormatFlag := flagSet.String("log-format", "text", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "info", "Logging level. Options: 'debug', 'info', 'warn', 'error'.")
	workersFlag := flagSet.Int("workers", 0, "Render pool size. 0 uses one worker per CPU.")
	optionsFlag := flagSet.String("options", "", "Path to a YAML options file; flags override its values.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	cfg := &app.Config{
		ScenePath: *sceneFlag,
		SavePath:  *saveFlag,
		LoadPath:  *loadFlag,
		LogFormat: *logFormatFlag,
		LogLevel:  *logLevelFlag,
		Workers:   *workersFlag,
	}
	if cfg.ScenePath == "" && flagSet.NArg() > 0 {
		cfg.ScenePath = flagSet.Arg(0)
	}

	if *optionsFlag != "" {
		set := map[string]bool{}
		flagSet.Visit(func(f *flag.Flag) { set[f.Name] = true })
		if err := mergeOptionsFile(cfg, *optionsFlag, set); err != nil {
			return nil, false, &ExitError{Code: 2, Message: err.Error()}
		}
	}

	if cfg.ScenePath == "" && cfg.LoadPath == "" {
		flagSet.Usage()
		return nil, true, nil
	}

	cfg.LogFormat = strings.ToLower(cfg.LogFormat)
	if cfg.LogFormat != "text" && cfg.LogFormat != "json" {
		return nil, false, &ExitError{Code: 2, Message: "invalid log-format: must be 'text' or 'json'"}
	}
	cfg.LogLevel = strings.ToLower(cfg.LogLevel)
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return nil, false, &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}

	return cfg, false, nil
}

// mergeOptionsFile fills cfg fields from a YAML file, skipping any field an
// explicit flag already set.
func mergeOptionsFile(cfg *app.Config, path string, set map[string]bool) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("options file: %w", err)
	}
	var fileCfg app.Config
	if err := yaml.Unmarshal(data, &fileCfg); err != nil {
		return fmt.Errorf("options file %s: %w", path, err)
	}
	if !set["scene"] && cfg.ScenePath == "" {
		cfg.ScenePath = fileCfg.ScenePath
	}
	if !set["save"] && fileCfg.SavePath != "" {
		cfg.SavePath = fileCfg.SavePath
	}
	if !set["load"] && fileCfg.LoadPath != "" {
		cfg.LoadPath = fileCfg.LoadPath
	}
	if !set["log-format"] && fileCfg.LogFormat != "" {
		cfg.LogFormat = fileCfg.LogFormat
	}
	if !set["log-level"] && fileCfg.LogLevel != "" {
		cfg.LogLevel = fileCfg.LogLevel
	}
	if !set["workers"] && fileCfg.Workers != 0 {
		cfg.Workers = fileCfg.Workers
	}
	return nil
}
