package cli

import (
	"os"

	"bookscrape/internal/config"

	"github.com/pkg/errors"
)

// ExitError carries the process exit code for an error. Usage errors use
// code 2.
type ExitError struct {
	Code int
	Err  error
}

func (e ExitError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return "error"
}

func (e ExitError) Unwrap() error {
	return e.Err
}

func usageError(format string, args ...any) error {
	return ExitError{Code: 2, Err: errors.Errorf(format, args...)}
}

// Layers are the sources a command's settings came from.
type Layers struct {
	ConfigPath string
	Config     config.Config
}

// LoadConfig reads the config file at path, or the first one found in the
// search dirs when path is empty, then applies BOOKSCRAPE_* variables from
// the environment and the given .env files. A missing config file is only an
// error when path was given.
func LoadConfig(path string, envFiles []string, lookup func(string) (string, bool)) (Layers, error) {
	if err := config.LoadDotEnv(envFiles...); err != nil {
		return Layers{}, err
	}

	var layers Layers
	if path == "" {
		if found, ok := config.Find(); ok {
			path = found
		}
	} else if _, err := os.Stat(path); err != nil {
		return Layers{}, ExitError{Code: 2, Err: errors.Wrapf(err, "config %s", path)}
	}
	if path != "" {
		cfg, err := config.Load(path)
		if err != nil {
			return Layers{}, err
		}
		layers.ConfigPath = path
		layers.Config = cfg
	}

	if lookup == nil {
		lookup = os.LookupEnv
	}
	if err := config.ApplyEnv(&layers.Config, lookup); err != nil {
		return Layers{}, ExitError{Code: 2, Err: err}
	}
	return layers, nil
}
