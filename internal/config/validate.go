package config

import (
	"errors"
	"fmt"
	"runtime"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	// ErrInvalidPolicy indicates an unsupported output.on_conflict value
	ErrInvalidPolicy = errors.New("invalid conflict policy")

	// ErrInvalidFormat indicates an unsupported output format
	ErrInvalidFormat = errors.New("invalid output format")

	// ErrInvalidWorkers indicates a worker count outside 1..4*NumCPU
	ErrInvalidWorkers = errors.New("invalid worker count")

	// ErrEmptyBaseURL indicates asset download is enabled without a source
	ErrEmptyBaseURL = errors.New("empty assets base url")

	// ErrInvalidField indicates a struct-level constraint failure
	ErrInvalidField = errors.New("invalid field")
)

var (
	validPolicies = map[string]bool{"fail": true, "overwrite": true, "rename": true}
	validFormats  = map[string]bool{"html": true, "markdown": true}
)

var structValidator = validator.New(validator.WithRequiredStructEnabled())

// Validate checks that the configuration is valid and complete.
func Validate(cfg *Config) error {
	var errs []error

	if err := structValidator.Struct(cfg); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return err
		}
		for _, fe := range fieldErrs {
			errs = append(errs, fmt.Errorf("%w: %s failed '%s' (got %v)", ErrInvalidField, fieldPath(fe.Namespace()), fe.Tag(), fe.Value()))
		}
	}

	if err := validateOutput(&cfg.Output); err != nil {
		errs = append(errs, err)
	}

	if err := validateAssets(&cfg.Assets); err != nil {
		errs = append(errs, err)
	}

	if err := validateBuild(&cfg.Build); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return joinErrors(errs)
	}

	return nil
}

func validateOutput(cfg *OutputConfig) error {
	var errs []error

	if !validPolicies[strings.ToLower(cfg.OnConflict)] {
		errs = append(errs, fmt.Errorf("%w: must be 'fail', 'overwrite' or 'rename', got '%s'", ErrInvalidPolicy, cfg.OnConflict))
	}

	for _, format := range cfg.Formats {
		if !validFormats[strings.ToLower(format)] {
			errs = append(errs, fmt.Errorf("%w: %s (valid: html, markdown)", ErrInvalidFormat, format))
		}
	}

	if len(errs) > 0 {
		return joinErrors(errs)
	}

	return nil
}

func validateAssets(cfg *AssetsConfig) error {
	if cfg.Download && strings.TrimSpace(cfg.BaseURL) == "" {
		return fmt.Errorf("%w: base_url is required when download is enabled", ErrEmptyBaseURL)
	}
	return nil
}

func validateBuild(cfg *BuildConfig) error {
	maxWorkers := 4 * runtime.NumCPU()
	if cfg.Workers < 1 || cfg.Workers > maxWorkers {
		return fmt.Errorf("%w: workers must be between 1 and %d, got %d", ErrInvalidWorkers, maxWorkers, cfg.Workers)
	}
	return nil
}

// fieldPath turns "Config.Output.Dir" into "output.dir".
func fieldPath(namespace string) string {
	namespace = strings.TrimPrefix(namespace, "Config.")
	return strings.ToLower(namespace)
}

// joinErrors combines multiple errors into a single error with clear formatting.
func joinErrors(errs []error) error {
	if len(errs) == 0 {
		return nil
	}

	if len(errs) == 1 {
		return errs[0]
	}

	var msgs []string
	for _, err := range errs {
		msgs = append(msgs, err.Error())
	}

	return fmt.Errorf("validation failed:\n  - %s", strings.Join(msgs, "\n  - "))
}
