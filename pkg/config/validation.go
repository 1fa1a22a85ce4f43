package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Validate checks the configuration against the struct validation tags and
// a few cross-field rules the tags cannot express.
func Validate(cfg *Config) error {
	validate := validator.New()
	if err := validate.Struct(cfg); err != nil {
		if errs, ok := err.(validator.ValidationErrors); ok {
			for _, fe := range errs {
				return fmt.Errorf("invalid config field %s: failed %q validation", fe.Namespace(), fe.Tag())
			}
		}
		return err
	}

	if cfg.Readiness.PollInterval > cfg.Readiness.StackWaitMax {
		return fmt.Errorf("readiness poll_interval (%s) exceeds stack_wait_max (%s)",
			cfg.Readiness.PollInterval, cfg.Readiness.StackWaitMax)
	}
	if cfg.Readiness.PollInterval > cfg.Readiness.DisplayWaitMax {
		return fmt.Errorf("readiness poll_interval (%s) exceeds display_wait_max (%s)",
			cfg.Readiness.PollInterval, cfg.Readiness.DisplayWaitMax)
	}
	return nil
}
