package health

import (
	"context"
	"errors"
	"fmt"

	"mercator-hq/relay/pkg/config"
)

// ConfigCheck fails when no configuration is loaded or the loaded one no
// longer validates.
func ConfigCheck(get func() *config.Config) CheckFunc {
	return func(ctx context.Context) error {
		cfg := get()
		if cfg == nil {
			return errors.New("configuration not loaded")
		}
		if err := config.Validate(cfg); err != nil {
			return fmt.Errorf("configuration invalid: %w", err)
		}
		return nil
	}
}

// Pinger is implemented by components that can report their own health.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingCheck adapts a Pinger to a CheckFunc.
func PingCheck(p Pinger) CheckFunc {
	return p.Ping
}
