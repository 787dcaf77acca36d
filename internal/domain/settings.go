package domain

import (
	"errors"
	"fmt"
	"time"
)

// Refresh interval bounds and defaults.
const (
	MinRefreshInterval     = 10 * time.Second
	MaxRefreshInterval     = 300 * time.Second
	DefaultRefreshInterval = 30 * time.Second
)

// ErrInvalidInterval is returned for refresh intervals outside the allowed range.
var ErrInvalidInterval = errors.New("refresh interval out of range")

// Settings are the user-adjustable dashboard preferences.
type Settings struct {
	AutoRefresh     bool          `json:"auto_refresh"`
	RefreshInterval time.Duration `json:"-"`
	Notifications   bool          `json:"notifications"`
}

// DefaultSettings returns auto refresh every 30 seconds with notifications on.
func DefaultSettings() Settings {
	return Settings{
		AutoRefresh:     true,
		RefreshInterval: DefaultRefreshInterval,
		Notifications:   true,
	}
}

// ValidateInterval checks d against [MinRefreshInterval, MaxRefreshInterval].
func ValidateInterval(d time.Duration) error {
	if d < MinRefreshInterval || d > MaxRefreshInterval {
		return fmt.Errorf("%w: %s not in [%s, %s]", ErrInvalidInterval, d, MinRefreshInterval, MaxRefreshInterval)
	}
	return nil
}
