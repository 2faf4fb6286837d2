package health

import (
	"context"
	"fmt"

	"github.com/jonwraymond/bbshealth/config"
)

// ConfigChecker locates and parses the BBS configuration. Later stages read
// the loaded settings through Radio and Path.
type ConfigChecker struct {
	explicit string
	workDir  string

	radio  config.Radio
	loaded bool
}

// NewConfigChecker creates a checker for the config file at explicit, or
// config.ini in workDir when explicit is empty.
func NewConfigChecker(explicit, workDir string) *ConfigChecker {
	return &ConfigChecker{explicit: explicit, workDir: workDir}
}

// Name returns the name of this checker.
func (c *ConfigChecker) Name() string {
	return "config"
}

// Check performs the configuration check.
func (c *ConfigChecker) Check(_ context.Context) Result {
	c.loaded = false

	path, err := config.FindConfig(c.explicit, c.workDir)
	if err != nil {
		return Unhealthy("no configuration file found", err).
			WithDetails(map[string]any{"work_dir": c.workDir, "explicit": c.explicit})
	}

	radio, err := config.LoadRadio(path)
	if err != nil {
		return Unhealthy(fmt.Sprintf("configuration unreadable: %v", err), err).
			WithDetails(map[string]any{"path": path})
	}

	c.radio = radio
	c.loaded = true
	return Healthy(fmt.Sprintf("loaded %s (interface %s)", path, radio.InterfaceType)).
		WithDetails(map[string]any{
			"path":           path,
			"interface_type": radio.InterfaceType,
			"hostname":       radio.Hostname,
			"port":           radio.Port,
		})
}

// Radio returns the loaded radio settings, if the last check succeeded.
func (c *ConfigChecker) Radio() (config.Radio, bool) {
	return c.radio, c.loaded
}

// Path returns the loaded config file path, or "" before a successful check.
func (c *ConfigChecker) Path() string {
	if !c.loaded {
		return ""
	}
	return c.radio.ConfigPath
}
