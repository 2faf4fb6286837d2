package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	v "github.com/spf13/viper"
)

// DefaultConfigName is the file looked up in the working directory.
const DefaultConfigName = "config.ini"

// EnvPrefix scopes radio overrides such as BBS_INTERFACE_TYPE.
const EnvPrefix = "bbs"

// Radio interface defaults.
const (
	InterfaceTCP         = "tcp"
	DefaultInterfaceType = "serial"
	DefaultHostname      = "localhost"
	DefaultPort          = 4403
)

const (
	keyType     = "interface.type"
	keyHostname = "interface.hostname"
	keyPort     = "interface.port"
)

// Radio describes how the BBS reaches its radio.
type Radio struct {
	// ConfigPath is the file the settings were read from.
	ConfigPath    string
	InterfaceType string
	Hostname      string
	Port          int
}

// IsTCP reports whether the radio is reached over the network interface.
func (r Radio) IsTCP() bool {
	return strings.EqualFold(strings.TrimSpace(r.InterfaceType), InterfaceTCP)
}

// FindConfig returns the config file to load. An explicit path must exist;
// otherwise config.ini in workDir is used.
func FindConfig(explicit, workDir string) (string, error) {
	candidate := explicit
	if candidate == "" {
		candidate = filepath.Join(workDir, DefaultConfigName)
	}

	info, err := os.Stat(candidate)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return "", fmt.Errorf("%w: %s", ErrNoConfig, candidate)
	case err != nil:
		return "", fmt.Errorf("%w: %s: %v", ErrNoConfig, candidate, err)
	case info.IsDir():
		return "", fmt.Errorf("%w: %s is a directory", ErrNoConfig, candidate)
	}
	return candidate, nil
}

// NewViper returns a viper store preloaded with radio defaults and the BBS
// environment overrides.
func NewViper() *v.Viper {
	rv := v.New()
	rv.SetEnvPrefix(EnvPrefix)
	rv.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	rv.AutomaticEnv()
	rv.SetDefault(keyType, DefaultInterfaceType)
	rv.SetDefault(keyHostname, DefaultHostname)
	rv.SetDefault(keyPort, strconv.Itoa(DefaultPort))
	return rv
}

// LoadRadio parses the INI file at path. A port that is not a positive
// integer falls back to DefaultPort.
func LoadRadio(path string) (Radio, error) {
	info, err := os.Stat(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return Radio{}, fmt.Errorf("%w: %s", ErrNoConfig, path)
	case err != nil:
		return Radio{}, fmt.Errorf("open config %s: %w", path, err)
	case info.IsDir():
		return Radio{}, fmt.Errorf("%w: %s is a directory", ErrNoConfig, path)
	}

	values, err := loadINI(path)
	if err != nil {
		return Radio{}, fmt.Errorf("%s: %w", path, err)
	}

	rv := NewViper()
	if err := rv.MergeConfigMap(values); err != nil {
		return Radio{}, fmt.Errorf("%w: %s: %v", ErrInvalidConfig, path, err)
	}
	return radioFromViper(rv, path), nil
}

func radioFromViper(rv *v.Viper, path string) Radio {
	r := Radio{
		ConfigPath:    path,
		InterfaceType: strings.TrimSpace(rv.GetString(keyType)),
		Hostname:      strings.TrimSpace(rv.GetString(keyHostname)),
		Port:          DefaultPort,
	}
	if r.InterfaceType == "" {
		r.InterfaceType = DefaultInterfaceType
	}
	if r.Hostname == "" {
		r.Hostname = DefaultHostname
	}
	if port, err := strconv.Atoi(strings.TrimSpace(rv.GetString(keyPort))); err == nil && port > 0 && port <= 65535 {
		r.Port = port
	}
	return r
}
