// Package config loads the radio interface settings and the run-wide
// options of a health check.
//
// Radio settings come from the BBS config.ini, parsed into a viper store so
// BBS_INTERFACE_TYPE, BBS_INTERFACE_HOSTNAME and BBS_INTERFACE_PORT can
// override file values. Run options are captured once from the environment
// by LoadOptions and then passed by value to every component.
package config
