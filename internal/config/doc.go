// Package config provides configuration management for the logbook CLI.
//
// This package handles loading and validating the logbook tool's own
// configuration file. It only configures the CLI; library callers of
// the logbook package pass their configuration directly.
//
// # Configuration File
//
// The default configuration file location is ~/.config/logbook/config.yaml.
// The configuration file uses YAML format with the following structure:
//
//	output_dir: /data/logs   # optional, XDG state dir when omitted
//	file_level: debug
//	timestamp: true
//
// Values can also be supplied through LOGBOOK_* environment variables.
//
// # Validation
//
// Loaded configurations can be validated manually:
//
//	errs := config.Validate(cfg)
//	if len(errs) > 0 {
//	    for _, e := range errs {
//	        fmt.Println(e)
//	    }
//	}
package config
