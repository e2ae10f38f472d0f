package config

import "errors"

var (
	// ErrInvalidConfig marks a configuration that loaded but failed Validate.
	ErrInvalidConfig = errors.New("invalid config")
	// ErrLoadConfig marks a failure to read or decode any config source.
	ErrLoadConfig = errors.New("load config failed")
	// ErrConfigFile narrows ErrLoadConfig to the file named by COMB_EXCEL_CONFIG.
	ErrConfigFile = errors.New("config file unreadable")
)
