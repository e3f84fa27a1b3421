package main

import (
	"fmt"

	"github.com/kbukum/restclient/config"
	"github.com/kbukum/restclient/httpclient"
	"github.com/kbukum/restclient/observability"
)

const appName = "restclient"

// appConfig is the file and environment configuration of the command.
type appConfig struct {
	config.ServiceConfig `yaml:",inline" mapstructure:",squash"`

	Client  httpclient.Config           `yaml:"client" mapstructure:"client"`
	Tracing *observability.TracerConfig `yaml:"tracing" mapstructure:"tracing"`
	Metrics *observability.MeterConfig  `yaml:"metrics" mapstructure:"metrics"`
}

// loadConfig reads restclient.{yml,yaml,toml,json} and RESTCLIENT_* variables.
func loadConfig(path string) (*appConfig, error) {
	var opts []config.LoaderOption
	if path != "" {
		opts = append(opts, config.WithConfigFile(path))
	}

	var cfg appConfig
	if err := config.LoadConfig(appName, &cfg, opts...); err != nil {
		return nil, err
	}
	if cfg.Name == "" {
		cfg.Name = appName
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if cfg.Client.Name == "" {
		cfg.Client.Name = cfg.Name
	}
	return &cfg, nil
}
