package config

import (
	"fmt"
	"os"

	"github.com/a8m/envsubst"
	"gopkg.in/yaml.v3"
)

// Config is the main configuration struct.
type Config struct {
	Core struct {
		// AdminUser defines the default administrator account that will be created on startup.
		AdminUser     string `yaml:"admin_user"`
		AdminPassword string `yaml:"admin_password"`
		AdminName     string `yaml:"admin_name"`

		// SelfRegistrationAllowed controls whether new users can register themselves.
		SelfRegistrationAllowed bool `yaml:"self_registration_allowed"`
	} `yaml:"core"`

	Advanced struct {
		// LogLevel sets the log verbosity. Supported: trace, debug, info, warn, error.
		LogLevel string `yaml:"log_level"`
		// LogJson enables JSON log output.
		LogJson bool `yaml:"log_json"`
	} `yaml:"advanced"`

	Statistics struct {
		// CollectMetrics enables the prometheus metrics endpoint.
		CollectMetrics bool `yaml:"collect_metrics"`
		// ListeningAddress is the listening address of the metrics server.
		ListeningAddress string `yaml:"listening_address"`
	} `yaml:"statistics"`

	Mail MailConfig `yaml:"mail"`

	Auth AuthConfig `yaml:"auth"`

	Database DatabaseConfig `yaml:"database"`

	Web WebConfig `yaml:"web"`
}

func defaultConfig() *Config {
	cfg := &Config{}

	cfg.Core.AdminUser = "admin@prepcheck.local"
	cfg.Core.AdminPassword = "prepcheck-default"
	cfg.Core.AdminName = "Default Administrator"
	cfg.Core.SelfRegistrationAllowed = true

	cfg.Advanced.LogLevel = "info"

	cfg.Statistics.CollectMetrics = false
	cfg.Statistics.ListeningAddress = ":8787"

	cfg.Database = DatabaseConfig{
		Type: DatabaseSQLite,
		DSN:  "data/prepcheck.db",
	}

	cfg.Web = WebConfig{
		RequestLogging:    false,
		ExternalUrl:       "http://localhost:8888",
		ListeningAddress:  ":8888",
		SessionIdentifier: "prepcheckSession",
		SessionSecret:     "very_secret",
		SiteTitle:         "PrepCheck",
	}

	cfg.Auth = AuthConfig{
		TokenSecret:       "insecure_token_secret",
		TokenLifetime:     defaultTokenLifetime,
		MinPasswordLength: 8,
	}

	return cfg
}

// GetConfig returns the configuration from the config file.
// Environment variable substitution is supported.
func GetConfig() (*Config, error) {
	cfg := defaultConfig()

	cfgFileName := "config/config.yml"
	if envCfgFileName := os.Getenv("PREPCHECK_CONFIG"); envCfgFileName != "" {
		cfgFileName = envCfgFileName
	}

	if err := loadConfigFile(cfg, cfgFileName); err != nil {
		return nil, fmt.Errorf("failed to load config from yaml: %w", err)
	}

	cfg.Web.Sanitize()

	return cfg, nil
}

func loadConfigFile(cfg any, filename string) error {
	data, err := envsubst.ReadFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // config file is optional, defaults are used
		}
		return err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return err
	}

	return nil
}
