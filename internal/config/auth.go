package config

import "time"

const defaultTokenLifetime = 24 * time.Hour

// AuthConfig contains the configuration for the first-party authentication.
type AuthConfig struct {
	// TokenSecret is the HMAC secret used to sign bearer tokens.
	TokenSecret string `yaml:"token_secret"`
	// TokenLifetime is the validity duration of issued bearer tokens.
	TokenLifetime time.Duration `yaml:"token_lifetime"`
	// MinPasswordLength is the minimum password length for user accounts.
	// This also applies to the admin user.
	MinPasswordLength int `yaml:"min_password_length"`
}

// GetTokenLifetime returns the configured token lifetime or the default if unset.
func (a *AuthConfig) GetTokenLifetime() time.Duration {
	if a.TokenLifetime <= 0 {
		return defaultTokenLifetime
	}
	return a.TokenLifetime
}
