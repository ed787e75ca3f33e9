package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"   validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Auth     AuthConfig     `mapstructure:"auth"     validate:"required"`
	Google   GoogleConfig   `mapstructure:"google"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port        int    `mapstructure:"port"        validate:"required,gt=0,lt=65536"`
	LogLevel    string `mapstructure:"log_level"   validate:"required,oneof=debug info warn error"`
	Environment string `mapstructure:"environment" validate:"required,oneof=development test production"`
}

// IsProduction reports whether the server runs in production mode, in which
// internal error details are suppressed from responses.
func (c ServerConfig) IsProduction() bool {
	return c.Environment == "production"
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"required"`
}

// AuthConfig contains all authentication and authorization settings.
type AuthConfig struct {
	JWTSecret          string `mapstructure:"jwt_secret"           validate:"required,min=32"`
	TokenLifetimeHours int    `mapstructure:"token_lifetime_hours" validate:"required,gt=0"`
	BcryptCost         int    `mapstructure:"bcrypt_cost"          validate:"gte=4,lte=31"`
}

// GoogleConfig contains the external-provider (Google OAuth) settings.
// All fields are optional; when ClientID or ClientSecret is empty the
// Google endpoints respond with a structured 501.
type GoogleConfig struct {
	ClientID     string `mapstructure:"client_id"`
	ClientSecret string `mapstructure:"client_secret"`
	CallbackURL  string `mapstructure:"callback_url"`
}

// Configured reports whether the Google provider can be used.
func (c GoogleConfig) Configured() bool {
	return c.ClientID != "" && c.ClientSecret != ""
}
