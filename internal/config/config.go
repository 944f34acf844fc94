package config

// Config holds the collaboration service's settings.
type Config struct {
	Addr                string   `mapstructure:"addr" yaml:"addr"`
	RedisAddr           string   `mapstructure:"redis_addr" yaml:"redis_addr"`
	SandboxURL          string   `mapstructure:"sandbox_url" yaml:"sandbox_url"`
	SandboxClientID     string   `mapstructure:"sandbox_client_id" yaml:"sandbox_client_id"`
	SandboxClientSecret string   `mapstructure:"sandbox_client_secret" yaml:"sandbox_client_secret"`
	JWTSecret           string   `mapstructure:"jwt_secret" yaml:"jwt_secret"`
	LogLevel            string   `mapstructure:"log_level" yaml:"log_level"`
	AllowedOrigins      []string `mapstructure:"allowed_origins" yaml:"allowed_origins"`
}

// Default returns configuration with reasonable starter defaults.
// RedisAddr is intentionally empty: the room directory is optional and the
// service runs fully in-memory without it.
func Default() Config {
	return Config{
		Addr:           ":4000",
		SandboxURL:     "https://api.jdoodle.com/v1/execute",
		LogLevel:       "info",
		AllowedOrigins: []string{"*"},
	}
}
