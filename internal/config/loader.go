package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const defaultConfigName = "config.yaml"

// Load builds configuration from defaults, an optional yaml config file, and
// COLLAB_* environment variables, in that precedence order. It returns the
// resolved config file path for logging.
func Load(explicitPath string) (Config, string, error) {
	cfg := Default()

	v := viper.New()
	v.SetConfigType("yaml")
	v.SetDefault("addr", cfg.Addr)
	v.SetDefault("redis_addr", cfg.RedisAddr)
	v.SetDefault("sandbox_url", cfg.SandboxURL)
	v.SetDefault("sandbox_client_id", cfg.SandboxClientID)
	v.SetDefault("sandbox_client_secret", cfg.SandboxClientSecret)
	v.SetDefault("jwt_secret", cfg.JWTSecret)
	v.SetDefault("log_level", cfg.LogLevel)
	v.SetDefault("allowed_origins", cfg.AllowedOrigins)

	v.SetEnvPrefix("COLLAB")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	configPath := resolveConfigPath(explicitPath)
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return cfg, configPath, fmt.Errorf("read config: %w", err)
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, configPath, fmt.Errorf("unmarshal config: %w", err)
	}

	return cfg, configPath, nil
}

// WriteDefault writes the default configuration to path, creating parent
// directories as needed.
func WriteDefault(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(Default())
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

func resolveConfigPath(explicitPath string) string {
	if explicitPath != "" {
		return explicitPath
	}
	if env := os.Getenv("COLLAB_CONFIG_PATH"); env != "" {
		return env
	}
	cwd, err := os.Getwd()
	if err != nil {
		return defaultConfigName
	}
	return filepath.Join(cwd, defaultConfigName)
}
