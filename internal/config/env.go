package config

import (
	"fmt"
	"strconv"
	"strings"
)

// Environment variable names.
const (
	EnvPort           = "PORT"
	EnvNodeEnv        = "NODE_ENV"
	EnvLogLevel       = "LOG_LEVEL"
	EnvAllowedOrigins = "ALLOWED_ORIGINS"
	EnvCheckRateLimit = "CHECK_RATE_LIMIT_MAX"
	EnvReplicateToken = "REPLICATE_API_TOKEN"
	EnvOpenAIKey      = "OPENAI_API_KEY"
	EnvOpenAIBaseURL  = "OPENAI_BASE_URL"
	EnvProvider       = "A11YSCAN_PROVIDER"
	EnvDBDir          = "A11YSCAN_DB_DIR"
	EnvStrictDial     = "A11YSCAN_STRICT_DIAL"
)

// ApplyEnv overrides cfg with the environment variables that are set.
func ApplyEnv(cfg *Config, getenv func(string) string) error {
	if v := getenv(EnvPort); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: %s=%q", ErrInvalidEnv, EnvPort, v)
		}
		cfg.Port = port
	}
	if v := getenv(EnvNodeEnv); v != "" {
		cfg.Environment = strings.ToLower(strings.TrimSpace(v))
	}
	setString(&cfg.LogLevel, getenv(EnvLogLevel))
	if v := getenv(EnvAllowedOrigins); v != "" {
		cfg.AllowedOrigins = SplitList(v)
	}
	if v := getenv(EnvCheckRateLimit); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: %s=%q", ErrInvalidEnv, EnvCheckRateLimit, v)
		}
		cfg.CheckRateLimit = n
	}
	if v := getenv(EnvStrictDial); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%w: %s=%q", ErrInvalidEnv, EnvStrictDial, v)
		}
		cfg.StrictDial = b
	}
	setString(&cfg.ReplicateToken, getenv(EnvReplicateToken))
	setString(&cfg.OpenAIKey, getenv(EnvOpenAIKey))
	setString(&cfg.OpenAIBaseURL, getenv(EnvOpenAIBaseURL))
	setString(&cfg.Provider, getenv(EnvProvider))
	setString(&cfg.DBDir, getenv(EnvDBDir))
	return nil
}
