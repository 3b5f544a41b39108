package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override, e.g. BACKUP_RETENTION_DESTINATION_ROOT.
const EnvPrefix = "BACKUP_RETENTION_"

// matches $(VAR_NAME)
var envPattern = regexp.MustCompile(`\$\(([A-Za-z0-9_]+)\)`)

// replaces $(VAR) with os.Getenv(VAR)
func expandEnvVars(s string) string {
	return envPattern.ReplaceAllStringFunc(s, func(m string) string {
		key := mapEnvKey(envPattern.FindStringSubmatch(m)[1])
		return os.Getenv(key)
	})
}

// loadDotEnv loads .env files next to the config file and in the working directory.
// Variables already set in the environment win.
func loadDotEnv(path string) {
	dirs := []string{"."}
	if dir := filepath.Dir(path); dir != "." {
		dirs = append([]string{dir}, dirs...)
	}
	for _, dir := range dirs {
		for _, name := range []string{".env", ".env.local"} {
			_ = godotenv.Load(filepath.Join(dir, name))
		}
	}
}

// Load reads the YAML config at path on top of Default, then applies
// BACKUP_RETENTION_* environment overrides. A missing file is not an error
// when allowMissing is set, so one-shot commands work without a config.
func Load(path string, allowMissing bool) (*Config, error) {
	loadDotEnv(path)

	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		expanded := expandEnvVars(string(data))
		if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
			return nil, fmt.Errorf("unmarshalling yaml: %w", err)
		}
	case os.IsNotExist(err) && allowMissing:
	default:
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return nil, fmt.Errorf("parsing environment overrides: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}
