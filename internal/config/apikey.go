package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"

	"frontpage/internal/services"
)

// APIKeyEnvVar is consulted first during key resolution.
const APIKeyEnvVar = "NYT_API_KEY"

// ResolveAPIKey returns the archive API key. Resolution order: the
// NYT_API_KEY environment variable, a .env file next to the config file,
// the config value, then the plaintext key file. Absence of all four is
// a configuration error raised before any network call.
func (c *Config) ResolveAPIKey(configPath string) (string, error) {
	if key := strings.TrimSpace(os.Getenv(APIKeyEnvVar)); key != "" {
		return key, nil
	}

	if configPath != "" {
		// Best-effort: a missing .env is the common case.
		if env, err := godotenv.Read(filepath.Join(filepath.Dir(configPath), ".env")); err == nil {
			if key := strings.TrimSpace(env[APIKeyEnvVar]); key != "" {
				return key, nil
			}
		}
	}

	if key := strings.TrimSpace(c.Archive.APIKey); key != "" {
		return key, nil
	}

	if c.Archive.KeyFile != "" {
		raw, err := os.ReadFile(c.Archive.KeyFile)
		if err == nil {
			if key := strings.TrimSpace(string(raw)); key != "" {
				return key, nil
			}
		} else if !os.IsNotExist(err) {
			return "", services.Wrap(services.ErrConfiguration, "config", "api key", fmt.Sprintf("read key file %s", c.Archive.KeyFile), err)
		}
	}

	return "", services.Wrap(services.ErrConfiguration, "config", "api key",
		fmt.Sprintf("no key found: set %s, add api_key to the config, or create %s", APIKeyEnvVar, c.Archive.KeyFile), nil)
}
