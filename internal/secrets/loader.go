package secrets

import (
	"fmt"
	"os"
	"strings"
)

// Source describes where a secret may come from. The first configured
// location wins in the order File, Value, EnvFile, Env.
type Source struct {
	// Name is used in error messages to give more context about the secret.
	Name string
	// File points to a file containing the secret value.
	File string
	// Value is an inline secret value provided via configuration or flags.
	Value string
	// EnvFile names an environment variable holding a path to the secret file.
	EnvFile string
	// Env names an environment variable holding the secret itself.
	Env string
}

// Load returns the trimmed secret. An error is returned when no location yields a usable value.
func Load(src Source) (string, error) {
	name := strings.TrimSpace(src.Name)
	if name == "" {
		name = "secret"
	}

	file := strings.TrimSpace(src.File)
	if file == "" && strings.TrimSpace(src.Value) == "" && src.EnvFile != "" {
		file = strings.TrimSpace(os.Getenv(src.EnvFile))
	}

	if file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("reading %s from file %q: %w", name, file, err)
		}
		secret := strings.TrimSpace(string(data))
		if secret == "" {
			return "", fmt.Errorf("%s file %q is empty", name, file)
		}
		return secret, nil
	}

	if secret := strings.TrimSpace(src.Value); secret != "" {
		return secret, nil
	}

	if src.Env != "" {
		if secret := strings.TrimSpace(os.Getenv(src.Env)); secret != "" {
			return secret, nil
		}
		return "", fmt.Errorf("%s is not configured (set %s)", name, src.Env)
	}

	return "", fmt.Errorf("%s is not configured", name)
}
