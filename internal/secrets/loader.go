package secrets

import (
	"fmt"
	"os"
	"strings"
)

// Source describes how to load a secret value.
type Source struct {
	// Name is used in error messages to give more context about the secret.
	Name string
	// Value is an inline secret value provided via configuration or environment.
	Value string
	// File points to a file containing the secret value, e.g. a mounted
	// docker or kubernetes secret. When set it takes precedence over Value.
	File string
	// Optional allows the secret to resolve to an empty string, as a database
	// password may.
	Optional bool
}

// Load returns the resolved secret value from the provided source. When File is
// set it takes precedence over Value. The returned secret is always trimmed. An
// error is returned when neither File nor Value contain a usable secret, unless
// the source is optional.
func Load(src Source) (string, error) {
	name := strings.TrimSpace(src.Name)
	if name == "" {
		name = "secret"
	}

	file := strings.TrimSpace(src.File)
	if file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("reading %s from file %q: %w", name, file, err)
		}
		src.Value = string(data)
	}

	secret := strings.TrimSpace(src.Value)
	if secret != "" || src.Optional {
		return secret, nil
	}

	if file != "" {
		return "", fmt.Errorf("%s file %q is empty", name, file)
	}
	return "", fmt.Errorf("%s is not configured", name)
}
