// Package secrets resolves sensitive values from configuration or files
// without ever logging them.
package secrets

import (
	"fmt"
	"os"
	"strings"
)

// Source describes where a secret value may come from. File wins over
// Value when both are set.
type Source struct {
	// Name labels the secret in error messages.
	Name string
	// Value holds an inline secret from configuration or flags.
	Value string
	// File is a path to a file whose contents are the secret.
	File string
}

// Load resolves the secret described by src. The value is trimmed of
// surrounding whitespace; an empty result is treated as missing.
func Load(src Source) (string, error) {
	name := src.name()

	if file := strings.TrimSpace(src.File); file != "" {
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

	secret := strings.TrimSpace(src.Value)
	if secret == "" {
		return "", fmt.Errorf("%s is not configured", name)
	}

	return secret, nil
}

func (s Source) name() string {
	if name := strings.TrimSpace(s.Name); name != "" {
		return name
	}

	return "secret"
}
