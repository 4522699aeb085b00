package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ReadSecret reads a Docker-secrets style file dir/name and trims it.
func ReadSecret(dir, name string) (string, error) {
	filePath := filepath.Join(dir, name)
	secretBytes, err := os.ReadFile(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to read secret file %s: %w", filePath, err)
	}
	secret := strings.TrimSpace(string(secretBytes))
	if secret == "" {
		return "", fmt.Errorf("secret file %s is empty", filePath)
	}
	return secret, nil
}
