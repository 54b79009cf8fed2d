package file

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/joho/godotenv"
)

// LoadEnv loads each existing .env file in order. Variables already set in
// the environment are left alone, so the shell always wins; earlier files
// win over later ones. Missing files are skipped. It returns the files
// that were loaded.
func LoadEnv(paths ...string) ([]string, error) {
	var loaded []string
	for _, p := range paths {
		if p == "" {
			continue
		}
		err := godotenv.Load(p)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return loaded, fmt.Errorf("load %s: %w", p, err)
		}
		loaded = append(loaded, p)
	}
	return loaded, nil
}

// DefaultEnvFiles returns the .env files consulted at startup: the working
// directory first, then the config directory.
func DefaultEnvFiles(configDir string) []string {
	files := []string{".env"}
	if configDir != "" {
		files = append(files, filepath.Join(configDir, ".env"))
	}
	return files
}
