package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// DotEnv describes what LoadDotEnv did. Path is empty when no file was found.
type DotEnv struct {
	Path    string
	Applied []string
}

// LoadDotEnv merges the nearest .env (cwd or up to five parents) into the
// process environment. Variables that are already set win. The logger is
// built from the merged environment, so the caller reports the outcome.
func LoadDotEnv() (DotEnv, error) {
	path := findEnvFile()
	if path == "" {
		return DotEnv{}, nil
	}
	return loadEnvFile(path)
}

func loadEnvFile(path string) (DotEnv, error) {
	res := DotEnv{Path: path}
	vars, err := godotenv.Read(path)
	if err != nil {
		return res, fmt.Errorf("read env file: %w", err)
	}
	for key, value := range vars {
		if _, exists := os.LookupEnv(key); exists {
			continue
		}
		if err := os.Setenv(key, value); err != nil {
			return res, fmt.Errorf("set %s: %w", key, err)
		}
		res.Applied = append(res.Applied, key)
	}
	return res, nil
}

func findEnvFile() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}
	for i := 0; i < 6; i++ {
		path := filepath.Join(dir, ".env")
		if _, err := os.Stat(path); err == nil {
			return path
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return ""
}
