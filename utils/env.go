package utils

import (
	"errors"
	"io/fs"
	"log/slog"

	"github.com/joho/godotenv"
)

// LoadEnv reads .env files into the environment without overriding
// variables that are already set.
func LoadEnv(filenames ...string) error {
	if len(filenames) == 0 {
		filenames = []string{".env"}
	}
	err := godotenv.Load(filenames...)
	if errors.Is(err, fs.ErrNotExist) {
		slog.Debug("no .env file found, continuing", "files", filenames)
		return nil
	}
	return err
}
