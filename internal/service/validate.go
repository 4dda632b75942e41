package service

import (
	"path/filepath"
	"strings"

	"meetapi/internal/config"
)

// validateFile checks an incoming upload against the per-category extension
// allow-list and the global size cap. It returns the normalized (lowercase)
// extension including the leading dot.
func validateFile(cfg config.UploadConfig, category, fileName string, size int64) (string, error) {
	if size <= 0 {
		return "", ErrEmptyFile
	}
	if size > cfg.MaxSizeBytes {
		return "", ErrFileTooLarge
	}
	ext := strings.ToLower(filepath.Ext(fileName))
	if ext == "" {
		return "", ErrFileTypeNotAllowed
	}
	allowed, ok := cfg.AllowedExtensions[category]
	if !ok {
		return "", ErrFileTypeNotAllowed
	}
	for _, a := range allowed {
		if a == ext {
			return ext, nil
		}
	}
	return "", ErrFileTypeNotAllowed
}
