package uploader

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Supported image extensions
var supportedImageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".bmp":  true,
	".webp": true,
	".heic": true,
	".heif": true,
	".tiff": true,
	".tif":  true,
}

// IsImageFile checks if a file has an image extension.
func IsImageFile(path string) bool {
	return supportedImageExtensions[strings.ToLower(filepath.Ext(path))]
}

// ComputeFileHash computes the SHA256 hash of the file content. The
// server computes the same hash to detect duplicates; the local value
// is only journaled and displayed, never used for a dedup decision.
func ComputeFileHash(filePath string) (string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	hash := sha256.New()
	if _, err := io.Copy(hash, file); err != nil {
		return "", fmt.Errorf("failed to compute hash: %w", err)
	}

	return hex.EncodeToString(hash.Sum(nil)), nil
}

// ValidateImageFile checks that the path exists, is a regular file and
// carries an image extension.
func ValidateImageFile(filePath string) error {
	info, err := os.Stat(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("file not found: %s", filePath)
		}
		return fmt.Errorf("failed to stat file: %w", err)
	}

	if info.IsDir() {
		return fmt.Errorf("path is a directory: %s", filePath)
	}

	if !IsImageFile(filePath) {
		return fmt.Errorf("unsupported file type: %s", filepath.Ext(filePath))
	}

	return nil
}
