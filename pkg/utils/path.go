package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// CreateFolder makes sure every given directory exists.
func CreateFolder(folderPath ...string) error {
	for _, folder := range folderPath {
		if strings.TrimSpace(folder) == "" {
			continue
		}
		if err := os.MkdirAll(folder, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", folder, err)
		}
	}
	return nil
}

// UploadPath joins an object key such as "products/123-abc.png" onto the uploads root
// and creates the parent directory.
func UploadPath(root, objectKey string) (string, error) {
	clean := filepath.Clean("/" + objectKey)
	full := filepath.Join(root, clean)
	if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
		return "", fmt.Errorf("failed to create directory for %s: %w", objectKey, err)
	}
	return full, nil
}

// PublicURL builds the URL an uploaded object is served from.
func PublicURL(baseURL, mount, objectKey string) string {
	return strings.TrimSuffix(baseURL, "/") + "/" + strings.Trim(mount, "/") + "/" + strings.TrimPrefix(objectKey, "/")
}
