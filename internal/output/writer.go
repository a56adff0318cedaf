// Package output persists composed report artifacts to the filesystem
// and manages their retention.
package output

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/heliograph/heliograph/pkg/errors"
	"github.com/heliograph/heliograph/pkg/logger"
)

// DefaultDir is the artifact directory used when none is configured
const DefaultDir = "./output"

// Writer writes PDF artifacts under a single output directory
type Writer struct {
	dir string
}

// NewWriter creates a writer rooted at dir
func NewWriter(dir string) *Writer {
	if dir == "" {
		dir = DefaultDir
	}
	return &Writer{dir: dir}
}

// Dir returns the artifact directory
func (w *Writer) Dir() string {
	return w.dir
}

// Write persists data as an artifact named name and returns its path.
// name must be a bare file name; anything that would escape the output
// directory is rejected.
func (w *Writer) Write(name string, data []byte) (string, error) {
	if err := validateName(name); err != nil {
		return "", err
	}

	if err := os.MkdirAll(w.dir, 0755); err != nil {
		return "", errors.Wrap(errors.ErrCodeArtifactWrite,
			fmt.Sprintf("failed to create output directory %s", w.dir), err)
	}

	path := filepath.Join(w.dir, name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", errors.Wrap(errors.ErrCodeArtifactWrite,
			fmt.Sprintf("failed to write artifact %s", name), err)
	}

	logger.Info("Report artifact written",
		zap.String("path", path),
		zap.Int("size_bytes", len(data)),
	)
	return path, nil
}

// Read returns the content of a previously written artifact
func (w *Writer) Read(name string) ([]byte, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(filepath.Join(w.dir, name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New(errors.ErrCodeNotFound,
				fmt.Sprintf("artifact not found: %s", name))
		}
		return nil, errors.Wrap(errors.ErrCodeArtifactWrite,
			fmt.Sprintf("failed to read artifact %s", name), err)
	}
	return data, nil
}

// validateName rejects names that could escape the output directory
func validateName(name string) error {
	if name == "" || name != filepath.Base(name) || strings.Contains(name, "..") {
		return errors.New(errors.ErrCodeValidation,
			fmt.Sprintf("invalid artifact name: %q", name))
	}
	return nil
}
