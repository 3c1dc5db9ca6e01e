package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
)

// setupLogging sends log output to stderr and, when path is set, to a
// freshly truncated file at path. The returned func closes the file.
func setupLogging(path string) (func(), error) {
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if path == "" {
		logrus.SetOutput(os.Stderr)
		return func() {}, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating log directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("opening log file: %w", err)
	}
	logrus.SetOutput(io.MultiWriter(os.Stderr, f))
	fmt.Fprintln(os.Stderr, "Log file path:", path)
	return func() {
		logrus.SetOutput(os.Stderr)
		_ = f.Close()
	}, nil
}
