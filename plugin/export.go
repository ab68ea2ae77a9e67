package plugin

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
)

// defaultExportDir holds reports written without a configured path.
const defaultExportDir = "newman"

// WriteExport writes the report content and returns the path it was written to.
func WriteExport(e *Export) (string, error) {
	path := exportPath(e)

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		logger := logrus.WithError(err).WithField("Path", path)
		logger.Error("Failed to create report directory")
		return "", errors.New("failed to create report directory: " + err.Error())
	}
	if err := os.WriteFile(path, []byte(e.Content), 0o644); err != nil {
		logger := logrus.WithError(err).WithField("Path", path)
		logger.Error("Failed to write report")
		return "", errors.New("failed to write report: " + err.Error())
	}

	logrus.Infof("Wrote %s report to %s", e.Name, path)
	return path, nil
}

// exportPath resolves the destination of an export. Directories receive the
// default file name.
func exportPath(e *Export) string {
	if e.Path == "" {
		return filepath.Join(defaultExportDir, e.Default)
	}
	if strings.HasSuffix(e.Path, "/") || strings.HasSuffix(e.Path, string(os.PathSeparator)) {
		return filepath.Join(e.Path, e.Default)
	}
	if info, err := os.Stat(e.Path); err == nil && info.IsDir() {
		return filepath.Join(e.Path, e.Default)
	}
	return e.Path
}
