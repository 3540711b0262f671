package fsutil

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

const (
	dirPerm  = 0o750
	filePerm = 0o600
)

// ErrEmptyOutputPath is returned when a write targets an empty path.
var ErrEmptyOutputPath = errors.New("output path is empty")

// TryWriteFile writes content to output, creating parent directories as
// needed. An existing file is left untouched unless force is set.
func TryWriteFile(content, output string, force bool) error {
	if output == "" {
		return ErrEmptyOutputPath
	}

	output = filepath.Clean(output)

	if !force {
		_, err := os.Stat(output)
		if err == nil {
			return nil
		}

		if !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("check file %s: %w", output, err)
		}
	}

	err := os.MkdirAll(filepath.Dir(output), dirPerm)
	if err != nil {
		return fmt.Errorf("create directory for %s: %w", output, err)
	}

	err = os.WriteFile(output, []byte(content), filePerm)
	if err != nil {
		return fmt.Errorf("write file %s: %w", output, err)
	}

	return nil
}
