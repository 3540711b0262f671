// Package scaffolder generates a starter berth.yaml so new distributions
// begin from the packaged defaults.
package scaffolder

import (
	"fmt"
	"io"

	"github.com/berth-dev/berth/pkg/apis/distribution/v1alpha1"
	"github.com/berth-dev/berth/pkg/fsutil"
	"github.com/berth-dev/berth/pkg/ui/notify"
	"sigs.k8s.io/yaml"
)

// Scaffolder writes distribution config files.
type Scaffolder struct {
	writer io.Writer
}

// NewScaffolder creates a scaffolder writing notifications to writer.
func NewScaffolder(writer io.Writer) *Scaffolder {
	return &Scaffolder{writer: writer}
}

// Scaffold writes the default distribution config to output. An existing
// file is kept unless force is set.
func (s *Scaffolder) Scaffold(output string, force bool) error {
	content, err := DefaultConfigYAML()
	if err != nil {
		return err
	}

	err = fsutil.TryWriteFile(content, output, force)
	if err != nil {
		return fmt.Errorf("scaffold %s: %w", output, err)
	}

	notify.Successf(s.writer, "generated %s", output)

	return nil
}

// DefaultConfigYAML renders the default distribution config as YAML.
func DefaultConfigYAML() (string, error) {
	encoded, err := yaml.Marshal(v1alpha1.NewDistribution())
	if err != nil {
		return "", fmt.Errorf("marshal default config: %w", err)
	}

	return string(encoded), nil
}
