package helm

import (
	"fmt"
	"os"
	"path/filepath"

	helmstrvals "helm.sh/helm/v4/pkg/strvals"
	"sigs.k8s.io/yaml"
)

// mergeValues flattens the spec's value sources into a single map. Later
// sources win: value files, then inline YAML, then set values.
func mergeValues(spec *ChartSpec, chartPath string) (map[string]any, error) {
	base := map[string]any{}

	for _, filePath := range spec.ValueFiles {
		fileBytes, err := readValuesFile(chartPath, filePath)
		if err != nil {
			return nil, err
		}

		var parsed map[string]any

		err = yaml.Unmarshal(fileBytes, &parsed)
		if err != nil {
			return nil, fmt.Errorf("parse values file %s: %w", filePath, err)
		}

		mergeMapsInto(base, parsed)
	}

	if spec.ValuesYAML != "" {
		var parsed map[string]any

		err := yaml.Unmarshal([]byte(spec.ValuesYAML), &parsed)
		if err != nil {
			return nil, fmt.Errorf("parse inline values: %w", err)
		}

		mergeMapsInto(base, parsed)
	}

	for key, val := range spec.SetValues {
		err := helmstrvals.ParseInto(fmt.Sprintf("%s=%s", key, val), base)
		if err != nil {
			return nil, fmt.Errorf("parse set value %s=%s: %w", key, val, err)
		}
	}

	return base, nil
}

func readValuesFile(chartPath, filePath string) ([]byte, error) {
	resolved := filePath
	if !filepath.IsAbs(filePath) && chartPath != "" {
		resolved = filepath.Join(filepath.Dir(chartPath), filePath)
	}

	data, err := os.ReadFile(resolved) //nolint:gosec // paths come from local config
	if err != nil {
		return nil, fmt.Errorf("read values file %s: %w", filePath, err)
	}

	return data, nil
}

func mergeMapsInto(dest, src map[string]any) {
	for key, srcVal := range src {
		if srcMap, ok := srcVal.(map[string]any); ok {
			if destVal, exists := dest[key]; exists {
				if destMap, ok := destVal.(map[string]any); ok {
					mergeMapsInto(destMap, srcMap)

					continue
				}
			}
		}

		dest[key] = srcVal
	}
}
