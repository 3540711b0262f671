package main_test

import (
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
)

func TestGeneratedSchema(t *testing.T) {
	outDir := t.TempDir()
	outPath := filepath.Join(outDir, "berth-config.schema.json")

	cmd := exec.Command("go", "run", ".", outPath)
	cmd.Dir = "."

	out, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("generator failed: %v\noutput:\n%s", err, string(out))
	}

	b, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("read generated schema: %v", err)
	}

	var schema map[string]any
	if err := json.Unmarshal(b, &schema); err != nil {
		t.Fatalf("unmarshal generated schema: %v", err)
	}

	props := mustMap(t, schema["properties"], "properties")

	kind := mustMap(t, props["kind"], "kind")
	assertEnumContains(t, kind, "Distribution", "kind")

	apiVersion := mustMap(t, props["apiVersion"], "apiVersion")
	assertEnumContains(t, apiVersion, "berth.dev/v1alpha1", "apiVersion")

	spec := mustMap(t, props["spec"], "spec")
	specProps := mustMap(t, spec["properties"], "spec.properties")
	environment := mustMap(t, specProps["environment"], "environment")
	envProps := mustMap(t, environment["properties"], "environment.properties")
	provider := mustMap(t, envProps["provider"], "provider")
	assertEnumContains(t, provider, "Kind", "provider")
	assertEnumContains(t, provider, "Cloud", "provider")
}

func assertEnumContains(t *testing.T, prop map[string]any, want, path string) {
	t.Helper()

	enum, ok := prop["enum"].([]any)
	if !ok {
		t.Fatalf("expected %s to carry an enum, got %v", path, prop["enum"])
	}

	for _, value := range enum {
		if value == want {
			return
		}
	}

	t.Errorf("expected %s enum to contain %q, got %v", path, want, enum)
}

func mustMap(t *testing.T, v any, path string) map[string]any {
	t.Helper()

	m, ok := v.(map[string]any)
	if !ok {
		t.Fatalf("expected %s to be an object, got %T", path, v)
	}

	return m
}
