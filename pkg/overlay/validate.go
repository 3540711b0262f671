package overlay

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/yannh/kubeconform/pkg/validator"
	"golang.org/x/sync/errgroup"
)

const validateConcurrency = 4

// ErrManifestInvalid is returned when a rendered manifest fails schema
// validation.
var ErrManifestInvalid = errors.New("manifest invalid")

// Validator validates rendered manifests against Kubernetes JSON schemas.
type Validator struct {
	inner validator.Validator
}

// NewValidator creates a manifest validator. schemaLocations follow the
// kubeconform convention; when empty the default upstream schema registry
// is used.
func NewValidator(schemaLocations []string) (*Validator, error) {
	inner, err := validator.New(schemaLocations, validator.Opts{
		Strict:               true,
		IgnoreMissingSchemas: true,
	})
	if err != nil {
		return nil, fmt.Errorf("create manifest validator: %w", err)
	}

	return &Validator{inner: inner}, nil
}

// ValidateManifests validates the rendered manifests concurrently. Empty
// manifests (comment-only templates) are skipped. The first failure reports
// the manifest path and the schema error.
func (v *Validator) ValidateManifests(
	ctx context.Context,
	manifests map[string]string,
) error {
	paths := make([]string, 0, len(manifests))
	for path := range manifests {
		paths = append(paths, path)
	}

	sort.Strings(paths)

	group, ctx := errgroup.WithContext(ctx)
	group.SetLimit(validateConcurrency)

	for _, path := range paths {
		content := manifests[path]
		if strings.TrimSpace(content) == "" {
			continue
		}

		group.Go(func() error {
			ctxErr := ctx.Err()
			if ctxErr != nil {
				return fmt.Errorf("validation aborted: %w", ctxErr)
			}

			return v.validateOne(path, content)
		})
	}

	err := group.Wait()
	if err != nil {
		return err
	}

	return nil
}

func (v *Validator) validateOne(path, content string) error {
	results := v.inner.Validate(path, io.NopCloser(strings.NewReader(content)))

	for _, result := range results {
		switch result.Status {
		case validator.Valid, validator.Skipped, validator.Empty:
		case validator.Invalid, validator.Error:
			return fmt.Errorf("%w: %s: %v", ErrManifestInvalid, path, result.Err)
		}
	}

	return nil
}
