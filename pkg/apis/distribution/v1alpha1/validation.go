package v1alpha1

import (
	"errors"
	"fmt"
	"slices"

	"github.com/Masterminds/semver/v3"
)

var (
	// ErrNoCharts is returned when the config declares nothing to install.
	ErrNoCharts = errors.New("no charts declared")
	// ErrInvalidProvider is returned for an unknown environment provider.
	ErrInvalidProvider = errors.New("invalid environment provider")
	// ErrInvalidResourceKind is returned for an unknown verify resource kind.
	ErrInvalidResourceKind = errors.New("invalid resource kind")
	// ErrResourceIncomplete is returned when a verify resource lacks a
	// namespace or name.
	ErrResourceIncomplete = errors.New("verify resource requires namespace and name")
	// ErrChartIncomplete is returned when a chart lacks a name or namespace.
	ErrChartIncomplete = errors.New("chart requires name and namespace")
	// ErrInvalidChartVersion is returned when a pinned chart version does
	// not parse as a semantic version.
	ErrInvalidChartVersion = errors.New("invalid chart version")
)

// Validate checks the distribution config for structural problems. It is
// called once after loading; a bad required input is a fatal precondition
// failure.
func (d *Distribution) Validate() error {
	if len(d.Spec.Charts) == 0 {
		return ErrNoCharts
	}

	provider := d.Spec.Environment.Provider
	if !slices.Contains(provider.ValidValues(), string(provider)) {
		return fmt.Errorf("%w: %q", ErrInvalidProvider, provider)
	}

	for _, chart := range d.Spec.Charts {
		if chart.Name == "" || chart.Namespace == "" {
			return fmt.Errorf("%w: %+v", ErrChartIncomplete, chart)
		}

		if chart.Version != "" {
			_, err := semver.NewVersion(chart.Version)
			if err != nil {
				return fmt.Errorf("%w: chart %q version %q: %v",
					ErrInvalidChartVersion, chart.Name, chart.Version, err)
			}
		}
	}

	for _, tier := range d.Spec.Verify.Tiers {
		for _, resource := range tier.Resources {
			err := resource.validate(tier.Name)
			if err != nil {
				return err
			}
		}
	}

	return nil
}

func (r Resource) validate(tierName string) error {
	if !slices.Contains(r.Kind.ValidValues(), string(r.Kind)) {
		return fmt.Errorf("%w: %q in tier %q", ErrInvalidResourceKind, r.Kind, tierName)
	}

	if r.Namespace == "" || r.Name == "" {
		return fmt.Errorf("%w: %s %q in tier %q", ErrResourceIncomplete, r.Kind, r.Name, tierName)
	}

	return nil
}
