package overlay

import (
	"fmt"

	"github.com/berth-dev/berth/pkg/apis/distribution/v1alpha1"
	helmloader "helm.sh/helm/v4/pkg/chart/loader"
	"helm.sh/helm/v4/pkg/chart/common"
	"helm.sh/helm/v4/pkg/chart/common/util"
	chartv2 "helm.sh/helm/v4/pkg/chart/v2"
	"helm.sh/helm/v4/pkg/engine"
	"sigs.k8s.io/yaml"
)

// Overlay rewrites a chart's image references to the proxy registry.
type Overlay struct {
	proxy v1alpha1.ProxyRegistry
}

// New creates an overlay for the given proxy registry.
func New(proxy v1alpha1.ProxyRegistry) *Overlay {
	return &Overlay{proxy: proxy}
}

// LoadChart loads a chart from a local directory or archive.
func LoadChart(path string) (*chartv2.Chart, error) {
	loaded, err := helmloader.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load chart %q: %w", path, err)
	}

	chart, ok := loaded.(*chartv2.Chart)
	if !ok {
		return nil, fmt.Errorf("unexpected chart type: %T", loaded)
	}

	return chart, nil
}

// Values returns the chart's values with image references rewritten to the
// proxy registry.
func (o *Overlay) Values(chart *chartv2.Chart) (map[string]any, error) {
	if chart == nil {
		return nil, fmt.Errorf("chart is nil")
	}

	return RewriteValues(o.proxy, chart.Values), nil
}

// ValuesYAML returns the rewritten values serialized as YAML, ready to hand
// to the installer.
func (o *Overlay) ValuesYAML(chart *chartv2.Chart) (string, error) {
	values, err := o.Values(chart)
	if err != nil {
		return "", err
	}

	encoded, err := yaml.Marshal(values)
	if err != nil {
		return "", fmt.Errorf("marshal overlay values: %w", err)
	}

	return string(encoded), nil
}

// Render renders the chart's templates with the rewritten values and returns
// the manifests keyed by template path.
func (o *Overlay) Render(chart *chartv2.Chart) (map[string]string, error) {
	values, err := o.Values(chart)
	if err != nil {
		return nil, err
	}

	releaseValues, err := util.ToRenderValues(chart, values, common.ReleaseOptions{
		Name:      chart.Name(),
		Namespace: "default",
	}, common.DefaultCapabilities)
	if err != nil {
		return nil, fmt.Errorf("prepare render values: %w", err)
	}

	manifests, err := engine.Render(chart, releaseValues)
	if err != nil {
		return nil, fmt.Errorf("render chart %q: %w", chart.Name(), err)
	}

	return manifests, nil
}
