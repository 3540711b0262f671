// Package helm wraps the Helm v4 action machinery behind a small interface
// for installing, upgrading, and removing the distribution's charts.
package helm

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	helmaction "helm.sh/helm/v4/pkg/action"
	helmloader "helm.sh/helm/v4/pkg/chart/loader"
	chartv2 "helm.sh/helm/v4/pkg/chart/v2"
	helmcli "helm.sh/helm/v4/pkg/cli"
	helmgetter "helm.sh/helm/v4/pkg/getter"
	helmkube "helm.sh/helm/v4/pkg/kube"
	releasev1 "helm.sh/helm/v4/pkg/release/v1"
	repov1 "helm.sh/helm/v4/pkg/repo/v1"
)

// DefaultTimeout is the fallback timeout for chart operations.
const DefaultTimeout = 5 * time.Minute

const chartRefParts = 2

var (
	errReleaseNameRequired     = errors.New("helm: release name is required")
	errChartSpecRequired       = errors.New("helm: chart spec is required")
	errRepositoryEntryRequired = errors.New("helm: repository entry is required")
	errRepositoryNameRequired  = errors.New("helm: repository name is required")
	errRepositoryConfigUnset   = errors.New("helm: repository config path is not set")
	errRepositoryCacheUnset    = errors.New("helm: repository cache path is not set")
)

// ChartSpec describes a chart operation.
type ChartSpec struct {
	ReleaseName string
	ChartName   string
	Namespace   string
	Version     string

	CreateNamespace bool
	Wait            bool
	Timeout         time.Duration

	ValuesYAML string
	ValueFiles []string
	SetValues  map[string]string

	RepoURL  string
	Username string
	Password string
}

// RepositoryEntry describes a chart repository to register locally before
// chart operations.
type RepositoryEntry struct {
	Name     string
	URL      string
	Username string
	Password string
}

// ReleaseInfo captures release metadata after an operation.
type ReleaseInfo struct {
	Name       string
	Namespace  string
	Revision   int
	Status     string
	Chart      string
	AppVersion string
	Updated    time.Time
	Notes      string
}

// Interface is the chart functionality the installers depend on.
type Interface interface {
	InstallChart(ctx context.Context, spec *ChartSpec) (*ReleaseInfo, error)
	InstallOrUpgradeChart(ctx context.Context, spec *ChartSpec) (*ReleaseInfo, error)
	UninstallRelease(ctx context.Context, releaseName, namespace string) error
	AddRepository(ctx context.Context, entry *RepositoryEntry) error
}

// Client is the default Helm v4 backed implementation.
type Client struct {
	actionConfig *helmaction.Configuration
	settings     *helmcli.EnvSettings
}

var _ Interface = (*Client)(nil)

// NewClient creates a Helm client against the given kubeconfig and context.
func NewClient(kubeconfig, kubeContext string) (*Client, error) {
	settings := helmcli.New()
	if kubeconfig != "" {
		settings.KubeConfig = kubeconfig
	}

	if kubeContext != "" {
		settings.KubeContext = kubeContext
	}

	actionConfig := new(helmaction.Configuration)

	err := actionConfig.Init(
		settings.RESTClientGetter(),
		settings.Namespace(),
		os.Getenv("HELM_DRIVER"),
	)
	if err != nil {
		return nil, fmt.Errorf("initialize helm action config: %w", err)
	}

	return &Client{actionConfig: actionConfig, settings: settings}, nil
}

// InstallChart installs a chart from the provided specification.
func (c *Client) InstallChart(ctx context.Context, spec *ChartSpec) (*ReleaseInfo, error) {
	return c.installRelease(ctx, spec, false)
}

// InstallOrUpgradeChart upgrades the release when it exists and installs it
// otherwise.
func (c *Client) InstallOrUpgradeChart(
	ctx context.Context,
	spec *ChartSpec,
) (*ReleaseInfo, error) {
	return c.installRelease(ctx, spec, true)
}

// UninstallRelease removes a release by name within the given namespace.
func (c *Client) UninstallRelease(ctx context.Context, releaseName, namespace string) error {
	if releaseName == "" {
		return errReleaseNameRequired
	}

	ctxErr := ctx.Err()
	if ctxErr != nil {
		return fmt.Errorf("uninstall release aborted: %w", ctxErr)
	}

	cleanup, err := c.switchNamespace(namespace)
	if err != nil {
		return err
	}
	defer cleanup()

	uninstall := helmaction.NewUninstall(c.actionConfig)
	uninstall.KeepHistory = false

	_, uninstallErr := uninstall.Run(releaseName)
	if uninstallErr != nil {
		return fmt.Errorf("uninstall release %q: %w", releaseName, uninstallErr)
	}

	return nil
}

func (c *Client) installRelease(
	ctx context.Context,
	spec *ChartSpec,
	upgrade bool,
) (*ReleaseInfo, error) {
	if spec == nil {
		return nil, errChartSpecRequired
	}

	if spec.ReleaseName == "" {
		return nil, errReleaseNameRequired
	}

	cleanup, err := c.switchNamespace(spec.Namespace)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	var release *releasev1.Release

	if upgrade && c.releaseExists(spec.ReleaseName) {
		release, err = c.performUpgrade(ctx, spec)
	} else {
		release, err = c.performInstall(ctx, spec)
	}

	if err != nil {
		return nil, err
	}

	return releaseToInfo(release), nil
}

func (c *Client) releaseExists(releaseName string) bool {
	history := helmaction.NewHistory(c.actionConfig)
	history.Max = 1

	releases, err := history.Run(releaseName)

	return err == nil && len(releases) > 0
}

func (c *Client) performInstall(
	ctx context.Context,
	spec *ChartSpec,
) (*releasev1.Release, error) {
	install := helmaction.NewInstall(c.actionConfig)
	install.ReleaseName = spec.ReleaseName
	install.Namespace = spec.Namespace
	install.CreateNamespace = spec.CreateNamespace
	install.Version = spec.Version
	install.Timeout = operationTimeout(spec)

	if spec.Wait {
		install.WaitStrategy = helmkube.StatusWatcherStrategy
	}

	applyChartPathOptions(&install.ChartPathOptions, spec)

	chart, chartPath, err := c.loadChart(spec, &install.ChartPathOptions)
	if err != nil {
		return nil, err
	}

	values, err := mergeValues(spec, chartPath)
	if err != nil {
		return nil, err
	}

	releaser, err := install.RunWithContext(ctx, chart, values)
	if err != nil {
		return nil, fmt.Errorf("install release %q: %w", spec.ReleaseName, err)
	}

	return assertRelease(releaser)
}

func (c *Client) performUpgrade(
	ctx context.Context,
	spec *ChartSpec,
) (*releasev1.Release, error) {
	upgrade := helmaction.NewUpgrade(c.actionConfig)
	upgrade.Namespace = spec.Namespace
	upgrade.Version = spec.Version
	upgrade.Timeout = operationTimeout(spec)

	if spec.Wait {
		upgrade.WaitStrategy = helmkube.StatusWatcherStrategy
	}

	applyChartPathOptions(&upgrade.ChartPathOptions, spec)

	chart, chartPath, err := c.loadChart(spec, &upgrade.ChartPathOptions)
	if err != nil {
		return nil, err
	}

	values, err := mergeValues(spec, chartPath)
	if err != nil {
		return nil, err
	}

	releaser, err := upgrade.RunWithContext(ctx, spec.ReleaseName, chart, values)
	if err != nil {
		return nil, fmt.Errorf("upgrade release %q: %w", spec.ReleaseName, err)
	}

	return assertRelease(releaser)
}

func operationTimeout(spec *ChartSpec) time.Duration {
	if spec.Timeout > 0 {
		return spec.Timeout
	}

	return DefaultTimeout
}

func applyChartPathOptions(options *helmaction.ChartPathOptions, spec *ChartSpec) {
	options.RepoURL = spec.RepoURL
	options.Username = spec.Username
	options.Password = spec.Password
	options.Version = spec.Version
}

// loadChart resolves the chart reference to a local path and loads it. When
// a repository URL is set the chart is located through the repository index
// first.
func (c *Client) loadChart(
	spec *ChartSpec,
	options *helmaction.ChartPathOptions,
) (*chartv2.Chart, string, error) {
	chartPath := spec.ChartName

	if spec.RepoURL != "" {
		located, err := c.locateChartInRepo(spec)
		if err != nil {
			return nil, "", err
		}

		chartPath = located
	} else if options != nil {
		resolved, err := options.LocateChart(spec.ChartName, c.settings)
		if err == nil {
			chartPath = resolved
		}
	}

	loaded, err := helmloader.Load(chartPath)
	if err != nil {
		return nil, "", fmt.Errorf("load chart %q: %w", chartPath, err)
	}

	chart, ok := loaded.(*chartv2.Chart)
	if !ok {
		return nil, "", fmt.Errorf("unexpected chart type: %T", loaded)
	}

	return chart, chartPath, nil
}

func (c *Client) locateChartInRepo(spec *ChartSpec) (string, error) {
	_, chartName := parseChartRef(spec.ChartName)
	if chartName == "" {
		chartName = spec.ChartName
	}

	options := []repov1.FindChartInRepoURLOption{
		repov1.WithChartVersion(spec.Version),
	}

	if spec.Username != "" || spec.Password != "" {
		options = append(options, repov1.WithUsernamePassword(spec.Username, spec.Password))
	}

	chartURL, err := repov1.FindChartInRepoURL(
		spec.RepoURL,
		chartName,
		helmgetter.All(c.settings),
		options...,
	)
	if err != nil {
		return "", fmt.Errorf(
			"locate chart %q in repository %s: %w", chartName, spec.RepoURL, err)
	}

	return chartURL, nil
}

// switchNamespace points the action configuration at the given namespace and
// returns a cleanup restoring the previous one.
func (c *Client) switchNamespace(namespace string) (func(), error) {
	if namespace == "" || c.settings.Namespace() == namespace {
		return func() {}, nil
	}

	previous := c.settings.Namespace()
	c.settings.SetNamespace(namespace)

	err := c.actionConfig.Init(
		c.settings.RESTClientGetter(), namespace, os.Getenv("HELM_DRIVER"))
	if err != nil {
		c.settings.SetNamespace(previous)
		_ = c.actionConfig.Init(
			c.settings.RESTClientGetter(), previous, os.Getenv("HELM_DRIVER"))

		return nil, fmt.Errorf("set helm namespace %q: %w", namespace, err)
	}

	return func() {
		c.settings.SetNamespace(previous)
		_ = c.actionConfig.Init(
			c.settings.RESTClientGetter(), previous, os.Getenv("HELM_DRIVER"))
	}, nil
}

func parseChartRef(chartRef string) (string, string) {
	parts := strings.SplitN(chartRef, "/", chartRefParts)
	if len(parts) == 1 {
		return "", parts[0]
	}

	return parts[0], parts[1]
}

func assertRelease(releaser any) (*releasev1.Release, error) {
	release, ok := releaser.(*releasev1.Release)
	if !ok {
		return nil, fmt.Errorf("unexpected release type: %T", releaser)
	}

	return release, nil
}

func releaseToInfo(release *releasev1.Release) *ReleaseInfo {
	if release == nil {
		return nil
	}

	return &ReleaseInfo{
		Name:       release.Name,
		Namespace:  release.Namespace,
		Revision:   release.Version,
		Status:     release.Info.Status.String(),
		Chart:      release.Chart.Metadata.Name,
		AppVersion: release.Chart.Metadata.AppVersion,
		Updated:    release.Info.LastDeployed,
		Notes:      release.Info.Notes,
	}
}
