// Package configmanager loads the distribution configuration with the
// priority defaults < berth.yaml < environment (BERTH_ prefix) < flags.
package configmanager

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/berth-dev/berth/pkg/apis/distribution/v1alpha1"
	"github.com/berth-dev/berth/pkg/ui/notify"
	"github.com/berth-dev/berth/pkg/ui/timer"
	mapstructure "github.com/go-viper/mapstructure/v2"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	// EnvPrefix is the prefix for environment variable overrides.
	EnvPrefix = "BERTH"

	// DefaultConfigName is the config file name looked up without extension.
	DefaultConfigName = "berth"
)

// ConfigManager loads v1alpha1.Distribution configurations.
type ConfigManager struct {
	Viper  *viper.Viper
	Config *v1alpha1.Distribution
	Writer io.Writer

	configLoaded    bool
	configFileFound bool
}

// NewConfigManager creates a configuration manager writing notifications to
// writer.
func NewConfigManager(writer io.Writer) *ConfigManager {
	return &ConfigManager{
		Viper:  initializeViper(),
		Config: v1alpha1.NewDistribution(),
		Writer: writer,
	}
}

func initializeViper() *viper.Viper {
	viperInstance := viper.New()
	viperInstance.SetConfigName(DefaultConfigName)
	viperInstance.SetConfigType("yaml")
	viperInstance.AddConfigPath(".")
	viperInstance.SetEnvPrefix(EnvPrefix)
	viperInstance.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viperInstance.AutomaticEnv()

	// Scalar keys are registered so environment-only overrides survive
	// Unmarshal.
	for _, key := range scalarKeys {
		viperInstance.SetDefault(key, nil)
	}

	return viperInstance
}

// scalarKeys are the config paths overridable through the environment.
var scalarKeys = []string{
	"spec.channel",
	"spec.proxyRegistry.host",
	"spec.proxyRegistry.pathPrefix",
	"spec.environment.provider",
	"spec.environment.distribution",
	"spec.environment.version",
	"spec.environment.ttl",
	"spec.environment.connection.kubeconfig",
	"spec.environment.connection.context",
	"spec.environment.connection.timeout",
}

// BindPFlag binds a config key to a command line flag. Flags take priority
// over config file and environment values.
func (m *ConfigManager) BindPFlag(key string, flag *pflag.Flag) error {
	err := m.Viper.BindPFlag(key, flag)
	if err != nil {
		return fmt.Errorf("bind flag %q: %w", flag.Name, err)
	}

	return nil
}

// LoadConfig loads the configuration, emitting progress notifications. When
// tmr is non-nil the success notification includes timing.
func (m *ConfigManager) LoadConfig(tmr timer.Timer) (*v1alpha1.Distribution, error) {
	return m.loadConfigWithOptions(tmr, false)
}

// LoadConfigSilent loads the configuration without notifications.
func (m *ConfigManager) LoadConfigSilent() (*v1alpha1.Distribution, error) {
	return m.loadConfigWithOptions(nil, true)
}

func (m *ConfigManager) loadConfigWithOptions(
	tmr timer.Timer,
	silent bool,
) (*v1alpha1.Distribution, error) {
	if m.configLoaded {
		return m.Config, nil
	}

	if !silent {
		notify.Titlef(m.Writer, "⛵", "Load config")
	}

	err := m.readConfig(silent)
	if err != nil {
		return nil, err
	}

	err = m.unmarshalConfig()
	if err != nil {
		return nil, err
	}

	err = m.Config.Validate()
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	if !silent {
		notify.SuccessWithTimerf(m.Writer, tmr, "config loaded")
	}

	m.configLoaded = true

	return m.Config, nil
}

func (m *ConfigManager) readConfig(silent bool) error {
	err := m.Viper.ReadInConfig()
	if err != nil {
		var notFoundErr viper.ConfigFileNotFoundError
		if !errors.As(err, &notFoundErr) {
			return fmt.Errorf("read config file: %w", err)
		}

		m.configFileFound = false

		if !silent {
			notify.Infof(m.Writer, "no %s.yaml found, using defaults", DefaultConfigName)
		}

		return nil
	}

	m.configFileFound = true

	if !silent {
		notify.Activityf(m.Writer, "using config %s", m.Viper.ConfigFileUsed())
	}

	return nil
}

func (m *ConfigManager) unmarshalConfig() error {
	decoderConfig := func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "yaml"
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			envExpandDecodeHook(),
			enumDecodeHook(),
			metav1DurationDecodeHook(),
		)
	}

	err := m.Viper.Unmarshal(m.Config, decoderConfig)
	if err != nil {
		return fmt.Errorf("unmarshal configuration: %w", err)
	}

	return nil
}
