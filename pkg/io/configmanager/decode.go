package configmanager

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/berth-dev/berth/pkg/apis/distribution/v1alpha1"
	"github.com/berth-dev/berth/pkg/envvar"
	mapstructure "github.com/go-viper/mapstructure/v2"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

// enumDecodeHook canonicalizes enum casing, so "kind" and "Kind" both
// decode to ProviderKind. Unknown values pass through for validation to
// reject.
func enumDecodeHook() mapstructure.DecodeHookFuncType {
	providerType := reflect.TypeOf(v1alpha1.Provider(""))
	resourceKindType := reflect.TypeOf(v1alpha1.ResourceKind(""))

	return func(_, to reflect.Type, data any) (any, error) {
		raw, ok := data.(string)
		if !ok {
			return data, nil
		}

		switch to {
		case providerType:
			return v1alpha1.Provider(canonicalValue(raw, v1alpha1.Provider("").ValidValues())), nil
		case resourceKindType:
			return v1alpha1.ResourceKind(canonicalValue(raw, v1alpha1.ResourceKind("").ValidValues())), nil
		default:
			return data, nil
		}
	}
}

func canonicalValue(raw string, valid []string) string {
	for _, value := range valid {
		if strings.EqualFold(raw, value) {
			return value
		}
	}

	return raw
}

// envExpandDecodeHook expands ${VAR} placeholders in string config values
// before any further decoding.
func envExpandDecodeHook() mapstructure.DecodeHookFuncType {
	return func(from, _ reflect.Type, data any) (any, error) {
		if from.Kind() != reflect.String {
			return data, nil
		}

		raw, ok := data.(string)
		if !ok {
			return data, nil
		}

		return envvar.Expand(raw), nil
	}
}

// metav1DurationDecodeHook decodes "5m"-style strings into metav1.Duration
// fields.
func metav1DurationDecodeHook() mapstructure.DecodeHookFuncType {
	durationType := reflect.TypeOf(metav1.Duration{})

	return func(_, to reflect.Type, data any) (any, error) {
		if to != durationType {
			return data, nil
		}

		raw, ok := data.(string)
		if !ok {
			return data, nil
		}

		parsed, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("parse duration %q: %w", raw, err)
		}

		return metav1.Duration{Duration: parsed}, nil
	}
}
