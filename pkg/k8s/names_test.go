package k8s_test

import (
	"testing"

	"github.com/berth-dev/berth/pkg/k8s"
	"github.com/stretchr/testify/assert"
)

func TestSanitizeToDNSLabel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "already valid", input: "harbor-stable", want: "harbor-stable"},
		{name: "uppercase and spaces", input: "Harbor 2.11.1", want: "harbor-2-11-1"},
		{name: "build metadata", input: "harbor 2.11.1+build.7", want: "harbor-2-11-1-build-7"},
		{name: "consecutive separators collapse", input: "a__b..c", want: "a-b-c"},
		{name: "leading and trailing trimmed", input: "--edge--", want: "edge"},
		{name: "empty", input: "   ", want: ""},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, test.want, k8s.SanitizeToDNSLabel(test.input))
		})
	}
}
