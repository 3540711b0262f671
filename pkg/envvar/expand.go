// Package envvar expands ${VAR} and ${VAR:-default} placeholders in
// configuration values.
package envvar

import (
	"os"
	"regexp"
	"strings"
)

// pattern matches ${VAR_NAME} and ${VAR_NAME:-default} placeholders.
// Groups: 1 = variable name, 2 = optional default value.
var pattern = regexp.MustCompile(`\$\{([a-zA-Z_][a-zA-Z0-9_]*)(?::-([^}]*))?\}`)

// Expand replaces placeholders with environment variable values. An unset
// variable resolves to its default when the ${VAR:-default} form is used,
// and to the empty string otherwise.
func Expand(value string) string {
	if !strings.Contains(value, "${") {
		return value
	}

	return pattern.ReplaceAllStringFunc(value, expandMatch)
}

func expandMatch(match string) string {
	groups := pattern.FindStringSubmatch(match)
	if len(groups) < 2 {
		return match
	}

	envValue, exists := os.LookupEnv(groups[1])
	if exists {
		return envValue
	}

	if len(groups) > 2 {
		return groups[2]
	}

	return ""
}
