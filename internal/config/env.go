package config

import (
	"os"
	"strings"
)

// expandEnv replaces ${VAR}, ${VAR:-default} and $VAR with values from the
// environment. Unset variables without a default expand to "".
func expandEnv(input string) string {
	return os.Expand(input, func(key string) string {
		name, def, hasDefault := strings.Cut(key, ":-")
		if v, ok := os.LookupEnv(name); ok && v != "" {
			return v
		}
		if hasDefault {
			return def
		}
		return ""
	})
}
