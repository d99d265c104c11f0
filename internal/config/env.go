package config

import (
	"os"
	"regexp"
)

var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// missingEnvVars walks the decoded YAML tree and returns every referenced
// ${VAR} that is not set. All missing vars are collected before the caller
// fails, so one fix-and-rerun cycle surfaces the complete list.
func missingEnvVars(data any) []string {
	var missing []string
	seen := map[string]bool{}

	var walk func(any)
	walk = func(node any) {
		switch v := node.(type) {
		case string:
			for _, m := range envVarPattern.FindAllStringSubmatch(v, -1) {
				name := m[1]
				if _, ok := os.LookupEnv(name); !ok && !seen[name] {
					seen[name] = true
					missing = append(missing, name)
				}
			}
		case []any:
			for _, item := range v {
				walk(item)
			}
		case map[string]any:
			for _, item := range v {
				walk(item)
			}
		}
	}
	walk(data)
	return missing
}

// interpolateEnv returns a copy of the decoded YAML tree with every ${VAR}
// replaced by its environment value. Call missingEnvVars first; unset vars
// are substituted with the empty string here.
func interpolateEnv(data any) any {
	switch v := data.(type) {
	case string:
		return envVarPattern.ReplaceAllStringFunc(v, func(match string) string {
			return os.Getenv(envVarPattern.FindStringSubmatch(match)[1])
		})
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = interpolateEnv(item)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(v))
		for key, item := range v {
			out[key] = interpolateEnv(item)
		}
		return out
	default:
		return data
	}
}
