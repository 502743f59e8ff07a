// Package varsub performs the textual dashboard-variable substitution that
// the Grafana frontend would normally do before a query reaches the
// datasource. It knows nothing about query languages: ${name} and $name are
// replaced as plain text wherever they occur.
package varsub

import (
	"sort"
	"strings"
)

// Builtins are the frontend-computed Grafana variables, pinned to the values
// that suit a one-hour window. User variables override them on collision.
var Builtins = map[string]string{
	"__rate_interval": "5m",
	"__interval":      "1m",
	"__interval_ms":   "60000",
	"__range":         "1h",
	"__range_s":       "3600",
	"__range_ms":      "3600000",
}

// Merge overlays user variables on the builtins. The input map is not
// modified.
func Merge(user map[string]string) map[string]string {
	merged := make(map[string]string, len(Builtins)+len(user))
	for k, v := range Builtins {
		merged[k] = v
	}
	for k, v := range user {
		merged[k] = v
	}
	return merged
}

// Apply substitutes every ${name} and $name occurrence in template. Longer
// names are substituted first so a variable that is a prefix of another
// (inst vs instance) never clobbers the longer one. Names absent from vars
// are left untouched.
func Apply(template string, vars map[string]string) string {
	if len(vars) == 0 {
		return template
	}

	names := make([]string, 0, len(vars))
	for name := range vars {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if len(names[i]) != len(names[j]) {
			return len(names[i]) > len(names[j])
		}
		return names[i] < names[j]
	})

	out := template
	for _, name := range names {
		value := vars[name]
		out = strings.ReplaceAll(out, "${"+name+"}", value)
		out = strings.ReplaceAll(out, "$"+name, value)
	}
	return out
}
