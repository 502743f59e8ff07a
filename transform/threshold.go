package transform

import "strings"

// Step is one threshold bound paired with the label it classifies as, a
// Grafana color in practice. Steps are ascending; a bound of -Inf (what a
// null dashboard bound parses to) is the base step and matches everything.
type Step struct {
	Value float64
	Color string
}

const defaultColor = "green"

// Classify returns the color of the highest step whose bound the value
// meets, empty when no step matches.
func Classify(v float64, steps []Step) string {
	color := ""
	for _, s := range steps {
		if v >= s.Value {
			color = s.Color
		}
	}
	return color
}

func colorOrDefault(color string) string {
	if color == "" {
		return defaultColor
	}
	return color
}

// severityName folds a threshold color into the three states a hexagon can
// show. Grafana's reds mean critical, orange and yellow mean warning,
// everything else is healthy.
func severityName(color string) string {
	c := strings.ToLower(color)
	switch {
	case c == "critical" || c == "crit" || strings.Contains(c, "red"):
		return "critical"
	case c == "warning" || c == "warn" || strings.Contains(c, "orange") || strings.Contains(c, "yellow"):
		return "warning"
	default:
		return "ok"
	}
}
