// Package timerange resolves Grafana-style time expressions into concrete
// instants. Supported forms: "now", "now-30m" style relative offsets with
// s/m/h/d units, RFC3339 timestamps, and epoch seconds or milliseconds.
package timerange

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/juju/errors"
)

var (
	ErrInvalidExpression = errors.NewNotValid(nil, "invalid time expression")
	ErrInvalidRange      = errors.NewNotValid(nil, "time range start must precede end")
)

var relative = regexp.MustCompile(`^now(?:([+-])(\d+)([smhd]))?$`)

var units = map[string]time.Duration{
	"s": time.Second,
	"m": time.Minute,
	"h": time.Hour,
	"d": 24 * time.Hour,
}

// Range is a resolved window. From is strictly before To.
type Range struct {
	From time.Time
	To   time.Time
}

// FromMillis renders the start as the epoch-millisecond string the Grafana
// query API expects.
func (r Range) FromMillis() string {
	return strconv.FormatInt(r.From.UnixNano()/int64(time.Millisecond), 10)
}

func (r Range) ToMillis() string {
	return strconv.FormatInt(r.To.UnixNano()/int64(time.Millisecond), 10)
}

func (r Range) Span() time.Duration {
	return r.To.Sub(r.From)
}

// Resolve resolves both expressions against a reference instant captured
// once, so "now-1h".."now" is an exact hour regardless of parse time.
func Resolve(from, to string) (Range, error) {
	return ResolveAt(time.Now(), from, to)
}

func ResolveAt(now time.Time, from, to string) (Range, error) {
	f, err := resolveExpr(now, from)
	if err != nil {
		return Range{}, err
	}
	t, err := resolveExpr(now, to)
	if err != nil {
		return Range{}, err
	}
	if !f.Before(t) {
		return Range{}, errors.Annotatef(ErrInvalidRange, "%q..%q", from, to)
	}
	return Range{From: f, To: t}, nil
}

func resolveExpr(now time.Time, expr string) (time.Time, error) {
	s := strings.TrimSpace(expr)
	if s == "" {
		return time.Time{}, errors.Annotate(ErrInvalidExpression, "empty expression")
	}

	if m := relative.FindStringSubmatch(s); m != nil {
		if m[1] == "" {
			return now, nil
		}
		n, err := strconv.Atoi(m[2])
		if err != nil {
			return time.Time{}, errors.Annotatef(ErrInvalidExpression, "%q", expr)
		}
		d := time.Duration(n) * units[m[3]]
		if m[1] == "-" {
			return now.Add(-d), nil
		}
		return now.Add(d), nil
	}

	if ts, err := time.Parse(time.RFC3339, s); err == nil {
		return ts, nil
	}

	if epoch, err := strconv.ParseInt(s, 10, 64); err == nil {
		// Thirteen and more digits only make sense as milliseconds.
		if epoch >= 1_000_000_000_000 {
			return time.Unix(epoch/1000, (epoch%1000)*int64(time.Millisecond)), nil
		}
		return time.Unix(epoch, 0), nil
	}

	return time.Time{}, errors.Annotatef(ErrInvalidExpression, "%q", expr)
}
