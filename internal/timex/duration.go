// Package timex provides a Duration type that can be decoded from JSON and
// YAML configuration files.
//
// Accepted forms:
//   - a Go duration string ("90s", "15m", "1h30m")
//   - a day count with a "d" suffix ("7d"), optionally followed by a Go
//     duration ("1d12h")
//   - an integer number of nanoseconds
package timex

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration for config decoding.
type Duration struct {
	time.Duration
}

// ParseDuration extends time.ParseDuration with a leading "<n>d" day part.
func ParseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty duration")
	}

	i := strings.IndexByte(s, 'd')
	if i < 0 {
		return time.ParseDuration(s)
	}

	days, err := strconv.Atoi(s[:i])
	if err != nil || days < 0 {
		return 0, fmt.Errorf("invalid day count in duration %q", s)
	}
	total := time.Duration(days) * 24 * time.Hour

	if rest := s[i+1:]; rest != "" {
		d, err := time.ParseDuration(rest)
		if err != nil {
			return 0, err
		}
		total += d
	}
	return total, nil
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	switch value := v.(type) {
	case float64:
		d.Duration = time.Duration(value)
		return nil
	case string:
		parsed, err := ParseDuration(value)
		if err != nil {
			return err
		}
		d.Duration = parsed
		return nil
	default:
		return fmt.Errorf("invalid duration: %s", string(b))
	}
}

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("invalid duration at line %d", node.Line)
	}
	if n, err := strconv.ParseInt(node.Value, 10, 64); err == nil {
		d.Duration = time.Duration(n)
		return nil
	}
	parsed, err := ParseDuration(node.Value)
	if err != nil {
		return err
	}
	d.Duration = parsed
	return nil
}
