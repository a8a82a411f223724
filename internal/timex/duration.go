// Package timex contains time helpers shared by config and services.
package timex

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"
)

// Duration decodes from JSON as either a Go duration string ("15m") or an
// integer number of nanoseconds.
type Duration struct {
	time.Duration
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
		parsed, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", value, err)
		}
		d.Duration = parsed
		return nil
	default:
		return errors.New("invalid duration")
	}
}

// CeilSeconds rounds d up to whole seconds.
func CeilSeconds(d time.Duration) int {
	return int(math.Ceil(d.Seconds()))
}
