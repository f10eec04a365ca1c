package recap

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// Instant is a normalized, timezone-naive point in time. Upstream values are
// already expressed in the platform's reporting timezone and are not re-based;
// internally they are carried as UTC wall-clock values.
type Instant struct {
	t     time.Time
	known bool
}

func NewInstant(t time.Time) Instant {
	return Instant{t: t, known: true}
}

func (i Instant) Known() bool     { return i.known }
func (i Instant) Time() time.Time { return i.t }

// After reports whether i is strictly more recent than other. An unknown
// instant sorts below every known one, so it loses every tie-break.
func (i Instant) After(other Instant) bool {
	if !i.known {
		return false
	}
	if !other.known {
		return true
	}
	return i.t.After(other.t)
}

func (i Instant) Sub(other Instant) time.Duration {
	return i.t.Sub(other.t)
}

// Or returns i when known, otherwise fallback.
func (i Instant) Or(fallback Instant) Instant {
	if i.known {
		return i
	}
	return fallback
}

// ParseInstant normalizes the timestamp shapes the upstream API emits:
// epoch seconds as int/float/numeric string, "YYYY-MM-DD HH:MM:SS", or
// "YYYY-MM-DD". Anything else yields an unknown Instant; it never fails.
func ParseInstant(raw any) Instant {
	switch v := raw.(type) {
	case nil:
		return Instant{}
	case string:
		return parseInstantString(v)
	case float64:
		return instantFromEpoch(v)
	case float32:
		return instantFromEpoch(float64(v))
	case int:
		return instantFromEpoch(float64(v))
	case int32:
		return instantFromEpoch(float64(v))
	case int64:
		return instantFromEpoch(float64(v))
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return Instant{}
		}
		return instantFromEpoch(f)
	default:
		return Instant{}
	}
}

var instantLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func parseInstantString(s string) Instant {
	s = strings.TrimSpace(s)
	if s == "" {
		return Instant{}
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return instantFromEpoch(f)
	}
	for _, layout := range instantLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return Instant{t: t, known: true}
		}
	}
	return Instant{}
}

// The platform writes 0 where a timestamp is absent; a non-positive epoch is
// therefore "unknown", not 1970.
func instantFromEpoch(f float64) Instant {
	if f <= 0 {
		return Instant{}
	}
	sec := int64(f)
	nsec := int64((f - float64(sec)) * 1e9)
	return Instant{t: time.Unix(sec, nsec).UTC(), known: true}
}
