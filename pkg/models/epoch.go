package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// EpochTime is an instant carried on the wire as epoch seconds in a string
// ("1712345678.000200"), the way the chat platform encodes message timestamps.
type EpochTime struct {
	time.Time
}

// NewEpochTime wraps t.
func NewEpochTime(t time.Time) EpochTime {
	return EpochTime{Time: t.UTC()}
}

// ParseEpoch parses an epoch-seconds string with optional fractional part.
func ParseEpoch(s string) (EpochTime, error) {
	if s == "" {
		return EpochTime{}, nil
	}
	secPart, fracPart, hasFrac := strings.Cut(s, ".")
	sec, err := strconv.ParseInt(secPart, 10, 64)
	if err != nil {
		// Exponent notation and similar only survive as floats.
		f, ferr := strconv.ParseFloat(s, 64)
		if ferr != nil {
			return EpochTime{}, fmt.Errorf("invalid epoch timestamp %q: %w", s, ferr)
		}
		whole, frac := math.Modf(f)
		return EpochTime{Time: time.Unix(int64(whole), int64(math.Round(frac*1e6))*1e3).UTC()}, nil
	}
	var nanos int64
	if hasFrac && fracPart != "" {
		if len(fracPart) > 9 {
			fracPart = fracPart[:9]
		}
		fracPart += strings.Repeat("0", 9-len(fracPart))
		nanos, err = strconv.ParseInt(fracPart, 10, 64)
		if err != nil || nanos < 0 {
			return EpochTime{}, fmt.Errorf("invalid epoch timestamp %q", s)
		}
	}
	return EpochTime{Time: time.Unix(sec, nanos).UTC()}, nil
}

// String renders the timestamp as epoch seconds with microsecond precision.
func (e EpochTime) String() string {
	if e.IsZero() {
		return ""
	}
	return fmt.Sprintf("%d.%06d", e.Unix(), e.Nanosecond()/1e3)
}

func (e EpochTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(e.String())
}

// UnmarshalJSON accepts both the string form and a bare JSON number.
func (e *EpochTime) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*e = EpochTime{}
		return nil
	}
	var s string
	if len(data) > 0 && data[0] == '"' {
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
	} else {
		s = string(data)
	}
	parsed, err := ParseEpoch(s)
	if err != nil {
		return err
	}
	*e = parsed
	return nil
}
