// Package reading holds the fixed-point measurement model shared by the
// sampler and the web server, plus the status-page wire format.
package reading

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

const microPerUnit = 1_000_000

// Value is a fixed-point number matching the sensor's native precision:
// an integer magnitude plus a micro-unit fraction in [0, 1_000_000).
// Neg carries the sign separately so values in (-1, 0) are representable.
type Value struct {
	Int   int32
	Micro int32
	Neg   bool
}

// FromFloat converts f to micro precision, rounding half away from zero.
func FromFloat(f float64) Value {
	neg := f < 0
	total := int64(math.Round(math.Abs(f) * microPerUnit))
	v := Value{
		Int:   int32(total / microPerUnit),
		Micro: int32(total % microPerUnit),
		Neg:   neg,
	}
	if v.Int == 0 && v.Micro == 0 {
		v.Neg = false
	}
	return v
}

// Float64 returns the value as a float. Exact for micro fractions up to
// the sensor range; only used for telemetry, never for the wire format.
func (v Value) Float64() float64 {
	f := float64(v.Int) + float64(v.Micro)/microPerUnit
	if v.Neg {
		return -f
	}
	return f
}

// String renders the value as I.MMMMMM with a six-digit zero-padded
// fraction, e.g. 23.456000 or -0.500000.
func (v Value) String() string {
	sign := ""
	if v.Neg {
		sign = "-"
	}
	return fmt.Sprintf("%s%d.%06d", sign, v.Int, v.Micro)
}

// ParseValue is the inverse of String. The fraction must be exactly six
// digits.
func ParseValue(s string) (Value, error) {
	var v Value
	rest := s
	if strings.HasPrefix(rest, "-") {
		v.Neg = true
		rest = rest[1:]
	}
	intPart, fracPart, ok := strings.Cut(rest, ".")
	if !ok {
		return Value{}, fmt.Errorf("parse value %q: missing fraction", s)
	}
	if len(fracPart) != 6 {
		return Value{}, fmt.Errorf("parse value %q: fraction must be 6 digits", s)
	}
	i, err := strconv.ParseInt(intPart, 10, 32)
	if err != nil {
		return Value{}, fmt.Errorf("parse value %q: %w", s, err)
	}
	f, err := strconv.ParseInt(fracPart, 10, 32)
	if err != nil {
		return Value{}, fmt.Errorf("parse value %q: %w", s, err)
	}
	v.Int = int32(i)
	v.Micro = int32(f)
	if v.Int == 0 && v.Micro == 0 {
		v.Neg = false
	}
	return v, nil
}

// Reading is one environmental snapshot. Units: Celsius, kPa, percent.
// A Reading is immutable once constructed; the zero value is the default
// served before the first sample lands.
type Reading struct {
	Temperature Value
	Pressure    Value
	Humidity    Value
}
