package reading

import (
	"fmt"
	"strings"
)

// The status page is a fixed wire contract: clients (and the tests) match
// it byte for byte, so it is assembled with plain formatting rather than
// html/template, whose escaping could alter the output.
const pageFormat = "<html><head><title>Weather Station</title></head>" +
	"<body><h1>Weather Station</h1>" +
	"<p>Temperature: %s C</p>" +
	"<p>Pressure: %s kPa</p>" +
	"<p>Humidity: %s %%</p>" +
	"</body></html>"

// MaxPageSize bounds the rendered page. The numeric fields are fixed
// width (sign + 10 integer digits + 6 fraction digits at most), so the
// page can never outgrow this.
const MaxPageSize = 256

// RenderPage formats r into the status page body.
func RenderPage(r Reading) []byte {
	return fmt.Appendf(make([]byte, 0, MaxPageSize), pageFormat,
		r.Temperature, r.Pressure, r.Humidity)
}

// ParsePage recovers the three values from a rendered status page. It is
// the round-trip inverse of RenderPage and exists for tests and scrapers.
func ParsePage(body []byte) (Reading, error) {
	var r Reading
	fields := []struct {
		label string
		unit  string
		dst   *Value
	}{
		{"Temperature: ", " C", &r.Temperature},
		{"Pressure: ", " kPa", &r.Pressure},
		{"Humidity: ", " %", &r.Humidity},
	}
	s := string(body)
	for _, f := range fields {
		_, rest, ok := strings.Cut(s, f.label)
		if !ok {
			return Reading{}, fmt.Errorf("parse page: missing %q", f.label)
		}
		raw, _, ok := strings.Cut(rest, f.unit)
		if !ok {
			return Reading{}, fmt.Errorf("parse page: missing unit %q", f.unit)
		}
		v, err := ParseValue(raw)
		if err != nil {
			return Reading{}, fmt.Errorf("parse page: %w", err)
		}
		*f.dst = v
	}
	return r, nil
}
