package reading

import (
	"strings"
	"testing"
)

func TestValueString(t *testing.T) {
	cases := []struct {
		name string
		v    Value
		want string
	}{
		{"zero", Value{}, "0.000000"},
		{"typical", Value{Int: 23, Micro: 456000}, "23.456000"},
		{"pads fraction", Value{Int: 101, Micro: 325}, "101.000325"},
		{"negative", Value{Int: 12, Micro: 500000, Neg: true}, "-12.500000"},
		{"negative below one", Value{Int: 0, Micro: 500000, Neg: true}, "-0.500000"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.v.String(); got != tc.want {
				t.Errorf("String() = %q; want %q", got, tc.want)
			}
		})
	}
}

func TestFromFloat(t *testing.T) {
	cases := []struct {
		name string
		f    float64
		want Value
	}{
		{"zero", 0, Value{}},
		{"positive", 23.456, Value{Int: 23, Micro: 456000}},
		{"negative", -0.5, Value{Int: 0, Micro: 500000, Neg: true}},
		{"rounds", 0.1234567, Value{Int: 0, Micro: 123457}},
		{"negative zero collapses", -0.0000000001, Value{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := FromFloat(tc.f); got != tc.want {
				t.Errorf("FromFloat(%v) = %+v; want %+v", tc.f, got, tc.want)
			}
		})
	}
}

func TestParseValueRoundTrip(t *testing.T) {
	values := []Value{
		{},
		{Int: 23, Micro: 456000},
		{Int: 101, Micro: 325000},
		{Int: 45, Micro: 120000},
		{Int: 0, Micro: 1},
		{Int: 7, Micro: 999999, Neg: true},
	}
	for _, v := range values {
		got, err := ParseValue(v.String())
		if err != nil {
			t.Fatalf("ParseValue(%q): %v", v.String(), err)
		}
		if got != v {
			t.Errorf("round trip %q: got %+v, want %+v", v.String(), got, v)
		}
	}
}

func TestParseValueRejectsMalformed(t *testing.T) {
	for _, s := range []string{"", "23", "23.45", "23.4560001", "a.bcdefg"} {
		if _, err := ParseValue(s); err == nil {
			t.Errorf("ParseValue(%q): expected error", s)
		}
	}
}

func TestRenderPage(t *testing.T) {
	r := Reading{
		Temperature: Value{Int: 23, Micro: 456000},
		Pressure:    Value{Int: 101, Micro: 325000},
		Humidity:    Value{Int: 45, Micro: 120000},
	}
	body := string(RenderPage(r))

	for _, want := range []string{
		"Temperature: 23.456000 C",
		"Pressure: 101.325000 kPa",
		"Humidity: 45.120000 %",
		"<title>Weather Station</title>",
		"<h1>Weather Station</h1>",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("page body missing %q; body = %q", want, body)
		}
	}
	if len(body) > MaxPageSize {
		t.Errorf("page size %d exceeds bound %d", len(body), MaxPageSize)
	}
}

func TestRenderPageExactBytes(t *testing.T) {
	body := string(RenderPage(Reading{}))
	want := "<html><head><title>Weather Station</title></head>" +
		"<body><h1>Weather Station</h1>" +
		"<p>Temperature: 0.000000 C</p>" +
		"<p>Pressure: 0.000000 kPa</p>" +
		"<p>Humidity: 0.000000 %</p>" +
		"</body></html>"
	if body != want {
		t.Errorf("page = %q; want %q", body, want)
	}
}

func TestParsePageRoundTrip(t *testing.T) {
	r := Reading{
		Temperature: Value{Int: 0, Micro: 500000, Neg: true},
		Pressure:    Value{Int: 99, Micro: 1},
		Humidity:    Value{Int: 100, Micro: 0},
	}
	got, err := ParsePage(RenderPage(r))
	if err != nil {
		t.Fatalf("ParsePage: %v", err)
	}
	if got != r {
		t.Errorf("round trip: got %+v, want %+v", got, r)
	}
}
