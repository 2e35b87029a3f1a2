// Package sensor abstracts the environmental sensor: a hardware BME280
// behind periph.io, or a simulated device for running without hardware.
package sensor

import "weatherstation/internal/reading"

// Channel identifies one measurement channel of a Device.
type Channel int

const (
	ChannelTemperature Channel = iota // ambient temperature, Celsius
	ChannelPressure                   // kPa
	ChannelHumidity                   // percent relative humidity
)

func (c Channel) String() string {
	switch c {
	case ChannelTemperature:
		return "temperature"
	case ChannelPressure:
		return "pressure"
	case ChannelHumidity:
		return "humidity"
	default:
		return "unknown"
	}
}

// Device is the sensor capability consumed by the sampler. Ready reports
// whether the hardware is usable at all; Fetch samples every channel at
// once; Channel returns the last fetched value for one channel. Channel
// failures are per-cycle and recoverable, a false Ready is not.
type Device interface {
	Ready() bool
	Fetch() error
	Channel(Channel) (reading.Value, error)
}
