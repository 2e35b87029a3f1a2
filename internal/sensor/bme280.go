package sensor

import (
	"fmt"
	"log/slog"
	"sync"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/devices/v3/bmxx80"
	"periph.io/x/host/v3"

	"weatherstation/internal/reading"
)

// BME280 reads a Bosch BME280 on the default I2C bus. Initialization is
// deferred to the first Ready call so construction never fails; a missing
// or broken device simply reports not ready.
type BME280 struct {
	addr uint16

	once    sync.Once
	initErr error
	bus     i2c.BusCloser
	dev     *bmxx80.Dev
	env     physic.Env
}

// NewBME280 returns an uninitialized device for the given I2C address
// (usually 0x76 or 0x77).
func NewBME280(addr uint16) *BME280 {
	return &BME280{addr: addr}
}

func (b *BME280) init() {
	if _, err := host.Init(); err != nil {
		b.initErr = fmt.Errorf("host init: %w", err)
		return
	}
	bus, err := i2creg.Open("") // default bus, usually /dev/i2c-1
	if err != nil {
		b.initErr = fmt.Errorf("i2c open: %w", err)
		return
	}
	dev, err := bmxx80.NewI2C(bus, b.addr, &bmxx80.DefaultOpts)
	if err != nil {
		if closeErr := bus.Close(); closeErr != nil {
			slog.Warn("i2c bus close", "error", closeErr)
		}
		b.initErr = fmt.Errorf("bme280 at 0x%02x: %w", b.addr, err)
		return
	}
	b.bus = bus
	b.dev = dev
}

// Ready initializes the device on first use and reports whether it is
// usable.
func (b *BME280) Ready() bool {
	b.once.Do(b.init)
	if b.initErr != nil {
		slog.Error("bme280 not ready", "error", b.initErr)
		return false
	}
	return true
}

// Fetch samples all channels into the device's last-read state.
func (b *BME280) Fetch() error {
	if b.dev == nil {
		return fmt.Errorf("bme280 not initialized")
	}
	if err := b.dev.Sense(&b.env); err != nil {
		return fmt.Errorf("bme280 sense: %w", err)
	}
	return nil
}

// Channel converts the last fetched sample for ch into the fixed-point
// representation.
func (b *BME280) Channel(ch Channel) (reading.Value, error) {
	switch ch {
	case ChannelTemperature:
		return reading.FromFloat(b.env.Temperature.Celsius()), nil
	case ChannelPressure:
		// physic.Pressure is nano Pascal; the page serves kPa.
		return reading.FromFloat(float64(b.env.Pressure) / 1e12), nil
	case ChannelHumidity:
		// physic.RelativeHumidity is stored at a precision of 0.00001%rH.
		return reading.FromFloat(float64(b.env.Humidity) / 100000.0), nil
	default:
		return reading.Value{}, fmt.Errorf("unknown channel %d", ch)
	}
}

// Close halts the sensor and releases the bus.
func (b *BME280) Close() error {
	if b.dev != nil {
		if err := b.dev.Halt(); err != nil {
			return err
		}
	}
	if b.bus != nil {
		return b.bus.Close()
	}
	return nil
}
