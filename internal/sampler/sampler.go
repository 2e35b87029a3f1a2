// Package sampler runs the sensor polling loop: fetch, convert, publish
// into the shared slot under a bounded lock wait, sleep, repeat.
package sampler

import (
	"context"
	"log/slog"
	"time"

	"weatherstation/internal/reading"
	"weatherstation/internal/sensor"
	"weatherstation/internal/state"
)

type Config struct {
	// Period between samples.
	Period time.Duration
	// LockWait bounds the publish-side lock acquisition. A publish that
	// cannot get the lock within LockWait is skipped; the previous
	// Reading stays visible.
	LockWait time.Duration
}

// Sink receives each Reading that made it into the store. Used to mirror
// samples to telemetry; failures are logged, never fatal.
type Sink interface {
	Send(reading.Reading) error
}

// Run samples dev until ctx is done. It returns early if the device is
// not ready; the rest of the process keeps serving the frozen Reading.
// The first sample is taken immediately, before the first tick, so
// clients see data without waiting a full period.
func Run(ctx context.Context, dev sensor.Device, store *state.Store, cfg Config, sink Sink) {
	slog.Info("sampler started", "period", cfg.Period, "lock_wait", cfg.LockWait)

	ticker := time.NewTicker(cfg.Period)
	defer ticker.Stop()

	var last reading.Reading
	for {
		if !dev.Ready() {
			slog.Error("sensor device not ready, sampler exiting")
			return
		}
		last = sample(dev, last)
		if store.Publish(last, cfg.LockWait) {
			if sink != nil {
				if err := sink.Send(last); err != nil {
					slog.Warn("telemetry send failed", "error", err)
				}
			}
		} else {
			slog.Debug("publish skipped, reading slot busy")
		}

		select {
		case <-ctx.Done():
			slog.Info("sampler stopping")
			return
		case <-ticker.C:
		}
	}
}

// sample fetches one cycle. A failed fetch or channel read is not fatal:
// the channel keeps its value from prev and the cycle still publishes.
func sample(dev sensor.Device, prev reading.Reading) reading.Reading {
	if err := dev.Fetch(); err != nil {
		slog.Warn("sensor fetch failed", "error", err)
	}

	r := prev
	channels := []struct {
		ch  sensor.Channel
		dst *reading.Value
	}{
		{sensor.ChannelTemperature, &r.Temperature},
		{sensor.ChannelPressure, &r.Pressure},
		{sensor.ChannelHumidity, &r.Humidity},
	}
	for _, c := range channels {
		v, err := dev.Channel(c.ch)
		if err != nil {
			slog.Warn("channel read failed, keeping previous value",
				"channel", c.ch.String(),
				"error", err,
			)
			continue
		}
		*c.dst = v
	}
	return r
}
