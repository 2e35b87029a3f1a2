package app

import (
	"context"
	"log/slog"
	"time"

	"weatherstation/internal/config"
	"weatherstation/internal/sampler"
	"weatherstation/internal/sensor"
	"weatherstation/internal/state"
	"weatherstation/internal/telemetry"
	"weatherstation/internal/web"
)

// Run wires the monitor together and runs its two process-lifetime
// activities: the sampler and the serial web listener. It returns when
// ctx is done or the listener fails.
func Run(ctx context.Context, cfg config.Config) error {
	slog.Info("config loaded",
		"appEnv", cfg.AppEnv,
		"logLevel", cfg.LogLevel.String(),
		"httpPort", cfg.HTTPPort,
		"listenBacklog", cfg.ListenBacklog,
		"lockWait", cfg.LockWait,
		"samplePeriod", cfg.SamplePeriod,
		"writeTimeout", cfg.WriteTimeout,
		"sensorDriver", cfg.SensorDriver,
		"stationID", cfg.StationID,
		"mqttBroker", cfg.MQTTBroker,
	)

	store := state.New()

	var dev sensor.Device
	switch cfg.SensorDriver {
	case "bme280":
		dev = sensor.NewBME280(cfg.BME280Address)
	default:
		dev = sensor.NewSim(time.Now().UnixNano())
	}

	var sink sampler.Sink
	if cfg.MQTTBroker != "" {
		pub := telemetry.NewPublisher(telemetry.Config{
			Broker:    cfg.MQTTBroker,
			Port:      cfg.MQTTPort,
			ClientID:  cfg.MQTTClientID,
			StationID: cfg.StationID,
		})
		// Short timeout for the initial connect so a down broker does
		// not block startup; the client keeps retrying in the background.
		connectCtx, connectCancel := context.WithTimeout(ctx, 5*time.Second)
		err := pub.Connect(connectCtx)
		connectCancel()
		if err != nil {
			slog.Warn("mqtt connection failed (continuing without telemetry)", "error", err)
		}
		defer pub.Disconnect()
		sink = pub
	}

	srv := web.NewServer(web.Config{
		Port:         cfg.HTTPPort,
		Backlog:      cfg.ListenBacklog,
		LockWait:     cfg.LockWait,
		WriteTimeout: cfg.WriteTimeout,
	}, store)
	if err := srv.Listen(); err != nil {
		return err
	}

	go sampler.Run(ctx, dev, store, sampler.Config{
		Period:   cfg.SamplePeriod,
		LockWait: cfg.LockWait,
	}, sink)

	errCh := make(chan error, 1)
	go func() {
		slog.Info("web server listening", "addr", srv.Addr().String())
		errCh <- srv.Serve()
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			return err
		}
		return nil
	}

	slog.Info("web server shutting down")
	if err := srv.Close(); err != nil {
		return err
	}
	if err := <-errCh; err != nil {
		return err
	}
	return ctx.Err()
}
