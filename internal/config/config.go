package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	AppEnv   string
	LogLevel slog.Level

	HTTPPort      int
	ListenBacklog int
	LockWait      time.Duration
	SamplePeriod  time.Duration
	WriteTimeout  time.Duration

	SensorDriver  string
	BME280Address uint16
	StationID     string

	// MQTTBroker empty disables telemetry mirroring entirely.
	MQTTBroker   string
	MQTTPort     int
	MQTTClientID string
}

func LoadFromEnv() (Config, error) {
	appEnv := strings.TrimSpace(os.Getenv("APP_ENV"))
	if appEnv == "" {
		appEnv = "dev"
	}
	switch appEnv {
	case "dev", "prod":
	default:
		return Config{}, fmt.Errorf("invalid APP_ENV %q (allowed: dev, prod)", appEnv)
	}

	logLevelStr := strings.TrimSpace(os.Getenv("LOG_LEVEL"))
	if logLevelStr == "" {
		logLevelStr = "info"
	}
	level, err := parseLogLevel(logLevelStr)
	if err != nil {
		return Config{}, err
	}

	httpPortStr := strings.TrimSpace(os.Getenv("HTTP_PORT"))
	if httpPortStr == "" {
		httpPortStr = "80"
	}
	httpPort, err := strconv.Atoi(httpPortStr)
	if err != nil {
		return Config{}, fmt.Errorf("invalid HTTP_PORT %q: %w", httpPortStr, err)
	}
	if httpPort < 0 || httpPort > 65535 {
		return Config{}, fmt.Errorf("HTTP_PORT out of range: %d", httpPort)
	}

	backlogStr := strings.TrimSpace(os.Getenv("LISTEN_BACKLOG"))
	if backlogStr == "" {
		backlogStr = "5"
	}
	backlog, err := strconv.Atoi(backlogStr)
	if err != nil {
		return Config{}, fmt.Errorf("invalid LISTEN_BACKLOG %q: %w", backlogStr, err)
	}
	if backlog < 1 {
		return Config{}, fmt.Errorf("LISTEN_BACKLOG must be positive, got %d", backlog)
	}

	lockWait, err := durationFromEnv("LOCK_WAIT", "500ms")
	if err != nil {
		return Config{}, err
	}
	if lockWait <= 0 {
		return Config{}, fmt.Errorf("LOCK_WAIT must be positive, got %v", lockWait)
	}

	samplePeriod, err := durationFromEnv("SAMPLE_PERIOD", "5s")
	if err != nil {
		return Config{}, err
	}
	if samplePeriod <= 0 {
		return Config{}, fmt.Errorf("SAMPLE_PERIOD must be positive, got %v", samplePeriod)
	}

	// Zero disables the write deadline.
	writeTimeout, err := durationFromEnv("WRITE_TIMEOUT", "10s")
	if err != nil {
		return Config{}, err
	}
	if writeTimeout < 0 {
		return Config{}, fmt.Errorf("WRITE_TIMEOUT must not be negative, got %v", writeTimeout)
	}

	sensorDriver := strings.TrimSpace(os.Getenv("SENSOR_DRIVER"))
	if sensorDriver == "" {
		sensorDriver = "sim"
	}
	switch sensorDriver {
	case "sim", "bme280":
	default:
		return Config{}, fmt.Errorf("invalid SENSOR_DRIVER %q (allowed: sim, bme280)", sensorDriver)
	}

	bme280AddressStr := strings.TrimSpace(os.Getenv("BME280_ADDRESS"))
	if bme280AddressStr == "" {
		bme280AddressStr = "0x76"
	}
	bme280Address, err := strconv.ParseUint(bme280AddressStr, 0, 16)
	if err != nil {
		return Config{}, fmt.Errorf("invalid BME280_ADDRESS %q: %w", bme280AddressStr, err)
	}

	stationID := strings.TrimSpace(os.Getenv("STATION_ID"))
	if stationID == "" {
		stationID = "home"
	}

	mqttBroker := strings.TrimSpace(os.Getenv("MQTT_BROKER"))

	mqttPortStr := strings.TrimSpace(os.Getenv("MQTT_PORT"))
	if mqttPortStr == "" {
		mqttPortStr = "1883"
	}
	mqttPort, err := strconv.Atoi(mqttPortStr)
	if err != nil {
		return Config{}, fmt.Errorf("invalid MQTT_PORT %q: %w", mqttPortStr, err)
	}

	mqttClientID := strings.TrimSpace(os.Getenv("MQTT_CLIENT_ID"))
	if mqttClientID == "" {
		mqttClientID = "weatherstation"
	}

	return Config{
		AppEnv:        appEnv,
		LogLevel:      level,
		HTTPPort:      httpPort,
		ListenBacklog: backlog,
		LockWait:      lockWait,
		SamplePeriod:  samplePeriod,
		WriteTimeout:  writeTimeout,
		SensorDriver:  sensorDriver,
		BME280Address: uint16(bme280Address),
		StationID:     stationID,
		MQTTBroker:    mqttBroker,
		MQTTPort:      mqttPort,
		MQTTClientID:  mqttClientID,
	}, nil
}

func durationFromEnv(name, def string) (time.Duration, error) {
	s := strings.TrimSpace(os.Getenv(name))
	if s == "" {
		s = def
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", name, s, err)
	}
	return d, nil
}

func parseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid LOG_LEVEL %q (allowed: debug, info, warn, error)", s)
	}
}
