package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"codeberg.org/mutker/meteostationd/internal/clock"
	"codeberg.org/mutker/meteostationd/internal/config"
	"codeberg.org/mutker/meteostationd/internal/conn"
	"codeberg.org/mutker/meteostationd/internal/logger"
	"codeberg.org/mutker/meteostationd/internal/sensor"
	"codeberg.org/mutker/meteostationd/internal/station"
	"codeberg.org/mutker/meteostationd/internal/telemetry"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"
)

const bme280Addr = 0x76

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.LogLevel, logger.IsService()); err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	logger.Debug().Msg("Config loaded")

	if _, err := host.Init(); err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize periph host")
	}

	bus, err := i2creg.Open(cfg.I2CBus)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open i2c bus")
	}
	defer bus.Close()

	reader, err := sensor.NewADS1115Reader(bus, cfg.ADCMax, cfg.NTCChannel, cfg.LDRChannel)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize adc")
	}
	defer reader.Halt()

	climateDev, err := sensor.NewBME280Climate(bus, bme280Addr)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize climate sensor")
	}
	defer climateDev.Halt()

	session := conn.NewMQTTSession(conn.SessionConfig{
		Host:     cfg.MQTTHost,
		Port:     cfg.MQTTPort,
		Username: cfg.MQTTUser,
		Password: cfg.MQTTPassword,
		ClientID: cfg.DeviceID,
	})
	manager := conn.NewManager(conn.NewNMCLILink(cfg.WifiInterface), session, cfg.WifiSSID, cfg.WifiPassword)
	defer manager.Shutdown()

	sampler := sensor.NewSampler(reader, cfg.Samples, time.Duration(cfg.SampleDelayMs)*time.Millisecond)
	thermistor := sensor.NewThermistor(sensor.Calibration{
		SeriesResistance:   cfg.SeriesResistance,
		BetaCoefficient:    cfg.BetaCoefficient,
		NominalResistance:  cfg.NominalResistance,
		NominalTemperature: cfg.NominalTemperature,
	}, cfg.ADCMax)

	loop := station.New(
		station.Config{
			Interval:   time.Duration(cfg.Interval) * time.Second,
			NTCChannel: cfg.NTCChannel,
			LDRChannel: cfg.LDRChannel,
			ADCMax:     cfg.ADCMax,
			UserID:     cfg.UserID,
			DeviceID:   cfg.DeviceID,
		},
		manager,
		sampler,
		thermistor,
		sensor.NewClimateReader(climateDev),
		clock.System{},
		telemetry.NewPublisher(manager),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go handleSignals(cancel)

	if err := loop.Run(ctx); err != nil {
		logger.Error().Err(err).Msg("error in main loop")
	}
	logger.Info().Msg("Exiting...")
}

func handleSignals(cancel context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	<-sigs
	logger.Info().Msg("Received termination signal.")
	cancel()
}
