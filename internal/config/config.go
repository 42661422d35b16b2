package config

import (
	"os"

	"codeberg.org/mutker/meteostationd/internal/errors"
	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	DefaultLogLevel = "info"

	defaultInterval      = 10
	defaultSamples       = 20
	defaultSampleDelayMs = 5
	defaultADCMax        = 4095

	// NTC module calibration, matching the shipped sensor board
	defaultSeriesResistance   = 10000.0
	defaultBetaCoefficient    = 3950.0
	defaultNominalResistance  = 1760.0
	defaultNominalTemperature = 25.0

	defaultMQTTPort = 8883
)

type Config struct {
	Interval      int    `mapstructure:"interval"`
	Samples       int    `mapstructure:"samples"`
	SampleDelayMs int    `mapstructure:"sample_delay_ms"`
	ADCMax        int    `mapstructure:"adc_max"`
	LogLevel      string `mapstructure:"log_level"`

	SeriesResistance   float64 `mapstructure:"series_resistance"`
	BetaCoefficient    float64 `mapstructure:"beta_coefficient"`
	NominalResistance  float64 `mapstructure:"nominal_resistance"`
	NominalTemperature float64 `mapstructure:"nominal_temperature"`

	WifiSSID      string `mapstructure:"wifi_ssid"`
	WifiPassword  string `mapstructure:"wifi_password"`
	WifiInterface string `mapstructure:"wifi_interface"`

	MQTTHost     string `mapstructure:"mqtt_host"`
	MQTTPort     int    `mapstructure:"mqtt_port"`
	MQTTUser     string `mapstructure:"mqtt_user"`
	MQTTPassword string `mapstructure:"mqtt_password"`

	UserID   string `mapstructure:"user_id"`
	DeviceID string `mapstructure:"device_id"`

	I2CBus     string `mapstructure:"i2c_bus"`
	NTCChannel int    `mapstructure:"ntc_channel"`
	LDRChannel int    `mapstructure:"ldr_channel"`
}

func Load() (*Config, error) {
	errFactory := errors.New()

	flags := pflag.NewFlagSet(os.Args[0], pflag.ContinueOnError)
	configFile := flags.String("config", "", "Path to configuration file")
	logLevel := flags.String("log-level", "", "Log level (debug, info, warn, error)")
	if err := flags.Parse(os.Args[1:]); err != nil {
		return nil, errFactory.Wrap(errors.ErrBindFlags, err)
	}

	v := viper.New()
	setDefaults(v)

	switch {
	case *configFile != "":
		v.SetConfigFile(*configFile)
	case os.Getenv("METEOSTATIOND_CONFIG") != "":
		v.SetConfigFile(os.Getenv("METEOSTATIOND_CONFIG"))
	default:
		v.SetConfigName("meteostationd")
		v.SetConfigType("toml")
		v.AddConfigPath("/etc")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, errFactory.Wrap(errors.ErrReadConfig, err)
		}
	}

	if *logLevel != "" {
		v.Set("log_level", *logLevel)
	}

	config := &Config{}
	if err := v.Unmarshal(config); err != nil {
		return nil, errFactory.Wrap(errors.ErrInvalidConfig, err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("interval", defaultInterval)
	v.SetDefault("samples", defaultSamples)
	v.SetDefault("sample_delay_ms", defaultSampleDelayMs)
	v.SetDefault("adc_max", defaultADCMax)
	v.SetDefault("log_level", DefaultLogLevel)
	v.SetDefault("series_resistance", defaultSeriesResistance)
	v.SetDefault("beta_coefficient", defaultBetaCoefficient)
	v.SetDefault("nominal_resistance", defaultNominalResistance)
	v.SetDefault("nominal_temperature", defaultNominalTemperature)
	v.SetDefault("wifi_interface", "wlan0")
	v.SetDefault("mqtt_port", defaultMQTTPort)
	v.SetDefault("i2c_bus", "")
	v.SetDefault("ntc_channel", 0)
	v.SetDefault("ldr_channel", 1)
}

func (c *Config) Validate() error {
	errFactory := errors.New()

	if c.Interval <= 0 {
		return errFactory.WithData(errors.ErrInvalidInterval, c.Interval)
	}
	if c.Samples <= 0 {
		return errFactory.WithData(errors.ErrInvalidConfig, "samples must be positive")
	}
	if c.SampleDelayMs < 0 {
		return errFactory.WithData(errors.ErrInvalidConfig, "sample_delay_ms must not be negative")
	}
	if c.ADCMax <= 0 {
		return errFactory.WithData(errors.ErrInvalidConfig, "adc_max must be positive")
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return errFactory.Wrap(errors.ErrInvalidLogLevel, err)
	}

	return nil
}
