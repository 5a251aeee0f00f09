package main

import (
	"errors"
	"time"

	"github.com/spf13/viper"

	"github.com/zain311005/smart-door-lock/pkg/access"
	"github.com/zain311005/smart-door-lock/pkg/door"
)

// DefaultConfigFile is written by setup and read by run.
const DefaultConfigFile = "doorlock.yml"

// ServoConfig locates the latch servo and describes its travel.
type ServoConfig struct {
	Port      string `mapstructure:"port"`
	ID        int    `mapstructure:"id"`
	OpenPos   int    `mapstructure:"open_pos"`
	ClosedPos int    `mapstructure:"closed_pos"`
	Step      int    `mapstructure:"step"`
	CadenceMs int    `mapstructure:"cadence_ms"`
}

// AppConfig is the full controller configuration, resolved once at startup.
type AppConfig struct {
	Secret        string      `mapstructure:"secret"`
	IdleTimeoutMs int         `mapstructure:"idle_timeout_ms"`
	LockoutMs     int         `mapstructure:"lockout_ms"`
	MaxAttempts   int         `mapstructure:"max_attempts"`
	HoldOpenMs    int         `mapstructure:"hold_open_ms"`
	Hz            int         `mapstructure:"hz"`
	Servo         ServoConfig `mapstructure:"servo"`
}

func setDefaults() {
	viper.SetDefault("secret", "12345678")
	viper.SetDefault("idle_timeout_ms", 10000)
	viper.SetDefault("lockout_ms", 15000)
	viper.SetDefault("max_attempts", 3)
	viper.SetDefault("hold_open_ms", 3000)
	viper.SetDefault("hz", 20)
	viper.SetDefault("servo.id", 1)
	viper.SetDefault("servo.open_pos", 3072)
	viper.SetDefault("servo.closed_pos", 1024)
	viper.SetDefault("servo.step", 40)
	viper.SetDefault("servo.cadence_ms", 20)
}

// loadConfig reads doorlock.yml from the working directory, falling back
// to defaults when the file does not exist.
func loadConfig() (*AppConfig, error) {
	viper.SetConfigName("doorlock")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	var cfg AppConfig
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// saveConfig writes the configuration for later runs.
func saveConfig(cfg *AppConfig) error {
	viper.Set("secret", cfg.Secret)
	viper.Set("idle_timeout_ms", cfg.IdleTimeoutMs)
	viper.Set("lockout_ms", cfg.LockoutMs)
	viper.Set("max_attempts", cfg.MaxAttempts)
	viper.Set("hold_open_ms", cfg.HoldOpenMs)
	viper.Set("hz", cfg.Hz)
	viper.Set("servo.port", cfg.Servo.Port)
	viper.Set("servo.id", cfg.Servo.ID)
	viper.Set("servo.open_pos", cfg.Servo.OpenPos)
	viper.Set("servo.closed_pos", cfg.Servo.ClosedPos)
	viper.Set("servo.step", cfg.Servo.Step)
	viper.Set("servo.cadence_ms", cfg.Servo.CadenceMs)
	return viper.WriteConfigAs(DefaultConfigFile)
}

// accessConfig converts the file representation into the controller config.
func (c *AppConfig) accessConfig() access.Config {
	return access.Config{
		Secret:          c.Secret,
		IdleTimeout:     time.Duration(c.IdleTimeoutMs) * time.Millisecond,
		LockoutDuration: time.Duration(c.LockoutMs) * time.Millisecond,
		MaxAttempts:     c.MaxAttempts,
		HoldOpen:        time.Duration(c.HoldOpenMs) * time.Millisecond,
		Hz:              c.Hz,
	}
}

// travel returns the latch travel reference positions.
func (c *AppConfig) travel() door.Travel {
	return door.Travel{ClosedPos: c.Servo.ClosedPos, OpenPos: c.Servo.OpenPos}
}
