package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Conf holds the application configuration, making it accessible globally.
var Conf *Config

// Config struct is the top-level configuration structure.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	MQTT       MQTTConfig       `mapstructure:"mqtt"`
	Logging    LoggingConfig    `mapstructure:"logging"`
	Assessment AssessmentConfig `mapstructure:"assessment"`
}

// ServerConfig holds server-related settings.
type ServerConfig struct {
	Port          string `mapstructure:"port"`
	SessionSecret string `mapstructure:"session_secret"`
}

// MQTTConfig holds settings for the optional MQTT sample source and the
// completed-result publisher.
type MQTTConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	Broker      string `mapstructure:"broker"`
	ClientID    string `mapstructure:"client_id"`
	Topic       string `mapstructure:"topic"`
	ResultTopic string `mapstructure:"result_topic"`
}

// LoggingConfig holds settings for the logger.
type LoggingConfig struct {
	Directory  string `mapstructure:"directory"`
	MaxSize    int    `mapstructure:"max_size"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"`
	Compress   bool   `mapstructure:"compress"`
}

// AssessmentConfig exposes every tunable of the analysis core. Defaults
// follow the 20-second, weighted-five-factor tapping variant.
type AssessmentConfig struct {
	TappingDurationSeconds float64 `mapstructure:"tapping_duration_seconds"`
	TremorDurationSeconds  float64 `mapstructure:"tremor_duration_seconds"`
	SamplingRateHz         float64 `mapstructure:"sampling_rate_hz"`

	PeakWindowSeconds   float64 `mapstructure:"peak_window_seconds"`
	MinPeakDistance     int     `mapstructure:"min_peak_distance"`
	MinFrequencySamples int     `mapstructure:"min_frequency_samples"`
	MinTremorSamples    int     `mapstructure:"min_tremor_samples"`
	DisplayWindowSize   int     `mapstructure:"display_window_size"`

	FrequencyWeight   float64 `mapstructure:"frequency_weight"`
	ConsistencyWeight float64 `mapstructure:"consistency_weight"`
	PeakWeight        float64 `mapstructure:"peak_weight"`
	FatigueWeight     float64 `mapstructure:"fatigue_weight"`

	FrequencyAsymmetryHz float64 `mapstructure:"frequency_asymmetry_hz"`
	AmplitudeAsymmetryG  float64 `mapstructure:"amplitude_asymmetry_g"`
}

// setDefaults sets the default values for the configuration.
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "5060")
	v.SetDefault("server.session_secret", "change-me")

	// MQTT defaults (disabled unless a broker is configured)
	v.SetDefault("mqtt.enabled", false)
	v.SetDefault("mqtt.broker", "tcp://localhost:1883")
	v.SetDefault("mqtt.client_id", "shaky-sample-subscriber")
	v.SetDefault("mqtt.topic", "shaky/samples")
	v.SetDefault("mqtt.result_topic", "shaky/results")

	// Logging defaults
	v.SetDefault("logging.directory", "logs")
	v.SetDefault("logging.max_size", 10)   // 10 MB
	v.SetDefault("logging.max_backups", 3) // Keep 3 backups
	v.SetDefault("logging.max_age", 7)     // 7 days
	v.SetDefault("logging.compress", true) // Compress old logs

	// Assessment defaults
	v.SetDefault("assessment.tapping_duration_seconds", 20.0)
	v.SetDefault("assessment.tremor_duration_seconds", 10.0)
	v.SetDefault("assessment.sampling_rate_hz", 50.0)
	v.SetDefault("assessment.peak_window_seconds", 3.0)
	v.SetDefault("assessment.min_peak_distance", 5)
	v.SetDefault("assessment.min_frequency_samples", 20)
	v.SetDefault("assessment.min_tremor_samples", 10)
	v.SetDefault("assessment.display_window_size", 100)
	v.SetDefault("assessment.frequency_weight", 0.30)
	v.SetDefault("assessment.consistency_weight", 0.25)
	v.SetDefault("assessment.peak_weight", 0.25)
	v.SetDefault("assessment.fatigue_weight", 0.20)
	v.SetDefault("assessment.frequency_asymmetry_hz", 1.5)
	v.SetDefault("assessment.amplitude_asymmetry_g", 0.03)
}

// Init initializes the configuration with Viper.
func Init(projectRoot string, log *zap.Logger) error {
	v := viper.New()

	// Set default values
	setDefaults(v)

	// --- File Configuration ---
	v.AddConfigPath(filepath.Join(projectRoot, "config"))
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	// --- Environment Variable Binding ---
	v.SetEnvPrefix("SHAKY") // e.g., SHAKY_SERVER_PORT
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read the initial configuration from the file.
	// It's okay if the file doesn't exist; defaults and env vars will be used.
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	// Unmarshal the config into our global Conf variable
	if err := v.Unmarshal(&Conf); err != nil {
		return fmt.Errorf("unable to decode config into struct: %w", err)
	}

	// Set up a watch for configuration changes for hot-reloading
	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		log.Info("Configuration file changed, reloading.", zap.String("file", e.Name))
		if err := v.Unmarshal(&Conf); err != nil {
			log.Error("Error reloading configuration", zap.Error(err))
		}
	})

	log.Info("Configuration loaded successfully")
	return nil
}
