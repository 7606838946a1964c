package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	configName = ".eventfeed"
	envPrefix  = "EVENTFEED"

	DefaultBaseURL     = "http://127.0.0.1:8000"
	DefaultInterval    = 3 * time.Second
	DefaultMetricsPort = "9120"

	// MinInterval is the shortest accepted poll period.
	MinInterval = 100 * time.Millisecond
)

// Settings is the resolved runtime configuration.
type Settings struct {
	BaseURL     string
	Interval    time.Duration
	Timeout     time.Duration
	Ordering    string
	MetricsPort string
	LogLevel    string
}

// SetDefaults registers the default value of every key.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("base_url", DefaultBaseURL)
	v.SetDefault("interval", DefaultInterval)
	v.SetDefault("timeout", time.Duration(0))
	v.SetDefault("ordering", "latest-issued")
	v.SetDefault("metrics_port", DefaultMetricsPort)
	v.SetDefault("log_level", "info")
}

// InitConfig reads in config file and ENV variables if set.
func InitConfig(cfgFile string) error {
	return initViper(viper.GetViper(), cfgFile)
}

func initViper(v *viper.Viper, cfgFile string) error {
	SetDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return err
		}

		// Search config in home directory with name ".eventfeed" (without extension).
		v.AddConfigPath(home)
		v.SetConfigType("yaml")
		v.SetConfigName(configName)
	}

	// EVENTFEED_BASE_URL, EVENTFEED_INTERVAL, ...
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) || errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

// Load resolves Settings from the global viper instance.
func Load() (Settings, error) {
	return load(viper.GetViper())
}

func load(v *viper.Viper) (Settings, error) {
	s := Settings{
		BaseURL:     strings.TrimRight(v.GetString("base_url"), "/"),
		Ordering:    v.GetString("ordering"),
		MetricsPort: v.GetString("metrics_port"),
		LogLevel:    v.GetString("log_level"),
	}

	var err error
	if s.Interval, err = ParseDuration(v.Get("interval")); err != nil {
		return s, fmt.Errorf("interval: %w", err)
	}
	if s.Timeout, err = ParseDuration(v.Get("timeout")); err != nil {
		return s, fmt.Errorf("timeout: %w", err)
	}

	if s.BaseURL == "" {
		return s, fmt.Errorf("base_url is not set")
	}
	if err := CheckInterval(s.Interval); err != nil {
		return s, err
	}
	if s.Timeout < 0 {
		return s, fmt.Errorf("timeout must not be negative, got %s", s.Timeout)
	}
	return s, nil
}

// ParseDuration reads a duration setting. Strings with a unit ("3s",
// "1500ms") go through time.ParseDuration; bare numbers, from yaml or from
// the environment, are milliseconds.
func ParseDuration(raw interface{}) (time.Duration, error) {
	switch val := raw.(type) {
	case nil:
		return 0, nil
	case time.Duration:
		return val, nil
	case int:
		return time.Duration(val) * time.Millisecond, nil
	case int64:
		return time.Duration(val) * time.Millisecond, nil
	case uint64:
		return time.Duration(val) * time.Millisecond, nil
	case float64:
		return time.Duration(val * float64(time.Millisecond)), nil
	case string:
		str := strings.TrimSpace(val)
		if str == "" {
			return 0, nil
		}
		if ms, err := strconv.ParseFloat(str, 64); err == nil {
			return time.Duration(ms * float64(time.Millisecond)), nil
		}
		d, err := time.ParseDuration(str)
		if err != nil {
			return 0, fmt.Errorf("invalid duration %q", str)
		}
		return d, nil
	default:
		return 0, fmt.Errorf("invalid duration %v (%T)", raw, raw)
	}
}

// CheckInterval rejects poll periods below MinInterval, zero included.
func CheckInterval(d time.Duration) error {
	if d < MinInterval {
		return fmt.Errorf("interval must be at least %s, got %s", MinInterval, d)
	}
	return nil
}

// SaveBaseURL persists the backend address to the config file.
func SaveBaseURL(baseURL string) error {
	return saveBaseURL(viper.GetViper(), baseURL)
}

func saveBaseURL(v *viper.Viper, baseURL string) error {
	v.Set("base_url", strings.TrimRight(baseURL, "/"))

	if err := v.WriteConfig(); err != nil {
		// If file doesn't exist, create it
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return v.SafeWriteConfig()
		}
		// If it exists but failed to write, try writing to default path
		home, herr := os.UserHomeDir()
		if herr != nil {
			return err
		}
		return v.WriteConfigAs(filepath.Join(home, configName+".yaml"))
	}
	return nil
}
