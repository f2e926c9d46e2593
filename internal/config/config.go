package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type HTTP struct {
	Addr            string        `mapstructure:"addr"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type Log struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"`
}

type Hub struct {
	Retention     time.Duration `mapstructure:"retention"`
	SweepInterval time.Duration `mapstructure:"sweep_interval"`
	MaxSessions   int           `mapstructure:"max_sessions"`
}

type Config struct {
	Mode string          `mapstructure:"mode"`
	HTTP HTTP            `mapstructure:"http"`
	Log  Log             `mapstructure:"log"`
	JWT  JWTConfig       `mapstructure:"jwt"`
	WS   WebSocketConfig `mapstructure:"ws"`
	Hub  Hub             `mapstructure:"hub"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("mode", "production")
	v.SetDefault("http.addr", ":8080")
	v.SetDefault("http.read_timeout", 15*time.Second)
	v.SetDefault("http.write_timeout", 15*time.Second)
	v.SetDefault("http.idle_timeout", 60*time.Second)
	v.SetDefault("http.shutdown_timeout", 15*time.Second)
	v.SetDefault("log.level", "")
	v.SetDefault("log.file", "")
	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.token_lifetime", 24*time.Hour)
	v.SetDefault("ws.read_buffer_size", 1024)
	v.SetDefault("ws.write_buffer_size", 1024)
	v.SetDefault("ws.allowed_origins", []string{})
	v.SetDefault("hub.retention", 10*time.Minute)
	v.SetDefault("hub.sweep_interval", time.Minute)
	v.SetDefault("hub.max_sessions", 10000)
}

// Flags returns the command line flags understood by [Load].
func Flags() *pflag.FlagSet {
	fs := pflag.NewFlagSet("minefield", pflag.ContinueOnError)
	fs.StringP("config", "c", "", "config file path")
	fs.String("mode", "", "development or production")
	fs.String("http.addr", "", "listen address")
	fs.String("log.level", "", "log level")
	return fs
}

// Load reads defaults, then the config file named by the --config flag
// (if any), then MINEFIELD_* environment variables, then flags that
// were set explicitly.
func Load(fs *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("minefield")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if fs != nil {
		path, err := fs.GetString("config")
		if err != nil {
			return nil, err
		}
		if path != "" {
			v.SetConfigFile(path)
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("unable to read config %s: %w", path, err)
			}
		}
		var bindErr error
		fs.VisitAll(func(f *pflag.Flag) {
			if f.Name == "config" || !f.Changed {
				return
			}
			bindErr = errors.Join(bindErr, v.BindPFlag(f.Name, f))
		})
		if bindErr != nil {
			return nil, bindErr
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c Config) Development() bool {
	return c.Mode != "production"
}

func (c Config) Validate() error {
	switch c.Mode {
	case "development", "production":
	default:
		return fmt.Errorf("mode must be 'development' or 'production', got %q", c.Mode)
	}
	if c.HTTP.Addr == "" {
		return fmt.Errorf("http.addr must be set")
	}
	if !c.Development() && c.JWT.Secret == "" {
		return fmt.Errorf("jwt.secret must be set in production")
	}
	if c.Hub.SweepInterval <= 0 {
		return fmt.Errorf("hub.sweep_interval must be positive")
	}
	return nil
}

func (c Config) Fields() logrus.Fields {
	return logrus.Fields{
		"mode":               c.Mode,
		"http_addr":          c.HTTP.Addr,
		"log_level":          c.Log.Level,
		"log_file":           c.Log.File,
		"jwt_token_lifetime": c.JWT.TokenLifetime.String(),
		"ws_allowed_origins": c.WS.AllowedOrigins,
		"hub_retention":      c.Hub.Retention.String(),
		"hub_max_sessions":   c.Hub.MaxSessions,
	}
}
