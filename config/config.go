package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	HTTPPort       int    `mapstructure:"http_port"`
	LogLevel       string `mapstructure:"log_level"`
	DatabaseDriver string `mapstructure:"database_driver"` // "mysql" or "sqlite"
	DatabaseURL    string `mapstructure:"database_url"`
	SessionSecret  string `mapstructure:"session_secret"`
	RememberSecret string `mapstructure:"remember_secret"`
	PicturesDir    string `mapstructure:"pictures_dir"`
	TemplatesGlob  string `mapstructure:"templates_glob"`
}

var AppConfig Config

func InitConfig() {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	// Environment variable overrides
	viper.SetEnvPrefix("BLOG")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	viper.SetDefault("http_port", 8080)
	viper.SetDefault("log_level", "info")
	viper.SetDefault("database_driver", "sqlite")
	viper.SetDefault("database_url", "blog.db")
	viper.SetDefault("session_secret", "default-very-insecure-session-key") // CHANGE THIS IN PRODUCTION
	viper.SetDefault("remember_secret", "default-very-insecure-remember-key")
	viper.SetDefault("pictures_dir", "static/pictures")
	viper.SetDefault("templates_glob", "templates/*.html")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			fmt.Println("Config file not found, using defaults and environment variables.")
		} else {
			panic(fmt.Errorf("fatal error reading config file: %w", err))
		}
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		panic(fmt.Errorf("unable to decode config into struct: %w", err))
	}
}
