package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Telegram   TelegramConfig   `mapstructure:"telegram"`
	Database   DatabaseConfig   `mapstructure:"database"`
	OpenAI     OpenAIConfig     `mapstructure:"openai"`
	Translator TranslatorConfig `mapstructure:"translator"`
	Study      StudyConfig      `mapstructure:"study"`
	Log        LogConfig        `mapstructure:"log"`
}

type TelegramConfig struct {
	Token string `mapstructure:"token"`
	// AllowedUsers restricts the bot to these Telegram user IDs when non-empty
	AllowedUsers []int64 `mapstructure:"allowed_users"`
}

type DatabaseConfig struct {
	Host        string `mapstructure:"host"`
	Port        int    `mapstructure:"port"`
	User        string `mapstructure:"user"`
	Password    string `mapstructure:"password"`
	DBName      string `mapstructure:"dbname"`
	SSLMode     string `mapstructure:"sslmode"`
	UseInMemory bool   `mapstructure:"use_in_memory"`
}

type OpenAIConfig struct {
	APIKey      string  `mapstructure:"api_key"`
	BaseURL     string  `mapstructure:"base_url"`
	Model       string  `mapstructure:"model"`
	MaxTokens   int     `mapstructure:"max_tokens"`
	Temperature float64 `mapstructure:"temperature"`
}

type TranslatorConfig struct {
	TargetLanguage string        `mapstructure:"target_language"`
	Timeout        time.Duration `mapstructure:"timeout"`
	MaxInFlight    int           `mapstructure:"max_in_flight"`
}

type StudyConfig struct {
	CheckInCooldown time.Duration `mapstructure:"checkin_cooldown"`
	DefaultTagColor string        `mapstructure:"default_tag_color"`
}

type LogConfig struct {
	Development bool `mapstructure:"development"`
}

func parseDatabaseURL(dbURL string) (DatabaseConfig, error) {
	u, err := url.Parse(dbURL)
	if err != nil {
		return DatabaseConfig{}, err
	}

	password, _ := u.User.Password()
	port := 5432 // default PostgreSQL port
	if u.Port() != "" {
		if _, err := fmt.Sscanf(u.Port(), "%d", &port); err != nil {
			return DatabaseConfig{}, fmt.Errorf("invalid port %q: %w", u.Port(), err)
		}
	}

	sslMode := u.Query().Get("sslmode")
	if sslMode == "" {
		sslMode = "disable"
	}

	return DatabaseConfig{
		Host:     u.Hostname(),
		Port:     port,
		User:     u.User.Username(),
		Password: password,
		DBName:   strings.TrimPrefix(u.Path, "/"),
		SSLMode:  sslMode,
	}, nil
}

// LoadConfig reads the YAML file at path on top of the defaults. An empty
// path skips the file and relies on defaults and the environment.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("database.port", 5432)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.use_in_memory", false)
	v.SetDefault("openai.model", "gpt-3.5-turbo")
	v.SetDefault("openai.max_tokens", 500)
	v.SetDefault("openai.temperature", 0.3)
	v.SetDefault("translator.target_language", "English")
	v.SetDefault("translator.timeout", "30s")
	v.SetDefault("translator.max_in_flight", 4)
	v.SetDefault("study.checkin_cooldown", "60m")
	v.SetDefault("study.default_tag_color", "FF0000")
	v.SetDefault("log.development", false)

	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, err
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	if dbURL := v.GetString("DATABASE_URL"); dbURL != "" {
		dbConfig, err := parseDatabaseURL(dbURL)
		if err != nil {
			return nil, fmt.Errorf("failed to parse DATABASE_URL: %w", err)
		}
		config.Database = dbConfig
	}

	if token := v.GetString("TELEGRAM_TOKEN"); token != "" {
		config.Telegram.Token = token
	}

	if apiKey := v.GetString("OPENAI_API_KEY"); apiKey != "" {
		config.OpenAI.APIKey = apiKey
	}

	return &config, nil
}

// Validate checks the settings the bot cannot run without
func (c *Config) Validate() error {
	var errs []error
	if c.Telegram.Token == "" {
		errs = append(errs, errors.New("telegram.token is required"))
	}
	if !c.Database.UseInMemory && c.Database.DBName == "" {
		errs = append(errs, errors.New("database.dbname is required unless use_in_memory is set"))
	}
	if c.Study.CheckInCooldown <= 0 {
		errs = append(errs, errors.New("study.checkin_cooldown must be positive"))
	}
	if c.Translator.TargetLanguage == "" {
		errs = append(errs, errors.New("translator.target_language is required"))
	}
	return errors.Join(errs...)
}
