package config

import (
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	TelegramToken string `mapstructure:"TELEGRAM_TOKEN"`
	DBDSN         string `mapstructure:"DB_DSN"`
	Environment   string `mapstructure:"ENV"`
	LogLevel      string `mapstructure:"LOG_LEVEL"`

	Timezone        string `mapstructure:"TIMEZONE"`
	WorkdayStart    string `mapstructure:"WORKDAY_START"`
	WorkdayEnd      string `mapstructure:"WORKDAY_END"`
	SlotStepMinutes int    `mapstructure:"SLOT_STEP_MINUTES"`
	MaxQueryDays    int    `mapstructure:"MAX_QUERY_DAYS"`

	GenerationWeeksAhead int           `mapstructure:"GENERATION_WEEKS_AHEAD"`
	GenerationInterval   time.Duration `mapstructure:"GENERATION_INTERVAL"`
	OutboxPollInterval   time.Duration `mapstructure:"OUTBOX_POLL_INTERVAL"`
	OutboxBatchSize      int           `mapstructure:"OUTBOX_BATCH_SIZE"`

	location *time.Location
	dayStart time.Duration
	dayEnd   time.Duration
}

var defaults = map[string]any{
	"TELEGRAM_TOKEN":         "",
	"DB_DSN":                 "",
	"ENV":                    "development",
	"LOG_LEVEL":              "",
	"TIMEZONE":               "UTC",
	"WORKDAY_START":          "09:00",
	"WORKDAY_END":            "17:00",
	"SLOT_STEP_MINUTES":      15,
	"MAX_QUERY_DAYS":         31,
	"GENERATION_WEEKS_AHEAD": 4,
	"GENERATION_INTERVAL":    24 * time.Hour,
	"OUTBOX_POLL_INTERVAL":   10 * time.Second,
	"OUTBOX_BATCH_SIZE":      50,
}

func Load() (*Config, error) {
	// Пытаемся загрузить .env файл (игнорируем ошибку, если файла нет)
	if err := godotenv.Load(".env"); err != nil {
		log.Println("⚠️  No .env file found, using environment variables")
	} else {
		log.Println("✅ Loaded configuration from .env file")
	}

	v := viper.New()
	v.SetTypeByDefaultValue(true)
	// AutomaticEnv подхватывает только ключи, которые viper уже знает
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	log.Printf("Config loaded (env=%s, timezone=%s)\n", cfg.Environment, cfg.Timezone)

	return cfg, nil
}

func (c *Config) validate() error {
	// Проверяем обязательные поля
	if c.DBDSN == "" {
		return fmt.Errorf("DB_DSN is required but not set")
	}

	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return fmt.Errorf("invalid TIMEZONE %q: %w", c.Timezone, err)
	}
	c.location = loc

	if c.dayStart, err = parseClock(c.WorkdayStart); err != nil {
		return fmt.Errorf("invalid WORKDAY_START: %w", err)
	}
	if c.dayEnd, err = parseClock(c.WorkdayEnd); err != nil {
		return fmt.Errorf("invalid WORKDAY_END: %w", err)
	}
	if c.dayStart >= c.dayEnd {
		return fmt.Errorf("WORKDAY_START %s must be before WORKDAY_END %s", c.WorkdayStart, c.WorkdayEnd)
	}

	if c.SlotStepMinutes <= 0 || 24*60%c.SlotStepMinutes != 0 {
		return fmt.Errorf("SLOT_STEP_MINUTES must divide a day, got %d", c.SlotStepMinutes)
	}
	if c.MaxQueryDays <= 0 {
		return fmt.Errorf("MAX_QUERY_DAYS must be positive, got %d", c.MaxQueryDays)
	}
	if c.GenerationWeeksAhead <= 0 {
		return fmt.Errorf("GENERATION_WEEKS_AHEAD must be positive, got %d", c.GenerationWeeksAhead)
	}
	if c.GenerationInterval <= 0 || c.OutboxPollInterval <= 0 {
		return fmt.Errorf("GENERATION_INTERVAL and OUTBOX_POLL_INTERVAL must be positive")
	}
	if c.OutboxBatchSize <= 0 {
		return fmt.Errorf("OUTBOX_BATCH_SIZE must be positive, got %d", c.OutboxBatchSize)
	}
	return nil
}

// parseClock разбирает время суток в формате HH:MM и возвращает смещение от полуночи
func parseClock(s string) (time.Duration, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, fmt.Errorf("parse %q as HH:MM: %w", s, err)
	}
	return time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute, nil
}

func (c *Config) GetDBDSN() string {
	return c.DBDSN
}

// Location returns the time zone all wall-clock scheduling happens in.
func (c *Config) Location() *time.Location {
	if c.location == nil {
		return time.UTC
	}
	return c.location
}

// WorkdayWindow returns the bookable window as offsets from local midnight.
func (c *Config) WorkdayWindow() (time.Duration, time.Duration) {
	return c.dayStart, c.dayEnd
}

func (c *Config) SlotStep() time.Duration {
	return time.Duration(c.SlotStepMinutes) * time.Minute
}
