// Package config loads server settings. Sources are applied in order, each
// overriding the previous one: built-in defaults, an optional YAML file,
// an optional .env file, then the process environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"

	"github.com/iliamunaev/virtual-cafe/internal/logger"
)

// ScheduleParser parses report schedules: a cron spec with an optional
// seconds field or a descriptor such as "@every 30s".
var ScheduleParser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// Config holds every server setting.
type Config struct {
	Addr           string        `yaml:"addr"`
	AdminAddr      string        `yaml:"admin_addr"`
	TeaCapacity    int           `yaml:"tea_capacity"`
	CoffeeCapacity int           `yaml:"coffee_capacity"`
	TeaBrew        time.Duration `yaml:"tea_brew"`
	CoffeeBrew     time.Duration `yaml:"coffee_brew"`
	Tick           time.Duration `yaml:"tick"`
	MaxItems       int           `yaml:"max_items"`
	AMQPURL        string        `yaml:"amqp_url"`
	AMQPExchange   string        `yaml:"amqp_exchange"`
	ReportSchedule string        `yaml:"report_schedule"`
	LogLevel       string        `yaml:"log_level"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Addr:           ":12345",
		AdminAddr:      ":8080",
		TeaCapacity:    2,
		CoffeeCapacity: 2,
		TeaBrew:        30 * time.Second,
		CoffeeBrew:     45 * time.Second,
		Tick:           100 * time.Millisecond,
		MaxItems:       50,
		AMQPExchange:   "cafe.status",
		ReportSchedule: "@every 30s",
		LogLevel:       "info",
	}
}

// Load builds a Config. yamlPath falls back to $CAFE_CONFIG; an empty path
// skips the YAML layer. A missing dotenvPath is ignored.
func Load(yamlPath, dotenvPath string) (Config, error) {
	cfg := Default()

	if yamlPath == "" {
		yamlPath = os.Getenv("CAFE_CONFIG")
	}
	if yamlPath != "" {
		data, err := os.ReadFile(yamlPath)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", yamlPath, err)
		}
	}

	if dotenvPath != "" {
		// godotenv never overrides variables that are already set.
		if err := godotenv.Load(dotenvPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", dotenvPath, err)
		}
	}

	var errs []error
	cfg.Addr = getEnv("CAFE_ADDR", cfg.Addr)
	cfg.AdminAddr = getEnv("CAFE_ADMIN_ADDR", cfg.AdminAddr)
	cfg.TeaCapacity = getEnvInt("CAFE_TEA_CAPACITY", cfg.TeaCapacity, &errs)
	cfg.CoffeeCapacity = getEnvInt("CAFE_COFFEE_CAPACITY", cfg.CoffeeCapacity, &errs)
	cfg.TeaBrew = getEnvDuration("CAFE_TEA_BREW", cfg.TeaBrew, &errs)
	cfg.CoffeeBrew = getEnvDuration("CAFE_COFFEE_BREW", cfg.CoffeeBrew, &errs)
	cfg.Tick = getEnvDuration("CAFE_TICK", cfg.Tick, &errs)
	cfg.MaxItems = getEnvInt("CAFE_MAX_ITEMS", cfg.MaxItems, &errs)
	cfg.AMQPURL = getEnv("CAFE_AMQP_URL", cfg.AMQPURL)
	cfg.AMQPExchange = getEnv("CAFE_AMQP_EXCHANGE", cfg.AMQPExchange)
	cfg.ReportSchedule = getEnv("CAFE_REPORT_SCHEDULE", cfg.ReportSchedule)
	cfg.LogLevel = getEnv("CAFE_LOG_LEVEL", cfg.LogLevel)
	if err := errors.Join(errs...); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports every out-of-range setting.
func (c Config) Validate() error {
	var errs []error
	if c.Addr == "" {
		errs = append(errs, errors.New("addr is required"))
	}
	if c.TeaCapacity < 1 || c.TeaCapacity > 128 {
		errs = append(errs, fmt.Errorf("tea_capacity %d out of range [1,128]", c.TeaCapacity))
	}
	if c.CoffeeCapacity < 1 || c.CoffeeCapacity > 128 {
		errs = append(errs, fmt.Errorf("coffee_capacity %d out of range [1,128]", c.CoffeeCapacity))
	}
	if c.TeaBrew <= 0 {
		errs = append(errs, fmt.Errorf("tea_brew must be positive, got %s", c.TeaBrew))
	}
	if c.CoffeeBrew <= 0 {
		errs = append(errs, fmt.Errorf("coffee_brew must be positive, got %s", c.CoffeeBrew))
	}
	if c.Tick <= 0 {
		errs = append(errs, fmt.Errorf("tick must be positive, got %s", c.Tick))
	}
	if c.MaxItems < 1 {
		errs = append(errs, fmt.Errorf("max_items must be at least 1, got %d", c.MaxItems))
	}
	if _, ok := logger.LookupLevel(c.LogLevel); !ok {
		errs = append(errs, fmt.Errorf("log_level %q is not one of debug, info, warn, error", c.LogLevel))
	}
	if c.ReportSchedule != "" {
		if _, err := ScheduleParser.Parse(c.ReportSchedule); err != nil {
			errs = append(errs, fmt.Errorf("report_schedule %q: %w", c.ReportSchedule, err))
		}
	}
	if c.AMQPURL != "" && c.AMQPExchange == "" {
		errs = append(errs, errors.New("amqp_exchange is required when amqp_url is set"))
	}
	return errors.Join(errs...)
}

func getEnv(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int, errs *[]error) int {
	v := getEnv(key, "")
	if v == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", key, err))
		return defaultValue
	}
	return n
}

func getEnvDuration(key string, defaultValue time.Duration, errs *[]error) time.Duration {
	v := getEnv(key, "")
	if v == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", key, err))
		return defaultValue
	}
	return d
}
