package app

import (
	"fmt"
	"os"
	"strconv"

	"jovenva-attendance/internal/jobs"
	"jovenva-attendance/internal/shared/connection"
	"jovenva-attendance/internal/shift"
)

const (
	defaultPort       = "3000"
	connectMaxRetries = 5
)

type Config struct {
	Port        string
	DB          connection.DBConfig
	RedisAddr   string
	KafkaBroker string
	JWTSecret   string

	Timezone           string
	Policy             shift.Policy
	MissedCheckoutCron string
}

// LoadConfig reads the process environment. Call godotenv.Load first to
// pick up a .env file.
func LoadConfig() (Config, error) {
	return ConfigFromEnv(os.Getenv)
}

func ConfigFromEnv(getenv func(string) string) (Config, error) {
	cfg := Config{
		Port: getenv("PORT"),
		DB: connection.DBConfig{
			Host:     getenv("DB_HOST"),
			User:     getenv("DB_USER"),
			Password: getenv("DB_PASSWORD"),
			Name:     getenv("DB_NAME"),
			Port:     getenv("DB_PORT"),
			SSLMode:  getenv("DB_SSLMODE"),
		},
		RedisAddr:          getenv("REDIS_ADDR"),
		KafkaBroker:        getenv("KAFKA_BROKER"),
		JWTSecret:          getenv("JWT_SECRET"),
		Timezone:           getenv("APP_TIMEZONE"),
		MissedCheckoutCron: getenv("MISSED_CHECKOUT_CRON"),
	}
	if cfg.Port == "" {
		cfg.Port = defaultPort
	}
	if cfg.Timezone == "" {
		cfg.Timezone = shift.DefaultTimezone
	}
	if cfg.MissedCheckoutCron == "" {
		cfg.MissedCheckoutCron = jobs.DefaultMissedCheckoutSpec
	}

	var err error
	if cfg.Policy.FoldEarlyMorning, err = parseBool(getenv, "SHIFT_FOLD_EARLY_MORNING"); err != nil {
		return Config{}, err
	}
	if cfg.Policy.WeekendMorningSessions, err = parseBool(getenv, "SHIFT_WEEKEND_MORNING_SESSIONS"); err != nil {
		return Config{}, err
	}

	if _, err := shift.LoadLocation(cfg.Timezone); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Calendar builds the shift calendar for the configured timezone and policy.
func (c Config) Calendar() (*shift.Calendar, error) {
	loc, err := shift.LoadLocation(c.Timezone)
	if err != nil {
		return nil, err
	}
	return shift.NewCalendar(loc, c.Policy), nil
}

func parseBool(getenv func(string) string, key string) (bool, error) {
	v := getenv(key)
	if v == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s: invalid boolean %q", key, v)
	}
	return b, nil
}
