package app_test

import (
	"errors"
	"testing"
	_ "time/tzdata"

	"jovenva-attendance/internal/app"
	shifterrors "jovenva-attendance/internal/shift/errors"

	"github.com/stretchr/testify/assert"
)

func env(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestConfigFromEnv(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		cfg, err := app.ConfigFromEnv(env(nil))

		assert.NoError(t, err)
		assert.Equal(t, "3000", cfg.Port)
		assert.Equal(t, "Asia/Manila", cfg.Timezone)
		assert.Equal(t, "5 12 * * *", cfg.MissedCheckoutCron)
		assert.False(t, cfg.Policy.FoldEarlyMorning)
		assert.False(t, cfg.Policy.WeekendMorningSessions)

		cal, err := cfg.Calendar()
		assert.NoError(t, err)
		assert.Equal(t, "Asia/Manila", cal.Location().String())
	})

	t.Run("overrides", func(t *testing.T) {
		cfg, err := app.ConfigFromEnv(env(map[string]string{
			"PORT":                           "8080",
			"DB_HOST":                        "db",
			"APP_TIMEZONE":                   "Asia/Tokyo",
			"SHIFT_FOLD_EARLY_MORNING":       "true",
			"SHIFT_WEEKEND_MORNING_SESSIONS": "1",
			"MISSED_CHECKOUT_CRON":           "0 13 * * *",
		}))

		assert.NoError(t, err)
		assert.Equal(t, "8080", cfg.Port)
		assert.Equal(t, "db", cfg.DB.Host)
		assert.Equal(t, "Asia/Tokyo", cfg.Timezone)
		assert.True(t, cfg.Policy.FoldEarlyMorning)
		assert.True(t, cfg.Policy.WeekendMorningSessions)
		assert.Equal(t, "0 13 * * *", cfg.MissedCheckoutCron)
	})

	t.Run("bad boolean aborts", func(t *testing.T) {
		_, err := app.ConfigFromEnv(env(map[string]string{"SHIFT_FOLD_EARLY_MORNING": "sometimes"}))

		assert.ErrorContains(t, err, "SHIFT_FOLD_EARLY_MORNING")
	})

	t.Run("unknown timezone aborts", func(t *testing.T) {
		_, err := app.ConfigFromEnv(env(map[string]string{"APP_TIMEZONE": "Mars/Olympus"}))

		assert.True(t, errors.Is(err, shifterrors.ErrTimezoneUnavailable))
	})
}
