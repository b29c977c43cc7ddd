package core

import (
	"net/mail"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func TestLoadConfig(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		conf := loadConfig(viper.New(), "")
		assert.Equal(t, "DEV", conf.Env)
		assert.False(t, conf.TestMode)
		assert.Equal(t, APIConfig{BaseURL: "http://localhost:5000/api", Timeout: 10 * time.Second, Retries: 2}, conf.API)
		assert.Equal(t, "sequential", conf.Player.UnlockPolicy)
		assert.Equal(t, mail.Address{Name: "Masomo", Address: "no-reply@masomo.cd"}, conf.Email.DefaultFromEmail)
		assert.Equal(t, 5*time.Second, conf.Server.ShutdownTimeout)
	})

	t.Run("environment overrides", func(t *testing.T) {
		t.Setenv("MASOMO_API_BASEURL", "https://lms.test/api/")
		t.Setenv("MASOMO_API_TIMEOUT", "3s")
		t.Setenv("MASOMO_PLAYER_UNLOCKPOLICY", " Module ")
		t.Setenv("MASOMO_SERVER_SEED", "false")

		conf := loadConfig(viper.New(), "test")
		assert.Equal(t, "TEST", conf.Env)
		assert.True(t, conf.TestMode)
		assert.Equal(t, "https://lms.test/api", conf.API.BaseURL)
		assert.Equal(t, 3*time.Second, conf.API.Timeout)
		assert.Equal(t, "module", conf.Player.UnlockPolicy)
		assert.False(t, conf.Server.Seed)
	})
}

func TestCleanString(t *testing.T) {
	assert.Equal(t, "Go", CleanString("  Go\n"))
	assert.Equal(t, "go", CleanString(" GO ", true))
}
