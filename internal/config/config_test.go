package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("MONGO_URI", "mongodb://localhost:27017")

	cfg, err := Load("all")
	require.NoError(t, err)

	assert.Equal(t, "all", cfg.RunMode)
	assert.Equal(t, 10*time.Minute, cfg.NewFilesInterval)
	assert.Equal(t, time.Minute, cfg.OfferSweepInterval)
	assert.Equal(t, 72, cfg.CorrectionExpiryHours)
	assert.Equal(t, 48*time.Hour, cfg.SupplierResponseExpiry())
	assert.Equal(t, 60, cfg.CompletionPercentage)
	assert.False(t, cfg.MockServices)
}

func TestLoad_MissingMongoURI(t *testing.T) {
	t.Setenv("MONGO_URI", "")

	_, err := Load("api")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MONGO_URI")
}

func TestLoad_InvalidValues(t *testing.T) {
	cases := map[string]string{
		"COMPLETION_GRACE":      "soon",
		"COMPLETION_PERCENTAGE": "150",
		"REDIS_DB":              "one",
		"OFFER_SWEEP_INTERVAL":  "-1m",
	}
	for key, value := range cases {
		t.Run(key, func(t *testing.T) {
			t.Setenv("MONGO_URI", "mongodb://localhost:27017")
			t.Setenv(key, value)

			_, err := Load("bg")
			require.Error(t, err)
			assert.Contains(t, err.Error(), key)
		})
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("MONGO_URI", "mongodb://localhost:27017")
	t.Setenv("MOCK_SERVICES", "TRUE")
	t.Setenv("MISSING_INFO_REMINDER_AFTER", "45m")
	t.Setenv("CORRECTION_EXPIRY_HOURS", "24")

	cfg, err := Load("bg")
	require.NoError(t, err)
	assert.True(t, cfg.MockServices)
	assert.Equal(t, 45*time.Minute, cfg.MissingInfoReminderAfter)
	assert.Equal(t, 24*time.Hour, cfg.CorrectionExpiry())
}
