package config_test

import (
	"testing"
	"time"

	"github.com/shivig4545-12/Shivangi-Gupta-POS-Project/internal/config"
	"github.com/shivig4545-12/Shivangi-Gupta-POS-Project/internal/pricing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 8000, cfg.Port)
	assert.Equal(t, config.SequencePostgres, cfg.SequenceBackend)
	assert.Equal(t, 30*time.Second, cfg.BreakerOpenTimeout)

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, "Asia/Dubai", loc.String())

	vat, err := cfg.VAT()
	require.NoError(t, err)
	assert.Equal(t, "5", vat.String())

	policy, err := cfg.PricingPolicy()
	require.NoError(t, err)
	assert.Equal(t, pricing.BaseNet, policy.DiscountBase)
	assert.Equal(t, pricing.FlatClamp, policy.FlatDiscount)
	assert.Equal(t, "5", policy.RoundingLimit.String())

	cb := cfg.Breaker()
	assert.Equal(t, 5, cb.FailureThreshold)
	assert.Equal(t, 2, cb.SuccessThreshold)
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("SEQUENCE_BACKEND", "redis")
	t.Setenv("DISCOUNT_BASE", "gross")
	t.Setenv("FLAT_DISCOUNT_POLICY", "reject")
	t.Setenv("TIMEZONE", "UTC")
	t.Setenv("BREAKER_OPEN_TIMEOUT", "5s")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, config.SequenceRedis, cfg.SequenceBackend)
	assert.Equal(t, 5*time.Second, cfg.BreakerOpenTimeout)

	policy, err := cfg.PricingPolicy()
	require.NoError(t, err)
	assert.Equal(t, pricing.BaseGross, policy.DiscountBase)
	assert.Equal(t, pricing.FlatReject, policy.FlatDiscount)
}

func TestLoad_RejectsBadValues(t *testing.T) {
	cases := map[string]string{
		"SEQUENCE_BACKEND":          "memcached",
		"TIMEZONE":                  "Mars/Olympus",
		"DEFAULT_VAT_PERCENT":       "120",
		"DISCOUNT_BASE":             "tax",
		"FLAT_DISCOUNT_POLICY":      "ignore",
		"ROUNDING_LIMIT":            "0",
		"BREAKER_FAILURE_THRESHOLD": "0",
	}
	for key, value := range cases {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, value)
			_, err := config.Load()
			assert.Error(t, err)
		})
	}
}
