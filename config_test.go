package codekids

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	for key, value := range map[string]string{
		"RUN_MODE":    "test",
		"API_PORT":    ":0",
		"DB_HOSTNAME": "localhost",
		"DB_PORT":     "5432",
		"DB_USERNAME": "u",
		"DB_PASSWORD": "p",
		"DB_NAME":     "codekids",
		"DB_SSL_MODE": "disable",
	} {
		t.Setenv(key, value)
	}
}

func TestReadAppConfig_TenantIsBrokerNeutral(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("FRAME_BROKER", FrameBrokerMQTT)
	t.Setenv("TENANT_ID", "school-7")
	t.Setenv("NATS_URL", "")

	cfg := readAppConfig()
	assert.Equal(t, FrameBrokerMQTT, cfg.FrameBroker)
	assert.Equal(t, "school-7", cfg.TenantID)
}

func TestReadAppConfig_Defaults(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("TENANT_ID", "")
	t.Setenv("RUNTIME_STAGE_IDLE_TTL_SECONDS", "")

	cfg := readAppConfig()
	assert.Equal(t, "default", cfg.TenantID)
	assert.Equal(t, FrameBrokerNats, cfg.FrameBroker)
	assert.Equal(t, 60, cfg.RuntimeConfig.StageIdleTTLSeconds)
	assert.Equal(t, 1000, cfg.RuntimeConfig.QuantumMs)
}
