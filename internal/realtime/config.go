package realtime

import (
	"os"
	"strings"
)

const (
	BrokerNats = "nats"
	BrokerMQTT = "mqtt"
)

type Config struct {
	Broker         string
	NatsURL        string
	MQTTURL        string
	MQTTClientID   string
	TenantID       string
	RealtimePort   string
	AllowedOrigins []string
}

func LoadConfig() Config {
	return Config{
		Broker:         getEnv("FRAME_BROKER", BrokerNats),
		NatsURL:        getEnv("NATS_URL", "nats://localhost:4222"),
		MQTTURL:        getEnv("MQTT_URL", "tcp://localhost:1883"),
		MQTTClientID:   getEnv("MQTT_REALTIME_CLIENT_ID", "codekids-realtime"),
		TenantID:       getEnv("TENANT_ID", "default"),
		RealtimePort:   getEnv("REALTIME_PORT", ":8081"),
		AllowedOrigins: splitList(os.Getenv("WS_ALLOWED_ORIGINS")),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
