package main

import (
	"codekids"
	"codekids/internal/realtime"
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
)

type frameBridge interface {
	Subscribe() error
	Close()
}

func main() {
	_ = godotenv.Load()
	logger := codekids.NewLogger()
	cfg := realtime.LoadConfig()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	hub := realtime.NewHub(logger)
	go hub.Run(ctx)

	var bridge frameBridge
	var err error
	switch cfg.Broker {
	case realtime.BrokerMQTT:
		bridge, err = realtime.NewMQTTBridge(cfg.MQTTURL, cfg.MQTTClientID, cfg.TenantID, hub, logger)
	default:
		bridge, err = realtime.NewNATSBridge(cfg.NatsURL, cfg.TenantID, hub, logger)
	}
	if err != nil {
		logger.Fatal().Err(err).Str("broker", cfg.Broker).Msg("Frame bridge")
	}
	defer bridge.Close()

	if err := bridge.Subscribe(); err != nil {
		logger.Fatal().Err(err).Msg("Frame bridge subscribe")
	}

	upgrader := realtime.NewUpgrader(cfg.AllowedOrigins)
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		realtime.ServeWS(hub, upgrader, w, r)
	})
	server := &http.Server{Addr: cfg.RealtimePort, Handler: mux}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	logger.Info().Str("port", cfg.RealtimePort).Str("broker", cfg.Broker).Msg("Realtime service listening")
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal().Err(err).Msg("Realtime server")
	}
}
