package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"time"

	"contest-reminder/internal/infra/channel"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// channelSet groups the delivery senders for health reporting.
type channelSet struct {
	browser *channel.WebPushSender
	native  *channel.FCMSender
	chat    *channel.TelegramSender
}

// ChannelHealthResponse reports which delivery channels are configured.
type ChannelHealthResponse struct {
	Healthy  bool                  `json:"healthy"`
	Channels []ChannelHealthStatus `json:"channels"`
}

// ChannelHealthStatus is the status of a single delivery channel.
type ChannelHealthStatus struct {
	Name    string `json:"name"`
	Enabled bool   `json:"enabled"`
}

// startMetricsServer starts the Prometheus metrics HTTP server.
// It runs in a separate goroutine and shuts down when ctx is cancelled.
//
// Endpoints:
//   - GET /metrics - Prometheus exposition
//   - GET /health - liveness probe, always 200 OK
//   - GET /health/channels - delivery channel configuration status
//
// The port is read from METRICS_PORT (default: 9090).
func startMetricsServer(ctx context.Context, logger *slog.Logger, senders channelSet) *http.Server {
	port := getMetricsPort()

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "healthy"})
	})
	mux.HandleFunc("/health/channels", channelHealthHandler(senders))

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("metrics server starting", slog.Int("port", port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("metrics server error", slog.Any("error", err))
		}
	}()

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("metrics server shutdown error", slog.Any("error", err))
		} else {
			logger.Info("metrics server stopped")
		}
	}()

	return server
}

func getMetricsPort() int {
	portStr := os.Getenv("METRICS_PORT")
	if portStr == "" {
		return 9090
	}

	port, err := strconv.Atoi(portStr)
	if err != nil || port <= 0 || port > 65535 {
		return 9090
	}

	return port
}

// channelHealthHandler reports the configuration state of each delivery
// channel. The worker is healthy as long as at least one channel can send;
// a fully unconfigured set returns 503 so operators notice a worker that
// can never deliver anything.
func channelHealthHandler(senders channelSet) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		channels := []ChannelHealthStatus{
			{Name: senders.browser.Name(), Enabled: senders.browser.Enabled()},
			{Name: senders.native.Name(), Enabled: senders.native.Enabled()},
			{Name: senders.chat.Name(), Enabled: senders.chat.Enabled()},
		}

		healthy := false
		for _, ch := range channels {
			if ch.Enabled {
				healthy = true
				break
			}
		}

		statusCode := http.StatusOK
		if !healthy {
			statusCode = http.StatusServiceUnavailable
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(statusCode)
		_ = json.NewEncoder(w).Encode(ChannelHealthResponse{
			Healthy:  healthy,
			Channels: channels,
		})
	}
}
