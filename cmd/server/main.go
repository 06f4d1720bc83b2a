// Command server runs the authoritative simulation: it binds the UDP
// replication socket, the WebSocket join handshake, and a Prometheus
// scrape endpoint, then ticks the world at config.SimTickRate until
// interrupted.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/acherenovich/snake-app/internal/config"
	"github.com/acherenovich/snake-app/internal/gameloop"
	"github.com/acherenovich/snake-app/internal/transport"
	"github.com/acherenovich/snake-app/internal/world"
)

func main() {
	cfg := config.DefaultServer()

	root := &cobra.Command{
		Use:   "snake-server",
		Short: "Runs the authoritative snake simulation server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cfg)
		},
	}
	root.Flags().StringVar(&cfg.ListenAddr, "listen", cfg.ListenAddr, "UDP replication listen address")
	root.Flags().StringVar(&cfg.JoinAddr, "join-addr", cfg.JoinAddr, "HTTP join-handshake listen address")
	root.Flags().StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level (debug, info, warn, error)")
	root.Flags().StringVar(&cfg.MetricsAddr, "metrics-addr", cfg.MetricsAddr, "Prometheus /metrics listen address")

	if err := root.Execute(); err != nil {
		logrus.WithError(err).Fatal("server exited with error")
	}
}

func run(cfg config.Server) error {
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	logrus.SetLevel(level)
	log := logrus.WithField("component", "main")

	w := world.NewWorld()
	peers := transport.NewPeerTable()

	listener, err := transport.Listen(cfg.ListenAddr, peers)
	if err != nil {
		return err
	}
	defer listener.Close()

	loop := gameloop.NewLoop(w, peers, listener)

	joinServer := transport.NewJoinServer(cfg.ListenAddr, peers, loop.AssignPlayer)
	mux := http.NewServeMux()
	mux.Handle("/join", joinServer)
	joinHTTP := &http.Server{Addr: cfg.JoinAddr, Handler: mux}

	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", promhttp.Handler())
	metricsHTTP := &http.Server{Addr: cfg.MetricsAddr, Handler: metricsMux}

	go func() {
		if err := listener.Serve(loop.OnDatagram); err != nil {
			log.WithError(err).Warn("udp listener stopped")
		}
	}()

	stop := make(chan struct{})
	go loop.Run(stop)

	go func() {
		log.WithField("addr", cfg.JoinAddr).Info("join server listening")
		if err := joinHTTP.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("join server failed")
		}
	}()

	go func() {
		log.WithField("addr", cfg.MetricsAddr).Info("metrics server listening")
		if err := metricsHTTP.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Warn("metrics server failed")
		}
	}()

	log.WithField("addr", cfg.ListenAddr).WithField("rate_hz", config.SimTickRate).Info("game server started")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Info("shutting down")
	close(stop)
	ctx, cancel := context.WithTimeout(context.Background(), config.SimTickPeriod*10)
	defer cancel()
	_ = joinHTTP.Shutdown(ctx)
	_ = metricsHTTP.Shutdown(ctx)
	return nil
}
