// Command client is a headless driver for internal/client.Engine: it
// performs the join handshake, dials the UDP replication socket, binds
// its session, and ticks the reconciliation engine at config.SimTickRate
// until interrupted, periodically logging the engine's debug status
// (server frame, dropped packets, pending full-update request).
// It stands in for a rendering layer, giving the engine a real
// transport to reconcile against without any rendering, input devices,
// or asset loading.
package main

import (
	"math"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/acherenovich/snake-app/internal/client"
	"github.com/acherenovich/snake-app/internal/config"
	"github.com/acherenovich/snake-app/internal/proto"
	"github.com/acherenovich/snake-app/internal/transport"
)

func main() {
	cfg := config.DefaultClient()
	var name string

	root := &cobra.Command{
		Use:   "snake-client",
		Short: "Headless driver exercising the client reconciliation engine",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cfg, name)
		},
	}
	root.Flags().StringVar(&cfg.ServerJoinAddr, "join-addr", cfg.ServerJoinAddr, "WebSocket join handshake URL")
	root.Flags().StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level (debug, info, warn, error)")
	root.Flags().StringVar(&name, "name", "HeadlessBot", "display name to join as")

	if err := root.Execute(); err != nil {
		logrus.WithError(err).Fatal("client exited with error")
	}
}

func run(cfg config.Client, name string) error {
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	logrus.SetLevel(level)
	log := logrus.WithField("component", "main")

	resp, err := transport.DialJoin(cfg.ServerJoinAddr, name)
	if err != nil {
		return err
	}
	log.WithField("entity_id", resp.PlayerEntityID).WithField("udp_addr", resp.UDPAddr).Info("joined")

	// Create needs a Sender, and Dial needs the engine's OnMessage — tie
	// the knot with a forwarding closure so each can be built in the
	// order its constructor actually requires.
	var engine *client.Engine
	udp, err := transport.Dial(resp.UDPAddr, func(datagram []byte) { engine.OnMessage(datagram) })
	if err != nil {
		return err
	}
	defer udp.Close()

	engine = client.Create(udp, 0)

	if err := udp.BindSession(resp.PlayerEntityID); err != nil {
		return err
	}

	engine.OnConnected()
	engine.ForceFullUpdateRequest()

	stop := make(chan struct{})
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		close(stop)
	}()

	ticker := time.NewTicker(config.SimTickPeriod)
	defer ticker.Stop()
	logTicker := time.NewTicker(2 * time.Second)
	defer logTicker.Stop()

	for {
		select {
		case <-stop:
			engine.OnDisconnected()
			return nil
		case <-ticker.C:
			if player, ok := engine.GetPlayerSnake(); ok {
				head := player.Head()
				angle := rand.Float64() * 2 * math.Pi
				dest := proto.Point{
					X: head.X + float32(math.Cos(angle))*200,
					Y: head.Y + float32(math.Sin(angle))*200,
				}
				engine.SetPlayerDestination(dest)
			}
			engine.ProcessTick()
		case <-logTicker.C:
			info := engine.GetDebugInfo()
			log.WithField("server_frame", info.LastServerSeq).
				WithField("bad_packets_dropped", info.BadPacketsDropped).
				WithField("pending_full_request", info.PendingFullRequest).
				Info("engine status")
		}
	}
}
