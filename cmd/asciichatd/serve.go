package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/zfogg/ascii-chat-sub008/internal/alog"
	"github.com/zfogg/ascii-chat-sub008/internal/ametrics"
	"github.com/zfogg/ascii-chat-sub008/internal/config"
	"github.com/zfogg/ascii-chat-sub008/internal/handshake"
	"github.com/zfogg/ascii-chat-sub008/internal/identity"
	"github.com/zfogg/ascii-chat-sub008/internal/packet"
	"github.com/zfogg/ascii-chat-sub008/internal/session"
)

// serveCommand runs the server side of the secure session protocol
// (§4.7-§4.9): it accepts TCP connections, drives each one through the
// handshake, and answers the resulting session's Ping packets with Pong
// until the peer disconnects.
func serveCommand() *cli.Command {
	def := config.DefaultConfig()
	return &cli.Command{
		Name:  "serve",
		Usage: "accept connections and run the session protocol as the server",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "listen", Value: def.ListenAddr, Usage: "TCP listen address"},
			&cli.BoolFlag{Name: "verify", Usage: "require peer identity verification (spec §4.8 phase 4)"},
			&cli.StringFlag{Name: "identity", Usage: "path to an OpenSSH-format Ed25519 private key (required with --verify)"},
			&cli.StringFlag{Name: "authorized-keys", Usage: "path to an authorized_keys-style file of client public keys (required with --verify)"},
			&cli.StringFlag{Name: "log-level", Value: def.LogLevel, Usage: "debug, info, warn, error"},
			&cli.BoolFlag{Name: "metrics", Value: def.Metrics, Usage: "expose Prometheus metrics over HTTP"},
			&cli.StringFlag{Name: "metrics-addr", Value: def.MetricsAddr, Usage: "metrics HTTP listen address"},
		},
		Action: func(c *cli.Context) error {
			logger := newLogger(c.String("log-level")).Module("serve")

			cfg := handshake.Config{
				PhaseTimeout:        15 * time.Second,
				VerificationEnabled: c.Bool("verify"),
			}

			if c.Bool("verify") {
				idPath := c.String("identity")
				keysPath := c.String("authorized-keys")
				if idPath == "" || keysPath == "" {
					return fmt.Errorf("serve: --identity and --authorized-keys are required with --verify")
				}
				pemBytes, err := os.ReadFile(idPath)
				if err != nil {
					return fmt.Errorf("serve: read identity: %w", err)
				}
				ident, err := identity.ParseOpenSSHPrivateKey(pemBytes)
				if err != nil {
					return fmt.Errorf("serve: parse identity: %w", err)
				}
				keys, err := identity.LoadAuthorizedKeys(keysPath)
				if err != nil {
					return fmt.Errorf("serve: load authorized keys: %w", err)
				}
				cfg.Identity = ident
				cfg.AuthorizedKeys = keys
			}

			if c.Bool("metrics") {
				if err := startMetricsServer(c.String("metrics-addr"), logger); err != nil {
					return err
				}
			}

			ln, err := net.Listen("tcp", c.String("listen"))
			if err != nil {
				return fmt.Errorf("serve: listen: %w", err)
			}
			defer ln.Close()
			logger.Info("listening", "addr", ln.Addr().String(), "verify", cfg.VerificationEnabled)

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			go func() {
				sigCh := make(chan os.Signal, 1)
				signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
				sig := <-sigCh
				logger.Info("received signal, shutting down", "signal", sig.String())
				cancel()
				ln.Close()
			}()

			for {
				conn, err := ln.Accept()
				if err != nil {
					if ctx.Err() != nil {
						return nil
					}
					logger.Warn("accept failed", "error", err)
					continue
				}
				connCfg := cfg
				connCfg.ClientID = packet.NewClientID()
				go handleServerConn(ctx, conn, connCfg, logger)
			}
		},
	}
}

func handleServerConn(ctx context.Context, conn net.Conn, cfg handshake.Config, logger *alog.Logger) {
	defer conn.Close()
	peer := conn.RemoteAddr().String()

	result, err := handshake.RunServer(ctx, conn, cfg)
	if err != nil {
		logger.Warn("handshake failed", "peer", peer, "error", err)
		return
	}
	logger.Info("handshake complete", "peer", peer,
		"kex", result.Params.SelectedKex, "cipher", result.Params.SelectedCipher)

	sess, err := session.New(cfg.ClientID, result.SendKey, result.RecvKey, result.SendPrefix)
	if err != nil {
		logger.Error("session init failed", "peer", peer, "error", err)
		return
	}
	defer sess.Zero()

	serverPingPongLoop(ctx, conn, sess, cfg.ClientID, logger, peer)
}

// serverPingPongLoop answers every inbound encrypted Ping with an
// encrypted Pong, the responder half of the §4.9 keepalive, until the
// connection errors or ctx is cancelled.
func serverPingPongLoop(ctx context.Context, conn net.Conn, sess *session.Session, clientID uint32, logger *alog.Logger, peer string) {
	var seq uint32
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		p, err := packet.ReadPacket(conn, packet.DefaultMaxPayloadSize)
		if err != nil {
			logger.Info("connection closed", "peer", peer, "error", err)
			return
		}
		if p.Type != packet.TypeEncryptedData {
			continue
		}

		if _, err := sess.Open(packet.TypePing, p.Sequence, p.Payload); err != nil {
			logger.Error("decrypt failed, closing session", "peer", peer, "error", err)
			return
		}

		seq++
		sealed, err := sess.Seal(packet.TypePong, seq, nil)
		if err != nil {
			logger.Error("seal pong failed", "peer", peer, "error", err)
			return
		}
		if err := packet.WritePacket(conn, packet.Packet{
			Type:     packet.TypeEncryptedData,
			Sequence: seq,
			ClientID: clientID,
			Payload:  sealed,
		}, packet.DefaultMaxPayloadSize); err != nil {
			logger.Warn("write pong failed", "peer", peer, "error", err)
			return
		}
	}
}

// startMetricsServer exposes DefaultRegistry's counters over HTTP via
// the Prometheus exporter (internal/ametrics.PrometheusHandler),
// bridging the hand-rolled registry to
// github.com/prometheus/client_golang.
func startMetricsServer(addr string, logger *alog.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", ametrics.PrometheusHandler(ametrics.DefaultRegistry))
	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		logger.Info("metrics server listening", "addr", addr)
		_ = srv.ListenAndServe()
	}()
	return nil
}
