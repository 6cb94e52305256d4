package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/zfogg/ascii-chat-sub008/internal/alog"
	"github.com/zfogg/ascii-chat-sub008/internal/config"
	"github.com/zfogg/ascii-chat-sub008/internal/handshake"
	"github.com/zfogg/ascii-chat-sub008/internal/identity"
	"github.com/zfogg/ascii-chat-sub008/internal/knownhosts"
	"github.com/zfogg/ascii-chat-sub008/internal/packet"
	"github.com/zfogg/ascii-chat-sub008/internal/session"
)

// connectCommand dials a server, drives the client side of the
// handshake, and then sends periodic encrypted Ping packets, logging
// each Pong round-trip until interrupted.
func connectCommand() *cli.Command {
	def := config.DefaultConfig()
	return &cli.Command{
		Name:  "connect",
		Usage: "dial a server and run the session protocol as the client",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "addr", Required: true, Usage: "host:port to dial"},
			&cli.BoolFlag{Name: "verify", Usage: "verify the server's identity key (spec §4.8 phase 4)"},
			&cli.StringFlag{Name: "identity", Usage: "path to an OpenSSH-format Ed25519 private key (required with --verify)"},
			&cli.StringFlag{Name: "known-hosts", Usage: "path to the known_hosts TOFU store (default: <datadir>/known_hosts)"},
			&cli.BoolFlag{Name: "insecure-skip-host-check", Usage: "skip TOFU host-key pinning (spec §6 escape hatch)"},
			&cli.StringFlag{Name: "log-level", Value: def.LogLevel, Usage: "debug, info, warn, error"},
			&cli.DurationFlag{Name: "ping-interval", Value: 2 * time.Second, Usage: "interval between Ping packets"},
		},
		Action: func(c *cli.Context) error {
			logger := newLogger(c.String("log-level")).Module("connect")

			host, portStr, err := net.SplitHostPort(c.String("addr"))
			if err != nil {
				return fmt.Errorf("connect: invalid --addr: %w", err)
			}
			var port int
			if _, err := fmt.Sscanf(portStr, "%d", &port); err != nil {
				return fmt.Errorf("connect: invalid port in --addr: %w", err)
			}

			cfg := handshake.Config{
				ClientID:              packet.NewClientID(),
				PhaseTimeout:          15 * time.Second,
				VerificationEnabled:   c.Bool("verify"),
				PeerHost:              host,
				PeerPort:              port,
				InsecureSkipHostCheck: c.Bool("insecure-skip-host-check") || config.InsecureHostCheckDisabled(),
			}

			if c.Bool("verify") {
				idPath := c.String("identity")
				if idPath == "" {
					return fmt.Errorf("connect: --identity is required with --verify")
				}
				pemBytes, err := os.ReadFile(idPath)
				if err != nil {
					return fmt.Errorf("connect: read identity: %w", err)
				}
				ident, err := identity.ParseOpenSSHPrivateKey(pemBytes)
				if err != nil {
					return fmt.Errorf("connect: parse identity: %w", err)
				}
				cfg.Identity = ident

				if !cfg.InsecureSkipHostCheck {
					khPath := c.String("known-hosts")
					if khPath == "" {
						d := config.DefaultConfig()
						khPath = d.KnownHostsPath()
					}
					store, err := knownhosts.Load(khPath)
					if err != nil {
						return fmt.Errorf("connect: load known_hosts: %w", err)
					}
					cfg.KnownHosts = store
				}
			}

			conn, err := net.Dial("tcp", c.String("addr"))
			if err != nil {
				return fmt.Errorf("connect: dial: %w", err)
			}
			defer conn.Close()

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			result, err := handshake.RunClient(ctx, conn, cfg)
			if err != nil {
				return fmt.Errorf("connect: handshake: %w", err)
			}
			logger.Info("handshake complete", "peer", c.String("addr"),
				"kex", result.Params.SelectedKex, "cipher", result.Params.SelectedCipher)

			sess, err := session.New(cfg.ClientID, result.SendKey, result.RecvKey, result.SendPrefix)
			if err != nil {
				return fmt.Errorf("connect: session init: %w", err)
			}
			defer sess.Zero()

			return clientPingLoop(ctx, conn, sess, cfg.ClientID, logger, c.Duration("ping-interval"))
		},
	}
}

// clientPingLoop sends an encrypted Ping every interval and logs each
// matching Pong, the initiator half of the §4.9 keepalive.
func clientPingLoop(ctx context.Context, conn net.Conn, sess *session.Session, clientID uint32, logger *alog.Logger, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var seq uint32
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}

		seq++
		sealed, err := sess.Seal(packet.TypePing, seq, nil)
		if err != nil {
			return fmt.Errorf("connect: seal ping: %w", err)
		}
		if err := packet.WritePacket(conn, packet.Packet{
			Type:     packet.TypeEncryptedData,
			Sequence: seq,
			ClientID: clientID,
			Payload:  sealed,
		}, packet.DefaultMaxPayloadSize); err != nil {
			return fmt.Errorf("connect: write ping: %w", err)
		}

		p, err := packet.ReadPacket(conn, packet.DefaultMaxPayloadSize)
		if err != nil {
			return fmt.Errorf("connect: read pong: %w", err)
		}
		if p.Type != packet.TypeEncryptedData {
			logger.Warn("unexpected packet type while waiting for pong", "type", p.Type)
			continue
		}
		if _, err := sess.Open(packet.TypePong, p.Sequence, p.Payload); err != nil {
			return fmt.Errorf("connect: decrypt pong: %w", err)
		}
		logger.Info("pong received", "seq", seq)
	}
}
