package handshake

import (
	"context"
	"crypto/ed25519"
	"net"
	"path/filepath"
	"testing"
	"time"

	"github.com/zfogg/ascii-chat-sub008/internal/identity"
	"github.com/zfogg/ascii-chat-sub008/internal/knownhosts"
)

// runResult carries one side's outcome back over a channel, mirroring
// the net.Pipe()+goroutine+channel pattern used for the devp2p handshake
// tests this package is grounded on.
type runResult struct {
	res *Result
	err error
}

func TestHandshake_HappyPathNoVerification(t *testing.T) {
	clientConn, serverConn := net.Pipe()
	defer clientConn.Close()
	defer serverConn.Close()

	clientCh := make(chan runResult, 1)
	serverCh := make(chan runResult, 1)

	go func() {
		res, err := RunClient(context.Background(), clientConn, Config{ClientID: 42})
		clientCh <- runResult{res, err}
	}()
	go func() {
		res, err := RunServer(context.Background(), serverConn, Config{ClientID: 42})
		serverCh <- runResult{res, err}
	}()

	var clientResult, serverResult runResult
	select {
	case clientResult = <-clientCh:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for client result")
	}
	select {
	case serverResult = <-serverCh:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for server result")
	}

	if clientResult.err != nil {
		t.Fatalf("client handshake failed: %v", clientResult.err)
	}
	if serverResult.err != nil {
		t.Fatalf("server handshake failed: %v", serverResult.err)
	}

	if len(clientResult.res.SendKey) != 32 || len(clientResult.res.RecvKey) != 32 {
		t.Fatalf("client keys wrong size: send=%d recv=%d", len(clientResult.res.SendKey), len(clientResult.res.RecvKey))
	}
	// Each side's send key must be the other's recv key.
	if string(clientResult.res.SendKey) != string(serverResult.res.RecvKey) {
		t.Error("client send key does not match server recv key")
	}
	if string(serverResult.res.SendKey) != string(clientResult.res.RecvKey) {
		t.Error("server send key does not match client recv key")
	}
	if clientResult.res.Params.SelectedKex != KexX25519 {
		t.Errorf("unexpected selected kex algorithm %v", clientResult.res.Params.SelectedKex)
	}
	if clientResult.res.Params.VerificationEnabled {
		t.Error("expected verification disabled")
	}
}

func TestHandshake_AuthFailureUnauthorizedClient(t *testing.T) {
	clientConn, serverConn := net.Pipe()
	defer clientConn.Close()
	defer serverConn.Close()

	clientIdentity, err := identity.GenerateInMemory()
	if err != nil {
		t.Fatalf("GenerateInMemory: %v", err)
	}
	serverIdentity, err := identity.GenerateInMemory()
	if err != nil {
		t.Fatalf("GenerateInMemory: %v", err)
	}
	// A different key is authorized on the server, so the client's real
	// key must be rejected.
	otherIdentity, err := identity.GenerateInMemory()
	if err != nil {
		t.Fatalf("GenerateInMemory: %v", err)
	}

	knownHostsPath := filepath.Join(t.TempDir(), "known_hosts")
	store, err := knownhosts.Load(knownHostsPath)
	if err != nil {
		t.Fatalf("knownhosts.Load: %v", err)
	}

	clientCh := make(chan runResult, 1)
	serverCh := make(chan runResult, 1)

	go func() {
		res, err := RunClient(context.Background(), clientConn, Config{
			ClientID:            7,
			VerificationEnabled: true,
			Identity:            clientIdentity,
			KnownHosts:          store,
			PeerHost:            "test-server",
			PeerPort:            9999,
		})
		clientCh <- runResult{res, err}
	}()
	go func() {
		res, err := RunServer(context.Background(), serverConn, Config{
			ClientID:            7,
			VerificationEnabled: true,
			Identity:            serverIdentity,
			AuthorizedKeys:      []ed25519.PublicKey{otherIdentity.PublicKey()},
		})
		serverCh <- runResult{res, err}
	}()

	var clientResult, serverResult runResult
	select {
	case serverResult = <-serverCh:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for server result")
	}
	select {
	case clientResult = <-clientCh:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for client result")
	}

	if serverResult.err == nil {
		t.Fatal("expected server to reject the unauthorized client")
	}
	herr, ok := serverResult.err.(*Error)
	if !ok {
		t.Fatalf("got %T, want *handshake.Error", serverResult.err)
	}
	if herr.Reason != ReasonAuthRejected {
		t.Errorf("got reason %v, want AuthRejected", herr.Reason)
	}
	if clientResult.err == nil {
		t.Fatal("expected client to observe a failure once the server closed the handshake")
	}
}
