package identity

import (
	"crypto/ed25519"
	"fmt"

	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/agent"
)

// Agent backs an Identity with a key held by an external ssh-agent
// process: the private key never enters this process's memory, and
// every Sign call is an RPC to the agent (spec §4.8).
type Agent struct {
	client agent.ExtendedAgent
	pub    ssh.PublicKey
	rawPub ed25519.PublicKey
}

// NewAgentIdentity looks up an Ed25519 key matching rawPub among the
// keys client currently holds. Callers obtain client via
// agent.NewClient(conn) over the SSH_AUTH_SOCK connection.
func NewAgentIdentity(client agent.ExtendedAgent, rawPub ed25519.PublicKey) (*Agent, error) {
	sshPub, err := ssh.NewPublicKey(rawPub)
	if err != nil {
		return nil, fmt.Errorf("identity: wrap agent public key: %w", err)
	}

	keys, err := client.List()
	if err != nil {
		return nil, fmt.Errorf("identity: list agent keys: %w", err)
	}
	wire := sshPub.Marshal()
	found := false
	for _, k := range keys {
		if k.Format == sshPub.Type() && string(k.Blob) == string(wire) {
			found = true
			break
		}
	}
	if !found {
		return nil, fmt.Errorf("identity: key not present in agent")
	}

	return &Agent{client: client, pub: sshPub, rawPub: rawPub}, nil
}

// Sign asks the agent to produce a signature over message. For Ed25519
// keys the agent's reply blob is the raw 64-byte signature with no
// additional ASN.1 wrapping, so it is directly verifiable with
// ed25519.Verify.
func (a *Agent) Sign(message []byte) ([]byte, error) {
	sig, err := a.client.Sign(a.pub, message)
	if err != nil {
		return nil, fmt.Errorf("identity: agent sign: %w", err)
	}
	if sig.Format != ssh.KeyAlgoED25519 {
		return nil, fmt.Errorf("identity: agent returned unexpected signature format %q", sig.Format)
	}
	return sig.Blob, nil
}

func (a *Agent) PublicKey() ed25519.PublicKey {
	return a.rawPub
}
