package identity

import "testing"

func TestInMemory_SignVerify(t *testing.T) {
	id, err := GenerateInMemory()
	if err != nil {
		t.Fatalf("GenerateInMemory: %v", err)
	}
	msg := []byte("transcript||nonce")
	sig, err := id.Sign(msg)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	if !Verify(id.PublicKey(), msg, sig) {
		t.Error("expected signature to verify")
	}
}

func TestInMemory_WrongMessageFailsVerify(t *testing.T) {
	id, err := GenerateInMemory()
	if err != nil {
		t.Fatalf("GenerateInMemory: %v", err)
	}
	sig, err := id.Sign([]byte("original"))
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	if Verify(id.PublicKey(), []byte("tampered"), sig) {
		t.Error("expected verification failure for tampered message")
	}
}

func TestInMemory_Zero(t *testing.T) {
	id, err := GenerateInMemory()
	if err != nil {
		t.Fatalf("GenerateInMemory: %v", err)
	}
	id.Zero()
	allZero := true
	for _, b := range id.priv {
		if b != 0 {
			allZero = false
			break
		}
	}
	if !allZero {
		t.Error("expected private key to be zeroed")
	}
}
