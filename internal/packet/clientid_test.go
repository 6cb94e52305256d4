package packet

import "testing"

func TestNewClientID_Distinct(t *testing.T) {
	a := NewClientID()
	b := NewClientID()
	if a == b {
		t.Fatalf("two consecutive client IDs collided: %d", a)
	}
}
