package palette

import "testing"

func TestParse_ASCII(t *testing.T) {
	p, err := Parse([]byte(" .:-=+*#%@"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if p.Len() != 10 {
		t.Fatalf("Len: got %d, want 10", p.Len())
	}
	if !p.IsUniform1Byte() {
		t.Error("IsUniform1Byte: got false, want true")
	}
	if p.MaxByteLength() != 1 {
		t.Errorf("MaxByteLength: got %d, want 1", p.MaxByteLength())
	}
	c, err := p.CharAt(0)
	if err != nil {
		t.Fatalf("CharAt(0): %v", err)
	}
	if c.Bytes[0] != ' ' {
		t.Errorf("CharAt(0): got %q, want space", c.Bytes[0])
	}
}

func TestParse_MixedWidth(t *testing.T) {
	// space(1) alpha(2) spade(3) star-emoji(4)
	raw := " α♠🌟"
	p, err := Parse([]byte(raw))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if p.Len() != 4 {
		t.Fatalf("Len: got %d, want 4", p.Len())
	}
	wantLens := []int{1, 2, 3, 4}
	for i, want := range wantLens {
		c, err := p.CharAt(i)
		if err != nil {
			t.Fatalf("CharAt(%d): %v", i, err)
		}
		if c.Length != want {
			t.Errorf("CharAt(%d).Length: got %d, want %d", i, c.Length, want)
		}
	}
	if p.IsUniform1Byte() {
		t.Error("IsUniform1Byte: got true, want false")
	}
	if p.MaxByteLength() != 4 {
		t.Errorf("MaxByteLength: got %d, want 4", p.MaxByteLength())
	}
}

func TestParse_MalformedUTF8(t *testing.T) {
	_, err := Parse([]byte{0xff, 0xfe})
	if err == nil {
		t.Fatal("Parse: expected error for malformed utf-8, got nil")
	}
}

func TestParse_Empty(t *testing.T) {
	_, err := Parse(nil)
	if err == nil {
		t.Fatal("Parse: expected error for empty input, got nil")
	}
}

func TestFindAll_Duplicates(t *testing.T) {
	p, err := Parse([]byte("aabab"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	idx := p.FindAll([]byte("a"))
	if len(idx) != 3 {
		t.Fatalf("FindAll(a): got %v, want 3 matches", idx)
	}
	for i, want := range []int{0, 1, 3} {
		if idx[i] != want {
			t.Errorf("FindAll(a)[%d]: got %d, want %d", i, idx[i], want)
		}
	}
}

func TestCharAt_OutOfRange(t *testing.T) {
	p, _ := Parse([]byte("abc"))
	if _, err := p.CharAt(-1); err == nil {
		t.Error("CharAt(-1): expected error, got nil")
	}
	if _, err := p.CharAt(3); err == nil {
		t.Error("CharAt(3): expected error, got nil")
	}
}
