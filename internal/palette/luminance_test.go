package palette

import "testing"

func TestBuildLuminanceTable_SingleChar(t *testing.T) {
	tbl := BuildLuminanceTable(1)
	for i, v := range tbl {
		if v != 0 {
			t.Fatalf("tbl[%d]: got %d, want 0", i, v)
		}
	}
}

func TestBuildLuminanceTable_Monotonic(t *testing.T) {
	tbl := BuildLuminanceTable(10)
	if tbl[0] != 0 {
		t.Errorf("tbl[0]: got %d, want 0", tbl[0])
	}
	if tbl[63] != 9 {
		t.Errorf("tbl[63]: got %d, want 9", tbl[63])
	}
	for i := 1; i < 64; i++ {
		if tbl[i] < tbl[i-1] {
			t.Fatalf("table not monotonic at %d: %d < %d", i, tbl[i], tbl[i-1])
		}
	}
}

func TestLuminance_Black(t *testing.T) {
	if got := Luminance(0, 0, 0); got != 0 {
		t.Errorf("Luminance(0,0,0): got %d, want 0", got)
	}
}

func TestLuminance_White(t *testing.T) {
	got := Luminance(255, 255, 255)
	// (77+150+29)*255 + 128 = 256*255 + 128 = 65408 -> >>8 = 255
	if got != 255 {
		t.Errorf("Luminance(255,255,255): got %d, want 255", got)
	}
}

func TestQuantizeLuminance(t *testing.T) {
	if got := QuantizeLuminance(255); got != 63 {
		t.Errorf("QuantizeLuminance(255): got %d, want 63", got)
	}
	if got := QuantizeLuminance(0); got != 0 {
		t.Errorf("QuantizeLuminance(0): got %d, want 0", got)
	}
}
