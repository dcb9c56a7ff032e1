package otpcode

import "testing"

func TestNumericGenerate(t *testing.T) {
	gen := NewNumeric()

	seen := make(map[string]struct{})
	leadingZero := false
	for range 2000 {
		code, err := gen.Generate()
		if err != nil {
			t.Fatalf("Generate() unexpected error: %v", err)
		}
		if len(code) != Length {
			t.Fatalf("Generate() = %q, want %d digits", code, Length)
		}
		for _, r := range code {
			if r < '0' || r > '9' {
				t.Fatalf("Generate() = %q, contains non-digit %q", code, r)
			}
		}
		if code[0] == '0' {
			leadingZero = true
		}
		seen[code] = struct{}{}
	}

	// 2000 draws out of 100000 values collide sometimes, but all landing on
	// one value means the source is broken.
	if len(seen) < 2 {
		t.Fatalf("expected varied codes, got %d distinct", len(seen))
	}

	// Roughly 10% of the space starts with zero; 2000 draws missing it
	// entirely (p ≈ 10^-92) means padding is broken.
	if !leadingZero {
		t.Fatalf("expected at least one zero-padded code in 2000 draws")
	}
}
