package security

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/baechuer/real-time-ressys/services/account-service/internal/domain"
)

func TestTokenGenerator_LengthAndCharset(t *testing.T) {
	t.Parallel()

	g := NewTokenGenerator()
	for i := 0; i < 200; i++ {
		tok, err := g.Generate()
		if err != nil {
			t.Fatalf("generate err: %v", err)
		}
		if len(tok) != TokenLength {
			t.Fatalf("expected len %d, got %d (%q)", TokenLength, len(tok), tok)
		}
		for _, r := range tok {
			if !strings.ContainsRune(tokenAlphabet, r) {
				t.Fatalf("unexpected rune %q in %q", r, tok)
			}
		}
	}
}

func TestTokenGenerator_Distinct(t *testing.T) {
	t.Parallel()

	g := NewTokenGenerator()
	seen := map[string]bool{}
	for i := 0; i < 500; i++ {
		tok, err := g.Generate()
		if err != nil {
			t.Fatalf("generate err: %v", err)
		}
		if seen[tok] {
			t.Fatalf("duplicate token %q", tok)
		}
		seen[tok] = true
	}
}

func TestTokenGenerator_RejectsBiasedBytes(t *testing.T) {
	t.Parallel()

	// 248..255 are rejected; 0 maps to 'A', 61 maps to '9'
	src := append(bytes.Repeat([]byte{255}, 32), bytes.Repeat([]byte{0, 61}, 16)...)
	g := NewTokenGeneratorFrom(bytes.NewReader(src))

	tok, err := g.Generate()
	if err != nil {
		t.Fatalf("generate err: %v", err)
	}
	if tok != strings.Repeat("A9", 16) {
		t.Fatalf("unexpected token %q", tok)
	}
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("entropy exhausted") }

func TestTokenGenerator_SourceError_ReturnsRandomFailed(t *testing.T) {
	t.Parallel()

	g := NewTokenGeneratorFrom(failingReader{})
	_, err := g.Generate()
	if !domain.Is(err, "random_failed") {
		t.Fatalf("expected random_failed, got %v", err)
	}
}
