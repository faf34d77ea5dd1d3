package security

import (
	"crypto/rand"
	"io"

	"github.com/baechuer/real-time-ressys/services/account-service/internal/domain"
)

const (
	tokenAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
	TokenLength   = 32

	// largest multiple of len(tokenAlphabet) that fits in a byte
	tokenMaxByte = 256 - (256 % len(tokenAlphabet))
)

// TokenGenerator draws fixed-length alphanumeric secrets from a
// cryptographic source. Uniqueness against the store is the caller's job.
type TokenGenerator struct {
	src io.Reader
}

func NewTokenGenerator() *TokenGenerator {
	return &TokenGenerator{src: rand.Reader}
}

// NewTokenGeneratorFrom is used by tests to inject a deterministic source.
func NewTokenGeneratorFrom(src io.Reader) *TokenGenerator {
	if src == nil {
		src = rand.Reader
	}
	return &TokenGenerator{src: src}
}

func (g *TokenGenerator) Generate() (string, error) {
	out := make([]byte, 0, TokenLength)
	buf := make([]byte, TokenLength)

	for len(out) < TokenLength {
		if _, err := io.ReadFull(g.src, buf); err != nil {
			return "", domain.ErrRandomFailed(err)
		}
		for _, b := range buf {
			// rejection sampling keeps every symbol equally likely
			if int(b) >= tokenMaxByte {
				continue
			}
			out = append(out, tokenAlphabet[int(b)%len(tokenAlphabet)])
			if len(out) == TokenLength {
				break
			}
		}
	}
	return string(out), nil
}
