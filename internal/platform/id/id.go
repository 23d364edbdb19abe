package id

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
)

// Generator creates opaque identifiers.
type Generator interface {
	New() string
}

type RandomHex struct{}

func (RandomHex) New() string {
	buf := make([]byte, 32)
	_, _ = rand.Read(buf)
	return hex.EncodeToString(buf)
}

// Nonce is a raw value handed to the auth backend together with the SHA-256
// digest that goes into the Apple authorization request.
type Nonce struct {
	Raw    string
	Hashed string
}

func NewNonce(gen Generator) Nonce {
	raw := gen.New()
	sum := sha256.Sum256([]byte(raw))
	return Nonce{Raw: raw, Hashed: hex.EncodeToString(sum[:])}
}
