package crypto

import (
	"crypto/rand"
	"encoding/base64"
	"errors"

	"github.com/mr-tron/base58"
	"golang.org/x/crypto/curve25519"
	"golang.org/x/crypto/nacl/box"
)

var (
	ErrInvalidKey = errors.New("invalid private key")
	ErrDecrypt    = errors.New("ciphertext cannot be decrypted")
)

// SealedBox wraps an X25519 keypair for anonymous public-key encryption.
// Anyone holding the public key can encrypt; only the private-key holder
// can decrypt. Keys are read-only after construction.
type SealedBox struct {
	publicKey  [32]byte
	privateKey [32]byte
}

// NewSealedBox builds a SealedBox from a base58-encoded 32-byte private key.
// The public key is derived from the private key.
func NewSealedBox(privateKeyB58 string) (*SealedBox, error) {
	raw, err := base58.Decode(privateKeyB58)
	if err != nil || len(raw) != 32 {
		return nil, ErrInvalidKey
	}

	s := &SealedBox{}
	copy(s.privateKey[:], raw)

	pub, err := curve25519.X25519(s.privateKey[:], curve25519.Basepoint)
	if err != nil {
		return nil, ErrInvalidKey
	}
	copy(s.publicKey[:], pub)

	return s, nil
}

// GenerateSealedBox creates a SealedBox with a fresh random keypair.
func GenerateSealedBox() (*SealedBox, error) {
	pub, priv, err := box.GenerateKey(rand.Reader)
	if err != nil {
		return nil, err
	}
	return &SealedBox{publicKey: *pub, privateKey: *priv}, nil
}

// PublicKeyB58 returns the base58-encoded public key for distribution to clients.
func (s *SealedBox) PublicKeyB58() string {
	return base58.Encode(s.publicKey[:])
}

// PrivateKeyB58 returns the base58-encoded private key. Used by key generation
// tooling only; the server never sends this anywhere.
func (s *SealedBox) PrivateKeyB58() string {
	return base58.Encode(s.privateKey[:])
}

// Decrypt opens a base64-encoded sealed-box ciphertext. It returns ErrDecrypt
// on malformed base64, truncated input, or ciphertext sealed to a different key.
func (s *SealedBox) Decrypt(ciphertextB64 string) ([]byte, error) {
	raw, err := base64.StdEncoding.DecodeString(ciphertextB64)
	if err != nil {
		return nil, ErrDecrypt
	}

	plaintext, ok := box.OpenAnonymous(nil, raw, &s.publicKey, &s.privateKey)
	if !ok {
		return nil, ErrDecrypt
	}
	return plaintext, nil
}

// Encrypt seals plaintext to a base58-encoded public key and returns the
// base64-encoded ciphertext. It needs no private key and is the client-side
// half of the scheme; the server write path receives already-sealed payloads.
func Encrypt(plaintext []byte, publicKeyB58 string) (string, error) {
	raw, err := base58.Decode(publicKeyB58)
	if err != nil || len(raw) != 32 {
		return "", ErrInvalidKey
	}

	var pub [32]byte
	copy(pub[:], raw)

	sealed, err := box.SealAnonymous(nil, plaintext, &pub, rand.Reader)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(sealed), nil
}
