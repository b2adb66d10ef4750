// Package secretbox seals maFile contents at rest with AES-256-GCM.
//
// Ciphertexts are bound to the owning steamid via GCM AAD, so a sealed file
// copied between accounts fails to open instead of decrypting silently.
package secretbox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// Sealer defines the interface for sealing and opening account files.
type Sealer interface {
	// Seal returns ciphertext for the given plaintext, bound to steamID.
	Seal(plaintext []byte, steamID string) ([]byte, error)
	// Open returns plaintext for the given ciphertext, requiring the same steamID.
	Open(ciphertext []byte, steamID string) ([]byte, error)
}

// Ciphertext format (binary):
// [0..1]   uint16 version (currently 1)
// [2..13]  12-byte nonce
// [14..]   gcm.Seal output (ciphertext + tag)
const sealVersion uint16 = 1

const (
	gcmNonceSize = 12
	aesKeyLen    = 32
)

var (
	// ErrNotConfigured indicates no key was provided.
	ErrNotConfigured = errors.New("secretbox: not configured")
	// ErrInvalidKeyLength indicates the key is not 32 bytes.
	ErrInvalidKeyLength = errors.New("secretbox: invalid key length")
	// ErrPlaintextEmpty indicates an empty plaintext input.
	ErrPlaintextEmpty = errors.New("secretbox: plaintext is empty")
	// ErrCiphertextTooShort indicates a truncated ciphertext.
	ErrCiphertextTooShort = errors.New("secretbox: ciphertext too short")
	// ErrUnsupportedVersion indicates an unsupported ciphertext version.
	ErrUnsupportedVersion = errors.New("secretbox: unsupported ciphertext version")
	// ErrOpenFailed indicates decryption failure.
	ErrOpenFailed = errors.New("secretbox: open failed")
)

// AESGCM implements Sealer with a single static AES-256 key.
type AESGCM struct {
	key []byte
}

// NewAESGCM constructs an AES-GCM sealer; key must be 32 bytes.
func NewAESGCM(key []byte) (*AESGCM, error) {
	if len(key) != aesKeyLen {
		return nil, fmt.Errorf("secretbox: key is %d bytes (want %d for AES-256): %w",
			len(key), aesKeyLen, ErrInvalidKeyLength)
	}
	return &AESGCM{key: key}, nil
}

// Seal encrypts plaintext, binding the result to steamID via AAD.
func (s *AESGCM) Seal(plaintext []byte, steamID string) ([]byte, error) {
	if s == nil || len(s.key) == 0 {
		return nil, ErrNotConfigured
	}
	if len(plaintext) == 0 {
		return nil, ErrPlaintextEmpty
	}

	gcm, err := s.gcm()
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, gcmNonceSize)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("secretbox: nonce generation failed: %w", err)
	}

	sealed := gcm.Seal(nil, nonce, plaintext, aad(steamID))

	out := make([]byte, 2+gcmNonceSize+len(sealed))
	binary.BigEndian.PutUint16(out[0:2], sealVersion)
	copy(out[2:2+gcmNonceSize], nonce)
	copy(out[2+gcmNonceSize:], sealed)

	return out, nil
}

// Open decrypts ciphertext produced by Seal for the same steamID.
func (s *AESGCM) Open(ciphertext []byte, steamID string) ([]byte, error) {
	if s == nil || len(s.key) == 0 {
		return nil, ErrNotConfigured
	}
	if len(ciphertext) < 2+gcmNonceSize+1 {
		return nil, ErrCiphertextTooShort
	}

	version := binary.BigEndian.Uint16(ciphertext[0:2])
	if version != sealVersion {
		return nil, fmt.Errorf("secretbox: ciphertext version %d: %w", version, ErrUnsupportedVersion)
	}

	gcm, err := s.gcm()
	if err != nil {
		return nil, err
	}

	nonce := ciphertext[2 : 2+gcmNonceSize]
	sealed := ciphertext[2+gcmNonceSize:]

	plain, err := gcm.Open(nil, nonce, sealed, aad(steamID))
	if err != nil {
		// Do not leak whether the key was wrong vs the file tampered.
		return nil, ErrOpenFailed
	}
	return plain, nil
}

func (s *AESGCM) gcm() (cipher.AEAD, error) {
	block, err := aes.NewCipher(s.key)
	if err != nil {
		return nil, fmt.Errorf("secretbox: aes init failed: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("secretbox: gcm init failed: %w", err)
	}
	return gcm, nil
}

// aad encodes the steamid into a fixed-length, tamper-evident AAD.
func aad(steamID string) []byte {
	sum := sha256.Sum256([]byte("steamid=" + steamID))
	return sum[:]
}
