package guardcode

import (
	"crypto/hmac"
	"crypto/sha1"
	"encoding/base64"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"regexp"
	"time"
)

// Period is the validity window of a single code, in seconds.
const Period = 30

// codeAlphabet is Steam's fixed symbol set for authenticator codes.
const codeAlphabet = "23456789BCDFGHJKMNPQRTVWXY"

// codeLength is the number of symbols in an authenticator code.
const codeLength = 5

var reHexSecret = regexp.MustCompile(`^[0-9a-fA-F]{40}$`)

// Generator defines the contract for Steam Guard derivations.
type Generator interface {
	// Code returns the authenticator code valid at the given time and the
	// number of seconds it remains valid.
	Code(sharedSecret string, at time.Time) (code string, validFor int, err error)
	// ConfirmationKey signs a confirmation request for the given unix time
	// and operation tag.
	ConfirmationKey(identitySecret string, unixTime int64, tag string) (string, error)
	// DeviceID derives a stable fallback device identifier from a steamid.
	DeviceID(steamID string) string
}

// SteamGuard implements Generator with Steam's mobile authenticator scheme.
type SteamGuard struct{}

// NewSteamGuard returns a SteamGuard generator.
func NewSteamGuard() *SteamGuard {
	return &SteamGuard{}
}

// DeriveKey decodes a stored secret into raw key bytes.
//
// A 40-character hexadecimal string decodes as hex; anything else decodes as
// base64. The format is detected from the value itself, never configured:
// maFiles in the wild carry both encodings for the same secret.
func DeriveKey(secret string) ([]byte, error) {
	if reHexSecret.MatchString(secret) {
		return hex.DecodeString(secret)
	}

	key, err := base64.StdEncoding.DecodeString(secret)
	if err != nil {
		return nil, fmt.Errorf("secret is neither 40-char hex nor base64: %w", err)
	}
	return key, nil
}

// Code returns the 5-symbol authenticator code valid at the given time and
// the seconds remaining in its 30-second window.
func (*SteamGuard) Code(sharedSecret string, at time.Time) (string, int, error) {
	key, err := DeriveKey(sharedSecret)
	if err != nil {
		return "", 0, err
	}

	unix := at.Unix()

	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uint64(unix/Period))

	mac := hmac.New(sha1.New, key)
	mac.Write(buf[:])
	sum := mac.Sum(nil)

	start := sum[len(sum)-1] & 0x0F
	fullCode := binary.BigEndian.Uint32(sum[start:start+4]) & 0x7FFFFFFF

	code := make([]byte, codeLength)
	for i := range code {
		code[i] = codeAlphabet[fullCode%uint32(len(codeAlphabet))]
		fullCode /= uint32(len(codeAlphabet))
	}

	validFor := Period - int(unix%Period)

	return string(code), validFor, nil
}

// ConfirmationKey signs a confirmation request.
//
// The signed buffer is 8 bytes big-endian (4 zero bytes then the 32-bit time)
// followed by the raw tag bytes; the HMAC-SHA1 digest is base64-encoded. A key
// computed for one tag is rejected by Steam for any other operation.
func (*SteamGuard) ConfirmationKey(identitySecret string, unixTime int64, tag string) (string, error) {
	key, err := DeriveKey(identitySecret)
	if err != nil {
		return "", err
	}

	buf := make([]byte, 8+len(tag))
	binary.BigEndian.PutUint32(buf[4:8], uint32(unixTime))
	copy(buf[8:], tag)

	mac := hmac.New(sha1.New, key)
	mac.Write(buf)

	return base64.StdEncoding.EncodeToString(mac.Sum(nil)), nil
}

// DeviceID derives the android-style device identifier Steam expects when a
// maFile carries none: a UUID-shaped slice of the steamid's SHA-1.
func (*SteamGuard) DeviceID(steamID string) string {
	sum := sha1.Sum([]byte(steamID))
	hexSum := hex.EncodeToString(sum[:])

	return fmt.Sprintf("android:%s-%s-%s-%s-%s",
		hexSum[0:8], hexSum[8:12], hexSum[12:16], hexSum[16:20], hexSum[20:32])
}
