package storage

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// TokenSigner mints and verifies the download tokens handed out with
// generated exports. A token pins the export id, the archived filename
// and an expiry, all covered by an HMAC so none of it can be altered.
type TokenSigner struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenSigner constructs a signer. The TTL bounds how long an
// archived export stays downloadable.
func NewTokenSigner(secret string, ttl time.Duration) *TokenSigner {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &TokenSigner{secret: []byte(secret), ttl: ttl}
}

// Generate returns a token for the archived file and its expiry time.
func (s *TokenSigner) Generate(exportID, filename string) (string, time.Time, error) {
	if exportID == "" || filename == "" {
		return "", time.Time{}, fmt.Errorf("export id and filename required")
	}
	if len(s.secret) == 0 {
		return "", time.Time{}, fmt.Errorf("signing secret missing")
	}

	expiresAt := time.Now().Add(s.ttl)
	encodedName := base64.RawURLEncoding.EncodeToString([]byte(filename))
	expiry := strconv.FormatInt(expiresAt.Unix(), 10)
	token := strings.Join([]string{
		exportID,
		expiry,
		encodedName,
		s.sign(exportID, expiry, encodedName),
	}, ".")
	return token, expiresAt, nil
}

// Parse verifies a token and returns what it references. Expired
// tokens fail unless allowExpired is set, which cleanup paths use to
// identify files past their window.
func (s *TokenSigner) Parse(token string, allowExpired bool) (string, string, time.Time, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 4 {
		return "", "", time.Time{}, fmt.Errorf("malformed download token")
	}
	exportID, expiry, encodedName, signature := parts[0], parts[1], parts[2], parts[3]

	if !hmac.Equal([]byte(s.sign(exportID, expiry, encodedName)), []byte(signature)) {
		return "", "", time.Time{}, fmt.Errorf("download token signature mismatch")
	}

	expUnix, err := strconv.ParseInt(expiry, 10, 64)
	if err != nil {
		return "", "", time.Time{}, fmt.Errorf("malformed download token expiry")
	}
	expiresAt := time.Unix(expUnix, 0)
	if !allowExpired && time.Now().After(expiresAt) {
		return "", "", time.Time{}, fmt.Errorf("download token expired")
	}

	rawName, err := base64.RawURLEncoding.DecodeString(encodedName)
	if err != nil {
		return "", "", time.Time{}, fmt.Errorf("decode download token filename: %w", err)
	}
	return exportID, string(rawName), expiresAt, nil
}

func (s *TokenSigner) sign(exportID, expiry, encodedName string) string {
	mac := hmac.New(sha256.New, s.secret)
	fmt.Fprintf(mac, "%s\n%s\n%s", exportID, expiry, encodedName)
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}
