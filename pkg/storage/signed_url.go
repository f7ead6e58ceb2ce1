package storage

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Token validation failures.
var (
	ErrInvalidToken = errors.New("invalid download token")
	ErrTokenExpired = errors.New("download token expired")
)

// SignedURLSigner creates and validates signed download tokens of the form
// id.expiry.base64(path).hmac.
type SignedURLSigner struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewSignedURLSigner constructs a signer with the provided secret and TTL.
func NewSignedURLSigner(secret string, ttl time.Duration) *SignedURLSigner {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &SignedURLSigner{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// TTL returns how long generated tokens stay valid.
func (s *SignedURLSigner) TTL() time.Duration { return s.ttl }

// Generate returns a token granting access to relPath until the TTL elapses.
func (s *SignedURLSigner) Generate(id, relPath string) (string, time.Time, error) {
	if id == "" || relPath == "" {
		return "", time.Time{}, errors.New("id and path required")
	}
	if len(s.secret) == 0 {
		return "", time.Time{}, errors.New("signing secret missing")
	}
	expiresAt := s.now().Add(s.ttl).Truncate(time.Second)
	ts := strconv.FormatInt(expiresAt.Unix(), 10)
	encodedPath := base64.RawURLEncoding.EncodeToString([]byte(relPath))
	token := strings.Join([]string{id, ts, encodedPath, s.sign(id, ts, encodedPath)}, ".")
	return token, expiresAt, nil
}

// Parse validates a token and returns the embedded id and path.
func (s *SignedURLSigner) Parse(token string) (id, relPath string, err error) {
	parts := strings.Split(token, ".")
	if len(parts) != 4 {
		return "", "", ErrInvalidToken
	}
	id, ts, encodedPath, signature := parts[0], parts[1], parts[2], parts[3]

	if !hmac.Equal([]byte(s.sign(id, ts, encodedPath)), []byte(signature)) {
		return "", "", ErrInvalidToken
	}
	expUnix, err := strconv.ParseInt(ts, 10, 64)
	if err != nil {
		return "", "", fmt.Errorf("%w: bad expiry", ErrInvalidToken)
	}
	if s.now().After(time.Unix(expUnix, 0)) {
		return "", "", ErrTokenExpired
	}
	rawPath, err := base64.RawURLEncoding.DecodeString(encodedPath)
	if err != nil {
		return "", "", fmt.Errorf("%w: bad path", ErrInvalidToken)
	}
	return id, string(rawPath), nil
}

func (s *SignedURLSigner) sign(id, ts, encodedPath string) string {
	mac := hmac.New(sha256.New, s.secret)
	_, _ = mac.Write([]byte(id + "|" + ts + "|" + encodedPath))
	return hex.EncodeToString(mac.Sum(nil))
}
