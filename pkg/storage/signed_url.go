package storage

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DownloadClaims are the fields a signed download token carries: which export
// job produced the file, where the rendered file lives relative to the export
// store, and until when the link stays valid.
type DownloadClaims struct {
	JobID     string
	Path      string
	ExpiresAt time.Time
}

// SignedURLSigner mints and verifies download tokens for finished export
// jobs. Tokens are self-contained, so the download endpoint needs no session:
// the claims ride in the token under an HMAC.
type SignedURLSigner struct {
	secret []byte
	ttl    time.Duration
}

// NewSignedURLSigner constructs a signer with the provided secret and TTL.
func NewSignedURLSigner(secret string, ttl time.Duration) *SignedURLSigner {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &SignedURLSigner{
		secret: []byte(secret),
		ttl:    ttl,
	}
}

// Generate signs a token for the rendered file of an export job.
func (s *SignedURLSigner) Generate(jobID, path string) (string, DownloadClaims, error) {
	if jobID == "" || path == "" {
		return "", DownloadClaims{}, fmt.Errorf("job id and file path required")
	}
	if len(s.secret) == 0 {
		return "", DownloadClaims{}, fmt.Errorf("signing secret missing")
	}
	claims := DownloadClaims{
		JobID:     jobID,
		Path:      path,
		ExpiresAt: time.Now().Add(s.ttl).Truncate(time.Second),
	}
	encoded := encodeClaims(claims)
	token := encoded + "." + s.sign(encoded)
	return token, claims, nil
}

// Parse verifies a token and returns the embedded claims. With allowExpired
// the expiry check is skipped, which cleanup routines use to locate files of
// links that already lapsed.
func (s *SignedURLSigner) Parse(token string, allowExpired bool) (DownloadClaims, error) {
	encoded, signature, found := strings.Cut(token, ".")
	if !found {
		return DownloadClaims{}, fmt.Errorf("invalid token format")
	}
	if !hmac.Equal([]byte(s.sign(encoded)), []byte(signature)) {
		return DownloadClaims{}, fmt.Errorf("invalid token signature")
	}
	claims, err := decodeClaims(encoded)
	if err != nil {
		return DownloadClaims{}, err
	}
	if !allowExpired && time.Now().After(claims.ExpiresAt) {
		return DownloadClaims{}, fmt.Errorf("token expired")
	}
	return claims, nil
}

func (s *SignedURLSigner) sign(encoded string) string {
	mac := hmac.New(sha256.New, s.secret)
	_, _ = mac.Write([]byte(encoded))
	return hex.EncodeToString(mac.Sum(nil))
}

func encodeClaims(c DownloadClaims) string {
	wire := c.JobID + "\n" + c.Path + "\n" + strconv.FormatInt(c.ExpiresAt.Unix(), 10)
	return base64.RawURLEncoding.EncodeToString([]byte(wire))
}

func decodeClaims(encoded string) (DownloadClaims, error) {
	raw, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return DownloadClaims{}, fmt.Errorf("decode claims: %w", err)
	}
	parts := strings.SplitN(string(raw), "\n", 3)
	if len(parts) != 3 {
		return DownloadClaims{}, fmt.Errorf("malformed claims")
	}
	expUnix, err := strconv.ParseInt(parts[2], 10, 64)
	if err != nil {
		return DownloadClaims{}, fmt.Errorf("invalid expiry")
	}
	return DownloadClaims{
		JobID:     parts[0],
		Path:      parts[1],
		ExpiresAt: time.Unix(expUnix, 0),
	}, nil
}
