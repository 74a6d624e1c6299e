// Copyright 2026 The Gatearr Authors
// SPDX-License-Identifier: Apache-2.0

package sessiontoken

import (
	"crypto/ed25519"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/gatearr/gatearr/lib/clock"
	"github.com/gatearr/gatearr/lib/codec"
	"github.com/gatearr/gatearr/lib/identity"
)

// signatureSize is the fixed size of an Ed25519 signature.
const signatureSize = ed25519.SignatureSize // 64 bytes

// Kind distinguishes access tokens from refresh tokens. It is signed
// along with the rest of the claims: a single secret signs both kinds,
// so the kind check is the only thing separating their privilege
// scope.
type Kind uint8

const (
	// Access authorizes proxied requests until the next UTC midnight.
	Access Kind = iota + 1
	// Refresh may only be exchanged for a new access token.
	Refresh
)

// String returns the kind name for logs and error messages.
func (k Kind) String() string {
	switch k {
	case Access:
		return "access"
	case Refresh:
		return "refresh"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Claims is the CBOR-encoded payload of a session token.
type Claims struct {
	// Subject is the identity provider's stable user ID.
	Subject string `cbor:"1,keyasint"`

	// DisplayName is the username at issuance time.
	DisplayName string `cbor:"2,keyasint"`

	// Privileged records the administrator flag at issuance time.
	// Refresh re-checks it against the provider, so a demoted user
	// loses access at the next refresh rather than at token expiry.
	Privileged bool `cbor:"3,keyasint"`

	// IssuedAt is a Unix timestamp (seconds) of when the token was
	// minted. Always <= ExpiresAt.
	IssuedAt int64 `cbor:"4,keyasint"`

	// ExpiresAt is a Unix timestamp (seconds) after which the token
	// no longer verifies.
	ExpiresAt int64 `cbor:"5,keyasint"`

	// Kind marks the token as access or refresh.
	Kind Kind `cbor:"6,keyasint"`
}

// Identity reconstructs the identity carried in the claims.
func (c *Claims) Identity() identity.Identity {
	return identity.Identity{
		ID:          c.Subject,
		DisplayName: c.DisplayName,
		Privileged:  c.Privileged,
	}
}

// Errors returned by Verify.
var (
	ErrMalformedToken   = errors.New("sessiontoken: malformed token")
	ErrInvalidSignature = errors.New("sessiontoken: invalid signature")
	ErrTokenExpired     = errors.New("sessiontoken: token has expired")
	ErrKindMismatch     = errors.New("sessiontoken: token kind does not match")
)

// Engine mints and verifies session tokens. The Ed25519 keypair is
// derived from the signing secret at construction and shared read-only
// across all request goroutines.
type Engine struct {
	private    ed25519.PrivateKey
	public     ed25519.PublicKey
	refreshTTL time.Duration
	clock      clock.Clock
}

// NewEngine creates an Engine from a signing secret. refreshDays is
// the refresh token lifetime; clk drives all expiry computation.
func NewEngine(secret Secret, refreshDays int, clk clock.Clock) *Engine {
	private := ed25519.NewKeyFromSeed(secret[:])
	return &Engine{
		private:    private,
		public:     private.Public().(ed25519.PublicKey),
		refreshTTL: time.Duration(refreshDays) * 24 * time.Hour,
		clock:      clk,
	}
}

// IssueAccess mints an access token for ident. Access tokens always
// expire at 23:59:59 UTC of the issuance day, bounding the exposure of
// a stolen token to at most 24 hours.
func (e *Engine) IssueAccess(ident identity.Identity) (string, error) {
	now := e.clock.Now().UTC()
	return e.issue(ident, Access, now, endOfDay(now))
}

// IssueRefresh mints a refresh token for ident, valid for the
// configured number of days.
func (e *Engine) IssueRefresh(ident identity.Identity) (string, error) {
	now := e.clock.Now().UTC()
	return e.issue(ident, Refresh, now, now.Add(e.refreshTTL))
}

func (e *Engine) issue(ident identity.Identity, kind Kind, now, expiry time.Time) (string, error) {
	claims := Claims{
		Subject:     ident.ID,
		DisplayName: ident.DisplayName,
		Privileged:  ident.Privileged,
		IssuedAt:    now.Unix(),
		ExpiresAt:   expiry.Unix(),
		Kind:        kind,
	}

	payload, err := codec.Marshal(&claims)
	if err != nil {
		return "", fmt.Errorf("sessiontoken: encoding claims: %w", err)
	}

	signature := ed25519.Sign(e.private, payload)

	raw := make([]byte, len(payload)+signatureSize)
	copy(raw, payload)
	copy(raw[len(payload):], signature)

	return base64.RawURLEncoding.EncodeToString(raw), nil
}

// Verify decodes token, checks its signature and expiry, and confirms
// it is of the expected kind. The signature is verified before any
// claim is inspected; a kind mismatch on an otherwise valid token is
// the distinct ErrKindMismatch, so callers can tell a replayed refresh
// token apart from garbage.
func (e *Engine) Verify(token string, expected Kind) (*Claims, error) {
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}
	if len(raw) <= signatureSize {
		return nil, fmt.Errorf("%w: too short for signature", ErrMalformedToken)
	}

	splitPoint := len(raw) - signatureSize
	payload := raw[:splitPoint]
	signature := raw[splitPoint:]

	if !ed25519.Verify(e.public, payload, signature) {
		return nil, ErrInvalidSignature
	}

	var claims Claims
	if err := codec.Unmarshal(payload, &claims); err != nil {
		return nil, fmt.Errorf("%w: decoding claims: %v", ErrMalformedToken, err)
	}

	if e.clock.Now().Unix() > claims.ExpiresAt {
		return nil, ErrTokenExpired
	}

	if claims.Kind != expected {
		return nil, fmt.Errorf("%w: got %s, want %s", ErrKindMismatch, claims.Kind, expected)
	}

	return &claims, nil
}

// AccessTTL returns the remaining lifetime of an access token issued
// now: the seconds until the next UTC midnight. Used for the access
// cookie's Max-Age.
func (e *Engine) AccessTTL() time.Duration {
	now := e.clock.Now().UTC()
	return endOfDay(now).Add(time.Second).Sub(now)
}

// endOfDay returns 23:59:59 UTC on the same calendar day as t.
func endOfDay(t time.Time) time.Time {
	year, month, day := t.UTC().Date()
	return time.Date(year, month, day, 23, 59, 59, 0, time.UTC)
}
