package security

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrMalformedToken is returned when a credential is not a well-formed signed
	// payload or its signature does not verify.
	ErrMalformedToken = errors.New("invalid token format")
	// ErrExpiredToken is returned when a credential verifies but its exp has passed.
	ErrExpiredToken = errors.New("token expired")
)

// Reserved claim names injected by Encode.
const (
	ClaimIssuedAt  = "iat"
	ClaimExpiresAt = "exp"
	ClaimNonce     = "jti"
	ClaimUserID    = "user_id"
	ClaimRoles     = "roles"
	ClaimIsSuper   = "is_super"
)

// Claims is the decoded payload of a credential.
type Claims map[string]any

// IdentityClaims builds the identity-bound claim set carried by access and refresh credentials.
func IdentityClaims(userID string, roles []string, isSuper bool) Claims {
	if roles == nil {
		roles = []string{}
	}
	return Claims{
		ClaimUserID:  userID,
		ClaimRoles:   roles,
		ClaimIsSuper: isSuper,
	}
}

// UserID returns the user_id claim, or "" when absent.
func (c Claims) UserID() string {
	s, _ := c[ClaimUserID].(string)
	return s
}

// IsSuper returns the is_super claim, false when absent.
func (c Claims) IsSuper() bool {
	b, _ := c[ClaimIsSuper].(bool)
	return b
}

// Roles returns the roles claim. Decoded JSON arrays arrive as []any; non-string
// members are ignored.
func (c Claims) Roles() []string {
	switch v := c[ClaimRoles].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, r := range v {
			if s, ok := r.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

// HasRole reports whether role is listed in the roles claim.
func (c Claims) HasRole(role string) bool {
	for _, r := range c.Roles() {
		if r == role {
			return true
		}
	}
	return false
}

// Nonce returns the jti claim.
func (c Claims) Nonce() string {
	s, _ := c[ClaimNonce].(string)
	return s
}

// TokenCodec mints and validates HS256-signed, time-bound credentials with a
// single symmetric secret. It holds no mutable state and is safe for concurrent use.
type TokenCodec struct {
	secret []byte
	now    func() time.Time
}

// CodecOption configures a TokenCodec.
type CodecOption func(*TokenCodec)

// WithClock overrides the codec's time source.
func WithClock(now func() time.Time) CodecOption {
	return func(c *TokenCodec) { c.now = now }
}

// NewTokenCodec returns a TokenCodec signing with secret. secret must not be empty.
func NewTokenCodec(secret []byte, opts ...CodecOption) (*TokenCodec, error) {
	if len(secret) == 0 {
		return nil, errors.New("security: token secret must not be empty")
	}
	c := &TokenCodec{
		secret: append([]byte(nil), secret...),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Encode signs claims with iat=now, exp=now+ttl and a fresh jti added. The
// caller's map is not modified. A ttl <= 0 yields an already expired credential.
func (c *TokenCodec) Encode(claims Claims, ttl time.Duration) (string, error) {
	nonce, err := generateNonce()
	if err != nil {
		return "", fmt.Errorf("generate nonce: %w", err)
	}
	now := c.now()
	mc := make(jwt.MapClaims, len(claims)+3)
	for k, v := range claims {
		mc[k] = v
	}
	mc[ClaimIssuedAt] = now.Unix()
	mc[ClaimExpiresAt] = now.Add(ttl).Unix()
	mc[ClaimNonce] = nonce
	return jwt.NewWithClaims(jwt.SigningMethodHS256, mc).SignedString(c.secret)
}

// Decode verifies the signature and expiry of token and returns its claims.
// It returns ErrExpiredToken for a verified but expired credential and
// ErrMalformedToken for anything else that does not validate.
func (c *TokenCodec) Decode(token string) (Claims, error) {
	if token == "" {
		return nil, ErrMalformedToken
	}
	mc := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(token, mc, func(*jwt.Token) (any, error) {
		return c.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrMalformedToken
	}
	if !parsed.Valid {
		return nil, ErrMalformedToken
	}
	return Claims(mc), nil
}

// IsValid reports whether token decodes successfully.
func (c *TokenCodec) IsValid(token string) bool {
	_, err := c.Decode(token)
	return err == nil
}

// generateNonce returns 128 random bits, hex-encoded. It is not used as a key.
func generateNonce() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
