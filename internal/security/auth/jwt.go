package auth

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenTTL is the fixed lifetime of an issued token.
const TokenTTL = 8 * time.Hour

var (
	// ErrInvalidToken is returned when a token is malformed or its
	// signature does not verify.
	ErrInvalidToken = errors.New("invalid token")

	// ErrTokenExpired is returned when a structurally valid token is past
	// its expiry.
	ErrTokenExpired = errors.New("token expired")
)

// Claims are the attributes embedded at issuance and trusted after
// validation. Claim names are used exactly as issued; no renaming is
// applied when decoding. Email is only present on admin tokens.
type Claims struct {
	Role  string `json:"role"`
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// SubjectID parses the subject claim as a principal id.
func (c *Claims) SubjectID() (int64, error) {
	id, err := strconv.ParseInt(c.Subject, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("subject claim is not a principal id: %w", err)
	}
	return id, nil
}

// TokenManager issues and validates HS256-signed identity tokens. The
// signing key is the raw bytes of the configured secret; tokens are
// stateless and never persisted. Issuer and audience are embedded when
// configured but deliberately not validated (relaxed policy carried
// over from the original deployment).
type TokenManager struct {
	secret   []byte
	issuer   string
	audience string
	now      func() time.Time
}

// NewTokenManager creates a token manager. An empty secret is rejected
// at config load; the fallback here only guards direct construction in
// tests.
func NewTokenManager(secret, issuer, audience string) *TokenManager {
	if secret == "" {
		secret = "change-me-in-production"
	}
	return &TokenManager{
		secret:   []byte(secret),
		issuer:   issuer,
		audience: audience,
		now:      time.Now,
	}
}

// WithClock overrides the time source, for expiry tests.
func (tm *TokenManager) WithClock(now func() time.Time) *TokenManager {
	tm.now = now
	return tm
}

// Issue creates a signed token for a principal. Email should be empty
// for non-admin principals; the claim is omitted when empty. Expiry is
// issuance time plus TokenTTL.
func (tm *TokenManager) Issue(subjectID int64, email, role string) (string, error) {
	if subjectID <= 0 || role == "" {
		return "", fmt.Errorf("subject id and role are required")
	}

	now := tm.now()
	claims := Claims{
		Role:  role,
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(subjectID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(TokenTTL)),
			Issuer:    tm.issuer,
		},
	}
	if tm.audience != "" {
		claims.Audience = jwt.ClaimStrings{tm.audience}
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(tm.secret)
}

// Validate checks the signature and expiry of a token and returns its
// claims. Signature failures yield ErrInvalidToken; expiry yields
// ErrTokenExpired.
func (tm *TokenManager) Validate(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return tm.secret, nil
	}, jwt.WithTimeFunc(tm.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%w: %v", ErrTokenExpired, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// ExtractToken pulls the bearer token out of an Authorization header.
func ExtractToken(authHeader string) (string, error) {
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", fmt.Errorf("invalid authorization header")
	}
	return parts[1], nil
}
