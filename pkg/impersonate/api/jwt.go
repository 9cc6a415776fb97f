package api

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/genera-edu/rbac/pkg/impersonate"
)

// TokenCookieName is the cookie carrying the impersonation context token.
const TokenCookieName = "dev_role_token"

// TokenSigner mints and verifies the HS256 token that stamps the
// impersonation context onto the client after a successful start.
type TokenSigner struct {
	secret []byte
	issuer string
}

// NewTokenSigner creates a signer with the given HMAC secret
func NewTokenSigner(secret []byte, issuer string) *TokenSigner {
	return &TokenSigner{
		secret: secret,
		issuer: issuer,
	}
}

// Sign creates a signed token for the impersonation context. The token
// expires with the session.
func (s *TokenSigner) Sign(devUserID string, ic *impersonate.Context) (string, error) {
	claims := jwt.MapClaims{
		"iss":           s.issuer,
		"sub":           devUserID,
		"exp":           ic.ExpiresAt.Unix(),
		"iat":           time.Now().Unix(),
		"role":          string(ic.Role),
		"session_token": ic.SessionToken,
	}
	if ic.ImpersonatedUserID != nil {
		claims["impersonated_user_id"] = ic.ImpersonatedUserID.String()
	}
	if ic.SchoolID != nil {
		claims["school_id"] = *ic.SchoolID
	}
	if ic.GenerationID != nil {
		claims["generation_id"] = ic.GenerationID.String()
	}
	if ic.CommunityID != nil {
		claims["community_id"] = ic.CommunityID.String()
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign impersonation token: %w", err)
	}
	return signed, nil
}

// Parse verifies a token and returns its claims
func (s *TokenSigner) Parse(raw string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse impersonation token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid impersonation token")
	}
	return claims, nil
}
