package goSession

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/MrEthical07/goSession/session"
)

type sessionClaims struct {
	jwt.RegisteredClaims
	UserID string `json:"uid"`
}

// IssueSessionToken mints a signed HS256 token referencing an existing
// session, so a host can hand clients an opaque handle instead of the raw
// session id. The token carries no session state; it is only a reference
// validated against the live store on parse.
func (m *Manager) IssueSessionToken(sessionID string) (string, error) {
	if !m.config.Token.Enabled {
		return "", ErrTokenFeatureDisabled
	}

	entry, ok := m.store.Peek(sessionID)
	if !ok {
		return "", ErrSessionNotFound
	}

	now := time.Now()
	claims := sessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sessionID,
			Issuer:    m.config.Token.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.config.Token.TTL)),
		},
		UserID: entry.Data.UserID,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.config.Token.SigningKey)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}

	m.metricInc(MetricTokenIssued)
	return signed, nil
}

// ParseSessionToken verifies a token minted by [Manager.IssueSessionToken]
// and resolves it to an owned copy of the referenced session record.
// Returns ErrSessionNotFound when the token is valid but the session has
// since been deleted.
func (m *Manager) ParseSessionToken(tokenString string) (session.Record, error) {
	if !m.config.Token.Enabled {
		return session.Record{}, ErrTokenFeatureDisabled
	}

	var claims sessionClaims
	_, err := jwt.ParseWithClaims(
		tokenString,
		&claims,
		func(*jwt.Token) (interface{}, error) { return m.config.Token.SigningKey, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(m.config.Token.Issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		m.metricInc(MetricTokenRejected)
		return session.Record{}, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}
	if claims.Subject == "" {
		m.metricInc(MetricTokenRejected)
		return session.Record{}, fmt.Errorf("%w: missing subject", ErrTokenInvalid)
	}

	rec, ok := m.store.Get(claims.Subject)
	if !ok {
		return session.Record{}, ErrSessionNotFound
	}
	return rec, nil
}

// TokenEnabled reports whether session-reference tokens are configured.
func (m *Manager) TokenEnabled() bool {
	return m != nil && m.config.Token.Enabled
}
