package service

import (
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/lf9/taskdesk/internal/core/domain"
)

// TokenInfo is what the client may learn from a credential without asking
// the server. None of it is trusted until the backend accepts the token.
type TokenInfo struct {
	ExpiresAt time.Time // zero when the token has no exp claim
	Subject   string    // empty when the token names no subject
}

// InspectToken decodes the claims of a JWT without verifying its signature
// and checks the expiry against now. Anything that does not decode is
// reported as ErrTokenMalformed; a past exp is ErrTokenExpired.
func InspectToken(token string, now time.Time) (TokenInfo, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return TokenInfo{}, fmt.Errorf("%w: %v", domain.ErrTokenMalformed, err)
	}

	var info TokenInfo
	exp, err := claims.GetExpirationTime()
	if err != nil {
		return TokenInfo{}, fmt.Errorf("%w: %v", domain.ErrTokenMalformed, err)
	}
	if exp != nil {
		info.ExpiresAt = exp.Time
		if !now.Before(exp.Time) {
			return info, domain.ErrTokenExpired
		}
	}

	sub, err := subjectOf(claims)
	if err != nil {
		return TokenInfo{}, err
	}
	info.Subject = sub
	return info, nil
}

// subjectOf looks for the user reference under the claim names backends
// commonly use. Numeric claims are rendered as decimal ids.
func subjectOf(claims jwt.MapClaims) (string, error) {
	for _, key := range []string{"sub", "id", "user_id", "userId"} {
		raw, ok := claims[key]
		if !ok || raw == nil {
			continue
		}
		switch v := raw.(type) {
		case float64:
			return strconv.FormatInt(int64(v), 10), nil
		case string:
			return v, nil
		default:
			return "", fmt.Errorf("%w: unexpected %s claim type %T", domain.ErrTokenMalformed, key, raw)
		}
	}
	return "", nil
}

// Names reports whether the token's subject, if any, refers to u. Tokens
// without a subject name nobody in particular and are accepted.
func (i TokenInfo) Names(u domain.User) bool {
	if i.Subject == "" {
		return true
	}
	return i.Subject == strconv.FormatInt(u.ID, 10) || i.Subject == u.Username
}
