// Copyright (C) 2025 sage-x-project
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.

// SPDX-License-Identifier: LGPL-3.0-or-later

package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenVerification is the outcome of TokenIssuer.Verify.
type TokenVerification struct {
	Valid     bool
	DID       string
	ExpiresAt time.Time
	Error     error
}

// TokenIssuer issues and validates opaque, signed-locally bearer tokens
// encoding {did, expires_at}. Tokens are independent per server instance —
// there is no cross-server federation or shared signing key.
type TokenIssuer struct {
	signingKey []byte
}

// NewTokenIssuer creates a TokenIssuer signing with signingKey. A random key
// generated at process start (and never persisted) is sufficient, since
// tokens are only ever verified by the instance that issued them.
func NewTokenIssuer(signingKey []byte) *TokenIssuer {
	return &TokenIssuer{signingKey: signingKey}
}

type tokenClaims struct {
	DID string `json:"did"`
	jwt.RegisteredClaims
}

// Issue creates a bearer token for did valid for ttl, following a successful
// DID-WBA handshake.
func (t *TokenIssuer) Issue(did string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := tokenClaims{
		DID: did,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(t.signingKey)
}

// Verify validates tokenString, rejecting it when expired or malformed.
// Reissuing a token for an expired handshake requires a fresh DID-WBA
// exchange; Verify never refreshes a token itself.
func (t *TokenIssuer) Verify(tokenString string) TokenVerification {
	var claims tokenClaims
	_, err := jwt.ParseWithClaims(tokenString, &claims, func(tok *jwt.Token) (interface{}, error) {
		if _, ok := tok.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return t.signingKey, nil
	})
	if err != nil {
		return TokenVerification{Valid: false, Error: newAuthError(ReasonToken, err.Error(), err)}
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return TokenVerification{Valid: false, Error: newAuthError(ReasonToken, "missing expiry", nil)}
	}

	return TokenVerification{Valid: true, DID: claims.DID, ExpiresAt: exp.Time}
}
