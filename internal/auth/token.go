package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/BruksfildServices01/volunteer-scheduler/internal/domain/identity"
)

var ErrInvalidToken = errors.New("invalid token")

type Tokens struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokens(secret string, ttl time.Duration) *Tokens {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Tokens{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

// Issue signs an HS256 token carrying the actor. orgId is only present for
// organization users.
func (t *Tokens) Issue(a identity.Actor) (string, error) {
	now := t.now()
	claims := jwt.MapClaims{
		"sub":  a.UserID,
		"role": string(a.Role),
		"exp":  now.Add(t.ttl).Unix(),
		"iat":  now.Unix(),
	}
	if a.OrganizationID != nil {
		claims["orgId"] = *a.OrganizationID
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(t.secret)
}

func (t *Tokens) Parse(raw string) (identity.Actor, error) {
	token, err := jwt.Parse(raw, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenMalformed
		}
		return t.secret, nil
	}, jwt.WithTimeFunc(t.now))
	if err != nil || !token.Valid {
		return identity.Actor{}, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return identity.Actor{}, ErrInvalidToken
	}

	sub, ok1 := claims["sub"].(float64)
	role, ok2 := claims["role"].(string)
	if !ok1 || !ok2 || sub <= 0 || !identity.Role(role).Valid() {
		return identity.Actor{}, ErrInvalidToken
	}

	a := identity.Actor{
		UserID: uint(sub),
		Role:   identity.Role(role),
	}
	if org, ok := claims["orgId"].(float64); ok && org > 0 {
		id := uint(org)
		a.OrganizationID = &id
	}
	return a, nil
}
