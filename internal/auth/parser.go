package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/nurpe/seminar-quote/internal/model"
)

var (
	ErrMissingToken = errors.New("missing token")
	ErrInvalidToken = errors.New("invalid token")
)

type Claims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

type Parser struct {
	secret []byte
}

func NewParser(secret string) *Parser {
	return &Parser{secret: []byte(strings.TrimSpace(secret))}
}

// Parse validates an HS256 access token and returns its principal.
func (p *Parser) Parse(token string) (model.Principal, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return model.Principal{}, ErrMissingToken
	}
	if len(p.secret) == 0 {
		return model.Principal{}, fmt.Errorf("%w: secret not configured", ErrInvalidToken)
	}

	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return p.secret, nil
	})
	if err != nil || !parsed.Valid {
		return model.Principal{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Subject == "" {
		return model.Principal{}, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}

	return model.Principal{
		UserID: claims.Subject,
		Email:  claims.Email,
		Role:   model.UserRole(strings.ToUpper(strings.TrimSpace(claims.Role))),
	}, nil
}

// Issue signs a token for principal, valid for ttl.
func (p *Parser) Issue(principal model.Principal, ttl time.Duration) (string, error) {
	if len(p.secret) == 0 {
		return "", fmt.Errorf("%w: secret not configured", ErrInvalidToken)
	}
	if principal.UserID == "" {
		return "", errors.New("empty user id")
	}
	now := time.Now()
	claims := Claims{
		Email: principal.Email,
		Role:  string(principal.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   principal.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(p.secret)
}
