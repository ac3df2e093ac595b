package utils

import (
	"errors"
	"time"

	"github.com/dcode-github/homlet/models"
	"github.com/golang-jwt/jwt"
)

const issuer = "homlet"

type Claims struct {
	UserID   string      `json:"userID"`
	FullName string      `json:"fullName"`
	Email    string      `json:"email"`
	Role     models.Role `json:"role"`
	jwt.StandardClaims
}

// SessionSigner issues and validates the signed session token that carries
// the logged in identity.
type SessionSigner struct {
	key []byte
	ttl time.Duration
	now func() time.Time
}

func NewSessionSigner(key string, ttl time.Duration) *SessionSigner {
	return &SessionSigner{key: []byte(key), ttl: ttl, now: time.Now}
}

func (s *SessionSigner) TTL() time.Duration {
	return s.ttl
}

func (s *SessionSigner) Generate(identity models.Identity) (string, error) {
	now := s.now()
	claims := &Claims{
		UserID:   identity.ID,
		FullName: identity.FullName,
		Email:    identity.Email,
		Role:     identity.Role,
		StandardClaims: jwt.StandardClaims{
			ExpiresAt: now.Add(s.ttl).Unix(),
			IssuedAt:  now.Unix(),
			Issuer:    issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.key)
}

func (s *SessionSigner) Validate(tokenStr string) (*models.Identity, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.key, nil
	})
	if err != nil {
		var verr *jwt.ValidationError
		if errors.As(err, &verr) && verr.Errors&jwt.ValidationErrorExpired != 0 {
			return nil, errors.New("session has expired")
		}
		return nil, err
	}

	if !token.Valid || claims.Issuer != issuer || !claims.Role.Valid() {
		return nil, errors.New("invalid session")
	}

	return &models.Identity{
		ID:       claims.UserID,
		FullName: claims.FullName,
		Email:    claims.Email,
		Role:     claims.Role,
	}, nil
}
