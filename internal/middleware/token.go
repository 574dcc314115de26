package middleware

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"diningroom/internal/models"
)

var errInvalidClaims = errors.New("invalid token claims")

// IssueToken signs an HS256 access token for u.
func IssueToken(secret string, u models.User, ttl time.Duration, now time.Time) (string, error) {
	claims := jwt.MapClaims{
		"sub":  u.ID.Hex(),
		"name": u.Name,
		"role": u.Role,
		"iat":  now.Unix(),
		"exp":  now.Add(ttl).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ParseToken validates the signature and expiry and reads the principal.
func ParseToken(secret, raw string) (models.Principal, error) {
	token, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return models.Principal{}, err
	}
	if !token.Valid {
		return models.Principal{}, errInvalidClaims
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return models.Principal{}, errInvalidClaims
	}

	sub, _ := claims["sub"].(string)
	id, err := primitive.ObjectIDFromHex(strings.TrimSpace(sub))
	if err != nil {
		return models.Principal{}, errInvalidClaims
	}

	role, _ := claims["role"].(string)
	if !models.ValidRole(role) {
		return models.Principal{}, errInvalidClaims
	}

	name, _ := claims["name"].(string)
	return models.Principal{ID: id, Name: name, Role: role}, nil
}
