package auth

import (
	"errors"
	"time"

	"github.com/dgrijalva/jwt-go"
)

// DefaultTTL is the lifetime of tokens issued without an explicit one.
const DefaultTTL = 24 * time.Hour

const issuer = "lucky-lottery"

// JWTSecret holds the signing key (set by Init).
var JWTSecret []byte

var ErrNoSecret = errors.New("jwt secret not configured")

// Init caches the signing key read from JWT_SECRET_KEY.
func Init(secret string) {
	JWTSecret = []byte(secret)
}

// Claims is the payload of an API token.
type Claims struct {
	Subject string `json:"sub_id"`
	Role    string `json:"role"`
	jwt.StandardClaims
}

// GenerateJWT signs a token for subject with the given role. A zero ttl
// means DefaultTTL.
func GenerateJWT(subject, role string, ttl time.Duration) (string, error) {
	if len(JWTSecret) == 0 {
		return "", ErrNoSecret
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	now := time.Now()
	claims := Claims{
		Subject: subject,
		Role:    role,
		StandardClaims: jwt.StandardClaims{
			Issuer:    issuer,
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(ttl).Unix(),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(JWTSecret)
}

// ParseAndVerify validates the token string and returns its claims.
func ParseAndVerify(tokenStr string) (*Claims, error) {
	if len(JWTSecret) == 0 {
		return nil, ErrNoSecret
	}
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		// HS256 only
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return JWTSecret, nil
	})
	if err != nil {
		return nil, err
	}
	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}
	return nil, errors.New("invalid token")
}
