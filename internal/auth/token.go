package auth

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// EnvAuthSecret names the environment variable holding the HS256 signing
// secret. The secret is read once and cached for the process lifetime.
const EnvAuthSecret = "ROADWATCH_AUTH_SECRET"

const minSecretLen = 32

var (
	secretOnce sync.Once
	secretVal  []byte
	secretErr  error
)

func signingSecret() ([]byte, error) {
	secretOnce.Do(func() {
		raw := strings.TrimSpace(os.Getenv(EnvAuthSecret))
		if raw == "" {
			secretErr = fmt.Errorf("%s is not set", EnvAuthSecret)
			return
		}
		if len(raw) < minSecretLen {
			secretErr = fmt.Errorf("%s must be at least %d bytes", EnvAuthSecret, minSecretLen)
			return
		}
		secretVal = []byte(raw)
	})
	return secretVal, secretErr
}

// ResetSecretForTests clears the cached secret so tests can swap the
// environment variable between cases.
func ResetSecretForTests() {
	secretOnce = sync.Once{}
	secretVal = nil
	secretErr = nil
}

// Claims is the JWT payload for authority sessions.
type Claims struct {
	Roles []string `json:"roles,omitempty"`
	jwt.RegisteredClaims
}

// GenerateToken mints a signed HS256 token for the given user.
func GenerateToken(userID string, roles []string, ttl time.Duration) (string, time.Time, error) {
	secret, err := signingSecret()
	if err != nil {
		return "", time.Time{}, err
	}
	if userID == "" {
		return "", time.Time{}, errors.New("user id is empty")
	}
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}

	now := time.Now().UTC()
	expiresAt := now.Add(ttl)
	claims := Claims{
		Roles: roles,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// ParseToken verifies the signature and standard claims of a session token.
func ParseToken(raw string) (Claims, error) {
	secret, err := signingSecret()
	if err != nil {
		return Claims{}, err
	}

	var claims Claims
	_, err = jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		return Claims{}, fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}
	if claims.Subject == "" {
		return Claims{}, fmt.Errorf("%w: token has no subject", ErrUnauthorized)
	}
	return claims, nil
}
