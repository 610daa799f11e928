package tokens

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/Skotchmaster/food_delivery/internal/domain"
)

// AccessClaims is the fixed claim layout of an access token:
// {sub: email, uid, role, exp}.
type AccessClaims struct {
	UID  uint   `json:"uid"`
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Minter signs and verifies access tokens with one statically configured
// HMAC algorithm. It is safe for concurrent use.
type Minter struct {
	method jwt.SigningMethod
	secret []byte
	parser *jwt.Parser
	now    func() time.Time
}

func NewMinter(secret []byte, alg string) (*Minter, error) {
	if len(secret) == 0 {
		return nil, errors.New("tokens: empty signing secret")
	}
	method, ok := jwt.GetSigningMethod(alg).(*jwt.SigningMethodHMAC)
	if !ok {
		return nil, fmt.Errorf("tokens: unsupported signing algorithm %q", alg)
	}

	m := &Minter{
		method: method,
		secret: append([]byte(nil), secret...),
		now:    func() time.Time { return time.Now().UTC() },
	}
	m.parser = jwt.NewParser(
		jwt.WithValidMethods([]string{method.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(func() time.Time { return m.now() }),
	)
	return m, nil
}

func (m *Minter) Algorithm() string { return m.method.Alg() }

// Mint signs {sub, uid, role, exp = now + ttl} and returns the token with its expiry.
func (m *Minter) Mint(subject string, userID uint, role string, ttl time.Duration) (string, time.Time, error) {
	if subject == "" || userID == 0 || role == "" {
		return "", time.Time{}, errors.New("tokens: subject, uid and role are required")
	}

	exp := m.now().Add(ttl)
	claims := AccessClaims{
		UID:  userID,
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}

	signed, err := jwt.NewWithClaims(m.method, claims).SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("tokens: sign access token: %w", err)
	}
	return signed, exp, nil
}

// Verify checks signature, algorithm, expiry and required claims.
// Every failure wraps domain.ErrInvalidToken.
func (m *Minter) Verify(token string) (*AccessClaims, error) {
	if token == "" {
		return nil, domain.ErrInvalidToken
	}

	var claims AccessClaims
	tkn, err := m.parser.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != m.method.Alg() {
			return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return m.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidToken, err)
	}
	if !tkn.Valid {
		return nil, domain.ErrInvalidToken
	}

	switch {
	case claims.Subject == "":
		return nil, fmt.Errorf("%w: missing sub", domain.ErrInvalidToken)
	case claims.UID == 0:
		return nil, fmt.Errorf("%w: missing uid", domain.ErrInvalidToken)
	case claims.Role == "":
		return nil, fmt.Errorf("%w: missing role", domain.ErrInvalidToken)
	}
	return &claims, nil
}
