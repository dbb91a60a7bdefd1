package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	TypeAccess = "access"
	TypePoll   = "poll"
)

var ErrTokenMismatch = errors.New("token does not belong to this order")

// Claims represents JWT claims structure
type Claims struct {
	UserID  string `json:"user_id,omitempty"`
	Role    string `json:"role,omitempty"`
	OrderID string `json:"order_id,omitempty"`
	Type    string `json:"type"` // "access" or "poll"
	jwt.RegisteredClaims
}

// Manager handles JWT operations
type Manager struct {
	secret    string
	accessTTL time.Duration
	pollTTL   time.Duration
	now       func() time.Time
}

// NewManager creates new JWT manager
func NewManager(secret string, accessTTL, pollTTL time.Duration) *Manager {
	return &Manager{
		secret:    secret,
		accessTTL: accessTTL,
		pollTTL:   pollTTL,
		now:       time.Now,
	}
}

// GenerateAccessToken issues a bearer token for the admin API
func (m *Manager) GenerateAccessToken(userID, role string) (string, error) {
	return m.sign(Claims{
		UserID: userID,
		Role:   role,
		Type:   TypeAccess,
	}, m.accessTTL)
}

// GeneratePollToken issues the order-scoped token the pay page sends with
// every status poll
func (m *Manager) GeneratePollToken(orderID string) (string, error) {
	return m.sign(Claims{
		OrderID: orderID,
		Type:    TypePoll,
	}, m.pollTTL)
}

func (m *Manager) sign(claims Claims, ttl time.Duration) (string, error) {
	now := m.now()
	claims.RegisteredClaims = jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		IssuedAt:  jwt.NewNumericDate(now),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(m.secret))
}

// ValidateToken validates and parses token
func (m *Manager) ValidateToken(tokenString string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(m.secret), nil
	}, jwt.WithTimeFunc(m.now))
	if err != nil {
		return nil, err
	}

	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	return claims, nil
}

// ValidateAccessToken validates access token specifically
func (m *Manager) ValidateAccessToken(tokenString string) (*Claims, error) {
	claims, err := m.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}

	if claims.Type != TypeAccess {
		return nil, fmt.Errorf("invalid token type: expected access, got %s", claims.Type)
	}

	return claims, nil
}

// ValidatePollToken checks that tokenString is a live poll token issued for orderID
func (m *Manager) ValidatePollToken(tokenString, orderID string) error {
	claims, err := m.ValidateToken(tokenString)
	if err != nil {
		return err
	}

	if claims.Type != TypePoll {
		return fmt.Errorf("invalid token type: expected poll, got %s", claims.Type)
	}
	if claims.OrderID != orderID {
		return ErrTokenMismatch
	}

	return nil
}
