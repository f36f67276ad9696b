package token

import (
	"fmt"
	"time"

	"github.com/DRSN-tech/storefront/internal/cfg"
	"github.com/DRSN-tech/storefront/internal/domain"
	"github.com/DRSN-tech/storefront/internal/usecase"
	"github.com/DRSN-tech/storefront/pkg/e"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// JWTManager выдаёт и проверяет токены сессии HS256.
// Роль в токен не попадает, она читается из профиля при каждом вызове.
type JWTManager struct {
	secret []byte
	ttl    time.Duration
	issuer string
	now    func() time.Time
}

func NewJWTManager(cfg *cfg.AuthCfg) *JWTManager {
	return &JWTManager{
		secret: []byte(cfg.JWTSecret),
		ttl:    cfg.TokenTTL,
		issuer: cfg.Issuer,
		now:    time.Now,
	}
}

func (m *JWTManager) Issue(userID, email string) (*usecase.IssuedToken, error) {
	const op = "JWTManager.Issue"

	now := m.now().UTC()
	identity := domain.Identity{
		UserID:    userID,
		Email:     email,
		TokenID:   uuid.NewString(),
		ExpiresAt: now.Add(m.ttl).Truncate(time.Second),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ID:        identity.TokenID,
			Issuer:    m.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(identity.ExpiresAt),
		},
	})

	signed, err := token.SignedString(m.secret)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return &usecase.IssuedToken{Token: signed, Identity: identity}, nil
}

// Parse проверяет подпись, алгоритм, издателя и срок действия токена.
func (m *JWTManager) Parse(raw string) (*domain.Identity, error) {
	const op = "JWTManager.Parse"

	var c claims
	_, err := jwt.ParseWithClaims(raw, &c, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(m.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %v", op, e.ErrInvalidToken, err)
	}

	if c.Subject == "" || c.ID == "" {
		return nil, e.Wrap(op, e.ErrInvalidToken)
	}

	return &domain.Identity{
		UserID:    c.Subject,
		Email:     c.Email,
		TokenID:   c.ID,
		ExpiresAt: c.ExpiresAt.Time,
	}, nil
}
