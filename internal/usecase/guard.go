package usecase

import (
	"context"
	"errors"

	"github.com/DRSN-tech/storefront/internal/auth"
	"github.com/DRSN-tech/storefront/internal/domain"
	"github.com/DRSN-tech/storefront/pkg/e"
)

// Caller - проверенный вызывающий. Profile заполняется только методами Authorize и RequireAdmin.
type Caller struct {
	Identity domain.Identity
	Profile  *domain.Profile
}

func (c *Caller) IsAdmin() bool {
	return c.Profile != nil && c.Profile.Role.IsAdmin()
}

// Guard - единая точка проверки прав.
// Личность берётся из токена сессии, роль перечитывается из профиля при каждом вызове.
type Guard struct {
	tokens   TokenManager
	revoked  TokenRevoker
	profiles ProfileRepository
}

func NewGuard(tokens TokenManager, revoked TokenRevoker, profiles ProfileRepository) *Guard {
	return &Guard{
		tokens:   tokens,
		revoked:  revoked,
		profiles: profiles,
	}
}

// Authenticate проверяет токен сессии из контекста.
func (g *Guard) Authenticate(ctx context.Context) (*Caller, error) {
	const op = "Guard.Authenticate"

	token, ok := auth.TokenFromContext(ctx)
	if !ok {
		return nil, e.Wrap(op, e.ErrUnauthenticated)
	}

	identity, err := g.tokens.Parse(token)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	revoked, err := g.revoked.IsTokenRevoked(ctx, identity.TokenID)
	if err != nil {
		return nil, e.Wrap(op, err)
	}
	if revoked {
		return nil, e.Wrap(op, e.ErrTokenRevoked)
	}

	return &Caller{Identity: *identity}, nil
}

// Authorize дополняет Authenticate профилем и ролью из хранилища.
func (g *Guard) Authorize(ctx context.Context) (*Caller, error) {
	const op = "Guard.Authorize"

	caller, err := g.Authenticate(ctx)
	if err != nil {
		return nil, err
	}

	profile, err := g.profiles.GetByID(ctx, caller.Identity.UserID)
	if err != nil {
		// Профиль удалён, а токен ещё жив
		if errors.Is(err, e.ErrNotFound) {
			return nil, e.Wrap(op, e.ErrUnauthenticated)
		}
		return nil, e.Wrap(op, err)
	}
	caller.Profile = profile

	return caller, nil
}

// RequireAdmin пропускает только администраторов.
func (g *Guard) RequireAdmin(ctx context.Context) (*Caller, error) {
	const op = "Guard.RequireAdmin"

	caller, err := g.Authorize(ctx)
	if err != nil {
		return nil, err
	}

	if !caller.IsAdmin() {
		return nil, e.Wrap(op, e.ErrForbidden)
	}

	return caller, nil
}

// Identify возвращает личность из токена, если он есть и действителен, иначе nil.
func (g *Guard) Identify(ctx context.Context) (*domain.Identity, error) {
	caller, err := g.Authenticate(ctx)
	if err != nil {
		if errors.Is(err, e.ErrUnauthenticated) {
			return nil, nil
		}
		return nil, err
	}

	return &caller.Identity, nil
}
