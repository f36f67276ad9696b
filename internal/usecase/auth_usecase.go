package usecase

import (
	"context"
	"errors"
	"slices"
	"time"

	"github.com/DRSN-tech/storefront/internal/domain"
	"github.com/DRSN-tech/storefront/pkg/e"
	"github.com/DRSN-tech/storefront/pkg/logger"
)

// AuthUseCase реализует вход по email и паролю и управление сессиями.
type AuthUseCase struct {
	guard           *Guard
	userRepo        UserRepository
	profileRepo     ProfileRepository
	revoker         TokenRevoker
	tokens          TokenManager
	hasher          PasswordHasher
	txManager       TxManager
	sessions        SessionPublisher
	bootstrapAdmins []string
	logger          logger.Logger
}

func NewAuthUC(
	guard *Guard,
	userRepo UserRepository,
	profileRepo ProfileRepository,
	revoker TokenRevoker,
	tokens TokenManager,
	hasher PasswordHasher,
	txManager TxManager,
	sessions SessionPublisher,
	bootstrapAdmins []string,
	logger logger.Logger,
) *AuthUseCase {
	return &AuthUseCase{
		guard:           guard,
		userRepo:        userRepo,
		profileRepo:     profileRepo,
		revoker:         revoker,
		tokens:          tokens,
		hasher:          hasher,
		txManager:       txManager,
		sessions:        sessions,
		bootstrapAdmins: bootstrapAdmins,
		logger:          logger,
	}
}

// SignUp создаёт пользователя и его профиль в одной транзакции и сразу открывает сессию.
func (a *AuthUseCase) SignUp(ctx context.Context, req *SignUpReq) (*SessionRes, error) {
	const op = "AuthUseCase.SignUp"

	email, username, err := validateSignUp(req)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	hash, err := a.hasher.Hash(req.Password)
	if err != nil {
		return nil, e.Boundary(op, err)
	}

	role := domain.RoleUser
	if slices.Contains(a.bootstrapAdmins, email) {
		role = domain.RoleAdmin
	}

	var (
		user    *domain.User
		profile *domain.Profile
	)
	err = a.txManager.Do(ctx, func(ctx context.Context) error {
		user, err = a.userRepo.Create(ctx, domain.NewUser(email, hash))
		if err != nil {
			return err
		}

		profile, err = a.profileRepo.Create(ctx, &domain.Profile{
			ID:       user.ID,
			Username: username,
			Role:     role,
		})
		return err
	})
	if err != nil {
		return nil, e.Boundary(op, err)
	}

	a.logger.Infof("user %s signed up with role %s", user.ID, profile.Role)

	res, err := a.openSession(user, profile.Role)
	if err != nil {
		return nil, e.Boundary(op, err)
	}

	return res, nil
}

// SignIn проверяет пароль и выдаёт токен сессии.
func (a *AuthUseCase) SignIn(ctx context.Context, req *SignInReq) (*SessionRes, error) {
	const op = "AuthUseCase.SignIn"

	email, err := normalizeEmail(req.Email)
	if err != nil {
		return nil, e.Wrap(op, e.ErrInvalidCredentials)
	}

	user, err := a.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, e.ErrNotFound) {
			return nil, e.Wrap(op, e.ErrInvalidCredentials)
		}
		return nil, e.Boundary(op, err)
	}

	if err := a.hasher.Compare(user.PasswordHash, req.Password); err != nil {
		return nil, e.Wrap(op, e.ErrInvalidCredentials)
	}

	profile, err := a.profileRepo.GetByID(ctx, user.ID)
	if err != nil {
		return nil, e.Boundary(op, err)
	}

	res, err := a.openSession(user, profile.Role)
	if err != nil {
		return nil, e.Boundary(op, err)
	}

	return res, nil
}

// SignOut отзывает текущий токен до истечения его срока.
func (a *AuthUseCase) SignOut(ctx context.Context) error {
	const op = "AuthUseCase.SignOut"

	caller, err := a.guard.Authenticate(ctx)
	if err != nil {
		return e.Boundary(op, err)
	}

	ttl := time.Until(caller.Identity.ExpiresAt)
	if ttl > 0 {
		if err := a.revoker.RevokeToken(ctx, caller.Identity.TokenID, ttl); err != nil {
			return e.Boundary(op, err)
		}
	}

	a.sessions.Publish(domain.NewSessionEvent(domain.SessionSignedOut, caller.Identity))

	return nil
}

// CurrentSession возвращает личность текущей сессии или nil, если сессии нет.
func (a *AuthUseCase) CurrentSession(ctx context.Context) (*domain.Identity, error) {
	const op = "AuthUseCase.CurrentSession"

	identity, err := a.guard.Identify(ctx)
	if err != nil {
		return nil, e.Boundary(op, err)
	}

	return identity, nil
}

func (a *AuthUseCase) openSession(user *domain.User, role domain.Role) (*SessionRes, error) {
	issued, err := a.tokens.Issue(user.ID, user.Email)
	if err != nil {
		return nil, err
	}

	a.sessions.Publish(domain.NewSessionEvent(domain.SessionSignedIn, issued.Identity))

	return &SessionRes{
		Token:     issued.Token,
		ExpiresAt: issued.Identity.ExpiresAt,
		Identity:  issued.Identity,
		Role:      role,
	}, nil
}
