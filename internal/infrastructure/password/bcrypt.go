package password

import (
	"errors"

	"github.com/DRSN-tech/storefront/pkg/e"
	"golang.org/x/crypto/bcrypt"
)

// BcryptHasher хэширует пароли через bcrypt.
type BcryptHasher struct {
	cost int
}

func NewBcryptHasher(cost int) *BcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}

	return &BcryptHasher{cost: cost}
}

func (h *BcryptHasher) Hash(password string) (string, error) {
	const op = "BcryptHasher.Hash"

	hash, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", e.Wrap(op, e.NewValidationError("password", "must be at most 72 bytes"))
		}
		return "", e.Wrap(op, err)
	}

	return string(hash), nil
}

func (h *BcryptHasher) Compare(hash, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}
