package usecase

import (
	"context"

	"github.com/DRSN-tech/storefront/internal/domain"
)

type ImagesInfra interface {
	UploadImage(ctx context.Context, req *UploadImageReq) (*UploadImageRes, error)
	CleanupImages(keys []string)
}

// EventEncoder сериализует событие о новом заказе для брокера.
type EventEncoder interface {
	EncodeOrderCreated(event *OrderCreatedEvent) ([]byte, error)
}

type MessageProducer interface {
	WriteRawMessage(ctx context.Context, req *WriteRawMessageReq) error
}

type TokenManager interface {
	Issue(userID, email string) (*IssuedToken, error)
	Parse(token string) (*domain.Identity, error)
}

type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}

// TxManager выполняет fn в одной транзакции.
type TxManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

// SessionPublisher рассылает изменения сессий подписчикам.
type SessionPublisher interface {
	Publish(event domain.SessionEvent)
}
