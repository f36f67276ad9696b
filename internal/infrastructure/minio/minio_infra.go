package minio

import (
	"context"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/DRSN-tech/storefront/internal/cfg"
	"github.com/DRSN-tech/storefront/internal/domain"
	"github.com/DRSN-tech/storefront/internal/infrastructure"
	"github.com/DRSN-tech/storefront/internal/usecase"
	"github.com/DRSN-tech/storefront/pkg/e"
	"github.com/DRSN-tech/storefront/pkg/jitter"
	"github.com/DRSN-tech/storefront/pkg/logger"
	"github.com/google/uuid"
)

const (
	cleanupTimeout  = 30 * time.Second
	cleanupAttempts = 3
	cleanupBackoff  = time.Second
)

// MinioInfrastructure управляет загрузкой и очисткой изображений товаров в MinIO.
type MinioInfrastructure struct {
	minioRepo    usecase.ImageRepository
	cfg          *cfg.MinIOCfg
	logger       logger.Logger
	shutdownCtx  context.Context
	wg           sync.WaitGroup
	sem          chan struct{}
	cleanupDelay time.Duration
}

func NewMinioInfrastructure(minioRepo usecase.ImageRepository, cfg *cfg.MinIOCfg, logger logger.Logger, shutdownCtx context.Context) *MinioInfrastructure {
	limit := cfg.MaxConcurrent
	if limit <= 0 {
		limit = 1
	}

	return &MinioInfrastructure{
		minioRepo:    minioRepo,
		cfg:          cfg,
		logger:       logger,
		shutdownCtx:  shutdownCtx,
		sem:          make(chan struct{}, limit),
		cleanupDelay: cleanupBackoff,
	}
}

// UploadImage загружает изображение товара. Число одновременных загрузок ограничено семафором.
func (m *MinioInfrastructure) UploadImage(ctx context.Context, req *usecase.UploadImageReq) (*usecase.UploadImageRes, error) {
	const op = "MinioInfrastructure.UploadImage"

	image := req.Image
	if m.cfg.MaxImageSize > 0 && int64(len(image.Data)) > m.cfg.MaxImageSize {
		return nil, e.Wrap(op, e.NewValidationError("image", e.ErrFileTooLarge.Error()))
	}

	ext, err := infrastructure.GetExtensionFromMIME(image.MimeType)
	if err != nil {
		return nil, e.Wrap(op, e.NewValidationError("image", err.Error()))
	}

	select {
	case m.sem <- struct{}{}:
		defer func() { <-m.sem }()
	case <-ctx.Done():
		return nil, e.Wrap(op, ctx.Err())
	}

	imageID := uuid.NewString()
	objKey := infrastructure.ProductImageKey(req.ProductID, imageID, ext)
	size := int64(len(image.Data))
	mimeType := image.MimeType
	newImage := domain.NewImage(imageID, m.cfg.BucketName, objKey, image.Data, &size, &mimeType)

	key, err := m.minioRepo.Upload(ctx, newImage)
	if err != nil {
		return nil, e.Wrap(op, fmt.Errorf("upload %s failed: %w", image.Name, err))
	}

	return usecase.NewUploadImageRes(key, m.ObjectURL(key)), nil
}

// ObjectURL возвращает публичный адрес объекта.
func (m *MinioInfrastructure) ObjectURL(key string) string {
	return m.cfg.PublicURL + "/" + url.PathEscape(m.cfg.BucketName) + "/" + key
}

// CleanupImages запускает фоновую очистку указанных ключей MinIO
func (m *MinioInfrastructure) CleanupImages(keys []string) {
	if len(keys) == 0 {
		return
	}
	m.wg.Add(1)
	go m.cleanupUploadedKeys(keys)
}

// cleanupUploadedKeys удаляет указанные объекты из MinIO с экспоненциальной задержкой и jitter.
func (m *MinioInfrastructure) cleanupUploadedKeys(keys []string) {
	defer m.wg.Done()
	const op = "MinioInfrastructure.cleanupUploadedKeys"
	m.logger.Infof("%s: Cleaning up %d uploaded keys", op, len(keys))

	ctx, cancel := context.WithTimeout(m.shutdownCtx, cleanupTimeout)
	defer cancel()

	for _, key := range keys {
		for attempt := 0; attempt < cleanupAttempts; attempt++ {
			err := m.minioRepo.Delete(ctx, key)
			if err == nil {
				break
			}

			if ctx.Err() != nil {
				m.logger.Warnf("cleanup interrupted by shutdown, key=%v", key)
				return
			}

			if attempt == cleanupAttempts-1 {
				m.logger.Errorf(err, "%s: giving up on key=%v", op, key)
				break
			}

			delay := jitter.ExponentialBackoff(m.cleanupDelay, cleanupTimeout, attempt, jitter.DefaultJitter)
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				m.logger.Warnf("cleanup interrupted by shutdown during backoff, key=%v", key)
				return
			}
		}
	}
}

// WaitForCleanup ожидает завершения всех фоновых задач очистки с учётом таймаута завершения приложения.
func (m *MinioInfrastructure) WaitForCleanup(shutdownTimeoutCtx context.Context) error {
	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-shutdownTimeoutCtx.Done():
		return fmt.Errorf("minio cleanup timeout during shutdown: %w", shutdownTimeoutCtx.Err())
	}
}
