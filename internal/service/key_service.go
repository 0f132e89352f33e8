package service

import (
	"context"
	"strings"

	"github.com/samber/lo"
	"gorm.io/gorm"

	"gitolite-sync/internal/core/events"
	"gitolite-sync/internal/dto"
	"gitolite-sync/internal/model"
	"gitolite-sync/internal/pkg/gitolite"
	"gitolite-sync/internal/repository"
	pkgErrors "gitolite-sync/pkg/errors"
)

type KeyService interface {
	Create(ctx context.Context, userID int64, req *dto.CreateKeyRequest) (*dto.KeyResponse, error)
	List(userID int64) ([]*dto.KeyResponse, error)
	Delete(ctx context.Context, userID, keyID int64) error
}

type keyService struct {
	users     repository.UserRepository
	keys      repository.PublicKeyRepository
	publisher EventPublisher
}

func NewKeyService(db *gorm.DB, publisher EventPublisher) KeyService {
	return &keyService{
		users:     repository.NewUserRepository(db),
		keys:      repository.NewPublicKeyRepository(db),
		publisher: publisher,
	}
}

func toKeyResponse(k *model.GitolitePublicKey) *dto.KeyResponse {
	return &dto.KeyResponse{
		ID:          k.ID,
		UserID:      k.UserID,
		Title:       k.Title,
		Identifier:  k.Identifier,
		Fingerprint: k.Fingerprint,
	}
}

// Create 校验并保存公钥, 保存后同步到管理仓库
func (s *keyService) Create(ctx context.Context, userID int64, req *dto.CreateKeyRequest) (*dto.KeyResponse, error) {
	user, err := s.users.FindByID(userID)
	if err != nil {
		return nil, err
	}

	material := strings.TrimSpace(req.Key)
	fingerprint, err := gitolite.Fingerprint(material)
	if err != nil {
		return nil, pkgErrors.Wrap(pkgErrors.ErrInvalidSSHKey.Code, pkgErrors.ErrInvalidSSHKey.Message, err)
	}

	title := model.ValidTitle(req.Title)
	exists, err := s.keys.ExistsByUserAndTitle(user.ID, title)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, pkgErrors.ErrDuplicateKeyTitle
	}

	key := &model.GitolitePublicKey{
		UserID:      user.ID,
		Title:       title,
		Identifier:  user.GitoliteIdentifier(),
		Key:         material,
		Fingerprint: fingerprint,
	}
	if err := s.keys.Create(key); err != nil {
		return nil, err
	}

	if err := s.publisher.Publish(ctx, events.KeyAdded{Key: *key, Login: user.Login}); err != nil {
		return toKeyResponse(key), err
	}
	return toKeyResponse(key), nil
}

func (s *keyService) List(userID int64) ([]*dto.KeyResponse, error) {
	user, err := s.users.FindByID(userID, repository.WithOrderedPreload("PublicKeys", "id"))
	if err != nil {
		return nil, err
	}
	return lo.Map(user.PublicKeys, func(k model.GitolitePublicKey, _ int) *dto.KeyResponse { return toKeyResponse(&k) }), nil
}

// Delete 删除公钥, 删除后从管理仓库移除
func (s *keyService) Delete(ctx context.Context, userID, keyID int64) error {
	key, err := s.keys.FindByID(keyID)
	if err != nil {
		return err
	}
	if key.UserID != userID {
		return pkgErrors.ErrRecordNotFound
	}
	if err := s.keys.Delete(key.ID); err != nil {
		return err
	}
	return s.publisher.Publish(ctx, events.KeyRemoved{Ref: key.Ref()})
}
