package usecases

import (
	"context"
	"crypto/rand"
	stderrors "errors"
	"fmt"

	"media-pipeline/internal/domain/entities"
	"media-pipeline/internal/domain/repositories"
	"media-pipeline/internal/pkg/config"
	consts "media-pipeline/pkg/constants"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ContentProtectionService interface {
	AddContentProtection(ctx context.Context, assetID string) error
}

type contentProtectionService struct {
	media      repositories.MediaPlatform
	publisher  repositories.MessagePublisher
	protection config.ProtectionConfig
	queues     config.QueueConfig
	logger     *zap.Logger
}

func NewContentProtectionService(media repositories.MediaPlatform, publisher repositories.MessagePublisher, protection config.ProtectionConfig, queues config.QueueConfig, logger *zap.Logger) ContentProtectionService {
	return &contentProtectionService{
		media:      media,
		publisher:  publisher,
		protection: protection,
		queues:     queues,
		logger:     logger,
	}
}

type protectionScheme struct {
	keyType        entities.ContentKeyType
	keyName        string
	authorization  *entities.Policy
	deliveryPolicy *entities.Policy
}

func (s *contentProtectionService) AddContentProtection(ctx context.Context, assetID string) error {
	log := s.logger.With(zap.String("assetId", assetID))

	asset, err := s.media.GetAsset(ctx, assetID)
	if stderrors.Is(err, repositories.ErrNotFound) {
		log.Warn("asset not found, nothing to protect")
		return nil
	}
	if err != nil {
		return err
	}

	// All policies are resolved before any key is created.
	schemes := []*protectionScheme{
		{keyType: entities.ContentKeyCommonEncryption, keyName: consts.CommonEncryptionKeyName},
		{keyType: entities.ContentKeyCommonEncryptionCbcs, keyName: consts.CommonEncryptionCbcsKeyName},
	}
	lookups := []struct {
		name string
		find func(context.Context, string) (*entities.Policy, error)
		dst  **entities.Policy
	}{
		{s.protection.CommonEncryptionAuthPolicy, s.media.FindAuthorizationPolicy, &schemes[0].authorization},
		{s.protection.CommonEncryptionDeliveryPolicy, s.media.FindDeliveryPolicy, &schemes[0].deliveryPolicy},
		{s.protection.CommonEncryptionCbcsAuthPolicy, s.media.FindAuthorizationPolicy, &schemes[1].authorization},
		{s.protection.CommonEncryptionCbcsDeliveryPolicy, s.media.FindDeliveryPolicy, &schemes[1].deliveryPolicy},
	}
	for _, l := range lookups {
		policy, err := l.find(ctx, l.name)
		if stderrors.Is(err, repositories.ErrNotFound) {
			log.Error("content protection policy not found, asset left unprotected", zap.String("policy", l.name))
			return nil
		}
		if err != nil {
			return err
		}
		*l.dst = policy
	}

	for _, scheme := range schemes {
		if err := s.applyScheme(ctx, asset, scheme); err != nil {
			return err
		}
	}

	if err := s.publisher.Publish(ctx, s.queues.Publish, []byte(asset.ID)); err != nil {
		return err
	}
	log.Info("content protection added")
	return nil
}

func (s *contentProtectionService) applyScheme(ctx context.Context, asset *entities.Asset, scheme *protectionScheme) error {
	key := make([]byte, consts.ContentKeySize)
	if _, err := rand.Read(key); err != nil {
		return fmt.Errorf("generate content key: %w", err)
	}

	created, err := s.media.CreateContentKey(ctx, entities.ContentKey{
		ID:      uuid.NewString(),
		Name:    scheme.keyName,
		Type:    scheme.keyType,
		Key:     key,
		AssetID: asset.ID,
	})
	if err != nil {
		return fmt.Errorf("create %s key: %w", scheme.keyType, err)
	}

	if err := s.media.SetKeyAuthorizationPolicy(ctx, created.ID, scheme.authorization.ID); err != nil {
		return fmt.Errorf("set %s authorization policy: %w", scheme.keyType, err)
	}
	if err := s.media.AttachDeliveryPolicy(ctx, asset.ID, scheme.deliveryPolicy.ID); err != nil {
		return fmt.Errorf("attach %s delivery policy: %w", scheme.keyType, err)
	}
	return nil
}
