package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/retailcrm/backend/internal/domain/integration"
	"github.com/retailcrm/backend/internal/infrastructure/persistence/models"
)

// SecretSealer seals API keys at rest. secret.Cipher implements it.
type SecretSealer interface {
	Seal(plaintext, additionalData string) (string, error)
	Open(value, additionalData string) (string, error)
}

// GormCredentialRepository implements integration.CredentialRepository using GORM
type GormCredentialRepository struct {
	db     *gorm.DB
	sealer SecretSealer
}

// Ensure GormCredentialRepository implements CredentialRepository
var _ integration.CredentialRepository = (*GormCredentialRepository)(nil)

// NewGormCredentialRepository creates a new GormCredentialRepository.
// A nil sealer stores API keys as given.
func NewGormCredentialRepository(db *gorm.DB, sealer SecretSealer) *GormCredentialRepository {
	return &GormCredentialRepository{db: db, sealer: sealer}
}

// FindByUserAndMarketplace finds the credential of a user for a marketplace
func (r *GormCredentialRepository) FindByUserAndMarketplace(ctx context.Context, userID uuid.UUID, marketplace integration.MarketplaceCode) (*integration.Credential, error) {
	var model models.CredentialModel
	if err := r.db.WithContext(ctx).Scopes(ownedByOn(userID, marketplace)).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, integration.ErrCredentialNotFound
		}
		return nil, err
	}
	return r.toDomain(&model)
}

// FindAllByUser lists every credential of a user ordered by marketplace
func (r *GormCredentialRepository) FindAllByUser(ctx context.Context, userID uuid.UUID) ([]integration.Credential, error) {
	var credentialModels []models.CredentialModel
	if err := r.db.WithContext(ctx).
		Scopes(ownedBy(userID)).
		Order("marketplace ASC").
		Find(&credentialModels).Error; err != nil {
		return nil, err
	}

	creds := make([]integration.Credential, 0, len(credentialModels))
	for i := range credentialModels {
		cred, err := r.toDomain(&credentialModels[i])
		if err != nil {
			return nil, err
		}
		creds = append(creds, *cred)
	}
	return creds, nil
}

// Save inserts the credential or replaces the access fields of the existing
// (user, marketplace) row
func (r *GormCredentialRepository) Save(ctx context.Context, cred *integration.Credential) error {
	var model models.CredentialModel
	model.FromDomain(cred)
	model.UpdatedAt = time.Now()

	sealed, err := r.seal(cred.APIKey, cred.UserID, cred.Marketplace)
	if err != nil {
		return err
	}
	model.APIKey = sealed

	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "marketplace"}},
		DoUpdates: clause.AssignmentColumns([]string{"api_key", "client_id", "warehouse_id", "updated_at"}),
	}).Create(&model).Error
}

// Delete removes the credential of a user for a marketplace
func (r *GormCredentialRepository) Delete(ctx context.Context, userID uuid.UUID, marketplace integration.MarketplaceCode) error {
	result := r.db.WithContext(ctx).Scopes(ownedByOn(userID, marketplace)).Delete(&models.CredentialModel{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return integration.ErrCredentialNotFound
	}
	return nil
}

func (r *GormCredentialRepository) toDomain(model *models.CredentialModel) (*integration.Credential, error) {
	cred := model.ToDomain()
	if r.sealer == nil {
		return cred, nil
	}
	key, err := r.sealer.Open(model.APIKey, sealAD(model.UserID, model.Marketplace))
	if err != nil {
		return nil, fmt.Errorf("open %s credential: %w", model.Marketplace, err)
	}
	cred.APIKey = key
	return cred, nil
}

func (r *GormCredentialRepository) seal(apiKey string, userID uuid.UUID, marketplace integration.MarketplaceCode) (string, error) {
	if r.sealer == nil {
		return apiKey, nil
	}
	sealed, err := r.sealer.Seal(apiKey, sealAD(userID, marketplace))
	if err != nil {
		return "", fmt.Errorf("seal %s credential: %w", marketplace, err)
	}
	return sealed, nil
}

// sealAD binds a sealed key to its owning row
func sealAD(userID uuid.UUID, marketplace integration.MarketplaceCode) string {
	return userID.String() + "/" + string(marketplace)
}
