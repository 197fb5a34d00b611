package persistence

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/condoledger/backend/internal/domain/billing"
	"github.com/condoledger/backend/internal/infrastructure/persistence/models"
)

// GormPropertyDirectory implements PropertyDirectory using GORM. It reads the
// property snapshots maintained by the administration side.
type GormPropertyDirectory struct {
	db *gorm.DB
}

// NewGormPropertyDirectory creates a new GormPropertyDirectory
func NewGormPropertyDirectory(db *gorm.DB) *GormPropertyDirectory {
	return &GormPropertyDirectory{db: db}
}

func (r *GormPropertyDirectory) conn(ctx context.Context) *gorm.DB {
	return txFromContext(ctx, r.db).WithContext(ctx)
}

// ListByCondominium lists all properties of a condominium
func (r *GormPropertyDirectory) ListByCondominium(ctx context.Context, tenantID, condominiumID uuid.UUID) ([]billing.Property, error) {
	var propertyModels []models.PropertyModel
	if err := r.conn(ctx).
		Where("tenant_id = ? AND condominium_id = ?", tenantID, condominiumID).
		Order("code ASC").
		Find(&propertyModels).Error; err != nil {
		return nil, err
	}

	properties := make([]billing.Property, 0, len(propertyModels))
	for _, model := range propertyModels {
		property, err := model.ToDomain()
		if err != nil {
			return nil, err
		}
		properties = append(properties, property)
	}
	return properties, nil
}

// Ensure GormPropertyDirectory implements PropertyDirectory
var _ billing.PropertyDirectory = (*GormPropertyDirectory)(nil)
