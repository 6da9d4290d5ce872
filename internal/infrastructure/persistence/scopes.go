package persistence

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/retailcrm/backend/internal/domain/integration"
)

// ownedBy restricts a query to the rows of one user
func ownedBy(userID uuid.UUID) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("user_id = ?", userID)
	}
}

// ownedByOn restricts a query to the rows of one user on one marketplace
func ownedByOn(userID uuid.UUID, marketplace integration.MarketplaceCode) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("user_id = ? AND marketplace = ?", userID, marketplace)
	}
}
