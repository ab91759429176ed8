package database

import (
	"github.com/sandeepkv93/inventory-crud-api/internal/domain"

	"gorm.io/gorm"
)

// EnsureSchema creates the products and users tables from the model tags. The
// production schema is owned externally; this is used for sqlite and tests.
func EnsureSchema(db *gorm.DB) error {
	return db.AutoMigrate(&domain.Product{}, &domain.User{})
}
