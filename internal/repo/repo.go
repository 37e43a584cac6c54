package repo

import (
	"gorm.io/gorm"
)

// GormRepo is the single data-access point for the service. Every method is
// request-scoped; the store's row-level guarantees provide atomicity.
type GormRepo struct {
	DB *gorm.DB
}

func New(db *gorm.DB) *GormRepo {
	return &GormRepo{DB: db}
}
