package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/sandeepkv93/inventory-crud-api/internal/domain"
	"github.com/sandeepkv93/inventory-crud-api/internal/observability"
)

//go:generate mockgen -destination=gomock/mock_repositories.go -package=gomock github.com/sandeepkv93/inventory-crud-api/internal/repository ProductRepository,UserRepository

type ProductRepository interface {
	List(ctx context.Context) ([]domain.Product, error)
	Create(ctx context.Context, product *domain.Product) error
	Update(ctx context.Context, product *domain.Product) error
	DeleteByID(ctx context.Context, id uint) error
	ExistsByProductCode(ctx context.Context, code string, excludeID uint) (bool, error)
}

type GormProductRepository struct{ db *gorm.DB }

func NewProductRepository(db *gorm.DB) ProductRepository {
	return &GormProductRepository{db: db}
}

func (r *GormProductRepository) List(ctx context.Context) ([]domain.Product, error) {
	products := make([]domain.Product, 0)
	if err := r.db.WithContext(ctx).Order("id asc").Find(&products).Error; err != nil {
		observability.RecordRepositoryOperation(ctx, "product", "list", "error")
		return nil, err
	}
	observability.RecordRepositoryOperation(ctx, "product", "list", "success")
	return products, nil
}

// ExistsByProductCode reports whether another row already uses code. A
// non-zero excludeID skips that row so an update may keep its own code.
func (r *GormProductRepository) ExistsByProductCode(ctx context.Context, code string, excludeID uint) (bool, error) {
	q := r.db.WithContext(ctx).Model(&domain.Product{}).Where("product_code = ?", code)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	var ids []uint
	if err := q.Limit(1).Pluck("id", &ids).Error; err != nil {
		observability.RecordRepositoryOperation(ctx, "product", "exists_by_code", "error")
		return false, err
	}
	observability.RecordRepositoryOperation(ctx, "product", "exists_by_code", "success")
	return len(ids) > 0, nil
}

// Create inserts product and fills in its generated id. The unique index on
// product_code makes concurrent inserts of the same code fail with
// ErrDuplicateProductCode.
func (r *GormProductRepository) Create(ctx context.Context, product *domain.Product) error {
	if err := r.db.WithContext(ctx).Create(product).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			observability.RecordRepositoryOperation(ctx, "product", "create", "conflict")
			return ErrDuplicateProductCode
		}
		observability.RecordRepositoryOperation(ctx, "product", "create", "error")
		return err
	}
	observability.RecordRepositoryOperation(ctx, "product", "create", "success")
	return nil
}

// Update overwrites all four columns of the row identified by product.ID.
func (r *GormProductRepository) Update(ctx context.Context, product *domain.Product) error {
	res := r.db.WithContext(ctx).Model(&domain.Product{}).Where("id = ?", product.ID).Updates(map[string]any{
		"product_code":     product.ProductCode,
		"name":             product.Name,
		"price":            product.Price,
		"product_quantity": product.ProductQuantity,
	})
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			observability.RecordRepositoryOperation(ctx, "product", "update", "conflict")
			return ErrDuplicateProductCode
		}
		observability.RecordRepositoryOperation(ctx, "product", "update", "error")
		return res.Error
	}
	if res.RowsAffected == 0 {
		observability.RecordRepositoryOperation(ctx, "product", "update", "not_found")
		return ErrProductNotFound
	}
	observability.RecordRepositoryOperation(ctx, "product", "update", "success")
	return nil
}

func (r *GormProductRepository) DeleteByID(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&domain.Product{}, id)
	if res.Error != nil {
		observability.RecordRepositoryOperation(ctx, "product", "delete_by_id", "error")
		return res.Error
	}
	if res.RowsAffected == 0 {
		observability.RecordRepositoryOperation(ctx, "product", "delete_by_id", "not_found")
		return ErrProductNotFound
	}
	observability.RecordRepositoryOperation(ctx, "product", "delete_by_id", "success")
	return nil
}
