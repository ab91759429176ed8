package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/sandeepkv93/inventory-crud-api/internal/domain"
	"github.com/sandeepkv93/inventory-crud-api/internal/observability"
	"github.com/sandeepkv93/inventory-crud-api/internal/repository"
)

// ProductInput carries a create or update payload. Nil means the field was
// absent from the request, which is distinct from a zero price or quantity.
type ProductInput struct {
	ProductCode     *string
	Name            *string
	Price           *float64
	ProductQuantity *int
}

func (in ProductInput) toProduct() (domain.Product, error) {
	if in.ProductCode == nil || in.Name == nil || in.Price == nil || in.ProductQuantity == nil {
		return domain.Product{}, ErrMissingRequiredFields
	}
	if strings.TrimSpace(*in.ProductCode) == "" || strings.TrimSpace(*in.Name) == "" {
		return domain.Product{}, ErrMissingRequiredFields
	}
	if *in.Price < 0 {
		return domain.Product{}, ErrInvalidProductPrice
	}
	if *in.ProductQuantity < 0 {
		return domain.Product{}, ErrInvalidProductQuantity
	}
	return domain.Product{
		ProductCode:     *in.ProductCode,
		Name:            *in.Name,
		Price:           *in.Price,
		ProductQuantity: *in.ProductQuantity,
	}, nil
}

type ProductService struct {
	repo  repository.ProductRepository
	cache *ListCache
}

func NewProductService(repo repository.ProductRepository, cache *ListCache) *ProductService {
	return &ProductService{repo: repo, cache: cache}
}

func (s *ProductService) List(ctx context.Context) ([]domain.Product, error) {
	start := time.Now()
	outcome := "success"
	defer func() { recordProductOperation(ctx, "list", outcome, start) }()

	products, err := cachedList(ctx, s.cache, listNamespaceProducts, s.repo.List)
	if err != nil {
		outcome = "error"
		return nil, err
	}
	return products, nil
}

func (s *ProductService) Create(ctx context.Context, input ProductInput) (*domain.Product, error) {
	start := time.Now()
	outcome := "success"
	defer func() { recordProductOperation(ctx, "create", outcome, start) }()

	product, err := input.toProduct()
	if err != nil {
		outcome = "bad_request"
		return nil, err
	}
	if err := s.ensureCodeAvailable(ctx, product.ProductCode, 0); err != nil {
		outcome = productOutcome(err)
		return nil, err
	}
	if err := s.repo.Create(ctx, &product); err != nil {
		outcome = productOutcome(err)
		return nil, err
	}
	s.invalidate(ctx)
	return &product, nil
}

func (s *ProductService) Update(ctx context.Context, id uint, input ProductInput) (*domain.Product, error) {
	start := time.Now()
	outcome := "success"
	defer func() { recordProductOperation(ctx, "update", outcome, start) }()

	product, err := input.toProduct()
	if err != nil {
		outcome = "bad_request"
		return nil, err
	}
	product.ID = id
	if err := s.ensureCodeAvailable(ctx, product.ProductCode, id); err != nil {
		outcome = productOutcome(err)
		return nil, err
	}
	if err := s.repo.Update(ctx, &product); err != nil {
		outcome = productOutcome(err)
		return nil, err
	}
	s.invalidate(ctx)
	return &product, nil
}

func (s *ProductService) DeleteByID(ctx context.Context, id uint) error {
	start := time.Now()
	outcome := "success"
	defer func() { recordProductOperation(ctx, "delete", outcome, start) }()

	if err := s.repo.DeleteByID(ctx, id); err != nil {
		outcome = productOutcome(err)
		return err
	}
	s.invalidate(ctx)
	return nil
}

// ensureCodeAvailable rejects a code already held by another row. On an
// indexed schema a concurrent insert that passes this check still fails in
// the repository.
func (s *ProductService) ensureCodeAvailable(ctx context.Context, code string, selfID uint) error {
	exists, err := s.repo.ExistsByProductCode(ctx, code, selfID)
	if err != nil {
		return err
	}
	if exists {
		return repository.ErrDuplicateProductCode
	}
	return nil
}

func (s *ProductService) invalidate(ctx context.Context) {
	if err := s.cache.Invalidate(ctx, listNamespaceProducts); err != nil {
		slog.WarnContext(ctx, "product list cache invalidation failed", "error", err)
	}
}

func productOutcome(err error) string {
	switch {
	case errors.Is(err, repository.ErrProductNotFound):
		return "not_found"
	case errors.Is(err, repository.ErrDuplicateProductCode):
		return "conflict"
	default:
		return "error"
	}
}

func recordProductOperation(ctx context.Context, operation, outcome string, start time.Time) {
	observability.RecordProductOperation(ctx, operation, outcome)
	observability.RecordProductOperationDuration(ctx, operation, outcome, time.Since(start))
}
