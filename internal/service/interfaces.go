package service

//go:generate mockgen -destination=gomock/mock_services.go -package=gomock github.com/sandeepkv93/inventory-crud-api/internal/service ProductServiceInterface,UserServiceInterface

import (
	"context"

	"github.com/sandeepkv93/inventory-crud-api/internal/domain"
)

type ProductServiceInterface interface {
	List(ctx context.Context) ([]domain.Product, error)
	Create(ctx context.Context, input ProductInput) (*domain.Product, error)
	Update(ctx context.Context, id uint, input ProductInput) (*domain.Product, error)
	DeleteByID(ctx context.Context, id uint) error
}

type UserServiceInterface interface {
	List(ctx context.Context) ([]domain.User, error)
	GetByID(ctx context.Context, id uint) (*domain.User, error)
	Create(ctx context.Context, input CreateUserInput) (*domain.User, error)
	DeleteByID(ctx context.Context, id uint) error
}

type PasswordHasher interface {
	Hash(password string) (string, error)
}
