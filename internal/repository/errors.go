package repository

import "errors"

var (
	ErrProductNotFound      = errors.New("product not found")
	ErrUserNotFound         = errors.New("user not found")
	ErrDuplicateProductCode = errors.New("duplicate product code")
)
