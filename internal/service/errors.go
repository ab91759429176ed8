package service

import "errors"

var (
	ErrMissingRequiredFields  = errors.New("missing required fields")
	ErrInvalidProductPrice    = errors.New("price must be >= 0")
	ErrInvalidProductQuantity = errors.New("product_quantity must be >= 0")
)
