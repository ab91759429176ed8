package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/sandeepkv93/inventory-crud-api/internal/domain"
	"github.com/sandeepkv93/inventory-crud-api/internal/http/response"
	"github.com/sandeepkv93/inventory-crud-api/internal/observability"
	"github.com/sandeepkv93/inventory-crud-api/internal/repository"
	"github.com/sandeepkv93/inventory-crud-api/internal/service"
)

const (
	msgMissingRequiredFields = "Missing required fields"
	msgDuplicateProductCode  = "Product with this product_code already exists"
	msgProductNotFound       = "Product not found"
)

type productRequest struct {
	ProductCode     *string  `json:"product_code"`
	Name            *string  `json:"name"`
	Price           *float64 `json:"price"`
	ProductQuantity *int     `json:"product_quantity"`
}

func (b productRequest) input() service.ProductInput {
	return service.ProductInput{
		ProductCode:     b.ProductCode,
		Name:            b.Name,
		Price:           b.Price,
		ProductQuantity: b.ProductQuantity,
	}
}

type productEnvelope struct {
	Message string          `json:"message"`
	Product *domain.Product `json:"product"`
}

type ProductHandler struct {
	svc service.ProductServiceInterface
}

func NewProductHandler(svc service.ProductServiceInterface) *ProductHandler {
	return &ProductHandler{svc: svc}
}

func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	products, err := h.svc.List(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "list products failed", "error", err)
		response.Error(w, r, http.StatusInternalServerError, "Error getting products")
		return
	}
	response.JSON(w, r, http.StatusOK, products)
}

func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var body productRequest
	if err := decodeBody(r, &body); err != nil {
		writeBodyError(w, r, err)
		return
	}

	created, err := h.svc.Create(r.Context(), body.input())
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMissingRequiredFields):
			response.Error(w, r, http.StatusBadRequest, msgMissingRequiredFields)
		case errors.Is(err, service.ErrInvalidProductPrice), errors.Is(err, service.ErrInvalidProductQuantity):
			response.Error(w, r, http.StatusBadRequest, err.Error())
		case errors.Is(err, repository.ErrDuplicateProductCode):
			response.Error(w, r, http.StatusBadRequest, msgDuplicateProductCode)
		default:
			slog.ErrorContext(r.Context(), "create product failed", "error", err)
			response.Error(w, r, http.StatusInternalServerError, "Error inserting product")
		}
		return
	}

	observability.Audit(r, observability.AuditInput{
		EventName:  "product.create",
		TargetType: "product",
		TargetID:   formatID(created.ID),
		Action:     "create",
		Outcome:    "success",
		Reason:     "product_created",
	})
	response.JSON(w, r, http.StatusCreated, productEnvelope{Message: "Product created successfully", Product: created})
}

func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		response.Error(w, r, http.StatusNotFound, msgProductNotFound)
		return
	}
	var body productRequest
	if err := decodeBody(r, &body); err != nil {
		writeBodyError(w, r, err)
		return
	}

	updated, err := h.svc.Update(r.Context(), id, body.input())
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMissingRequiredFields):
			response.Error(w, r, http.StatusBadRequest, msgMissingRequiredFields)
		case errors.Is(err, service.ErrInvalidProductPrice), errors.Is(err, service.ErrInvalidProductQuantity):
			response.Error(w, r, http.StatusBadRequest, err.Error())
		case errors.Is(err, repository.ErrDuplicateProductCode):
			response.Error(w, r, http.StatusBadRequest, msgDuplicateProductCode)
		case errors.Is(err, repository.ErrProductNotFound):
			response.Error(w, r, http.StatusNotFound, msgProductNotFound)
		default:
			slog.ErrorContext(r.Context(), "update product failed", "error", err, "product_id", id)
			response.Error(w, r, http.StatusInternalServerError, "Error updating product")
		}
		return
	}

	observability.Audit(r, observability.AuditInput{
		EventName:  "product.update",
		TargetType: "product",
		TargetID:   formatID(id),
		Action:     "update",
		Outcome:    "success",
		Reason:     "product_updated",
	})
	response.JSON(w, r, http.StatusOK, productEnvelope{Message: "Product updated successfully", Product: updated})
}

func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		response.Error(w, r, http.StatusNotFound, msgProductNotFound)
		return
	}

	if err := h.svc.DeleteByID(r.Context(), id); err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			response.Error(w, r, http.StatusNotFound, msgProductNotFound)
			return
		}
		slog.ErrorContext(r.Context(), "delete product failed", "error", err, "product_id", id)
		response.Error(w, r, http.StatusInternalServerError, "Error deleting product")
		return
	}

	observability.Audit(r, observability.AuditInput{
		EventName:  "product.delete",
		TargetType: "product",
		TargetID:   formatID(id),
		Action:     "delete",
		Outcome:    "success",
		Reason:     "product_deleted",
	})
	response.Text(w, r, http.StatusOK, "Product deleted successfully")
}
