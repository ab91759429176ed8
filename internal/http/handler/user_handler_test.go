package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/sandeepkv93/inventory-crud-api/internal/domain"
	"github.com/sandeepkv93/inventory-crud-api/internal/repository"
	"github.com/sandeepkv93/inventory-crud-api/internal/service"
	servicegomock "github.com/sandeepkv93/inventory-crud-api/internal/service/gomock"
	"go.uber.org/mock/gomock"
)

func newUserRouterForTest(svc service.UserServiceInterface) http.Handler {
	h := NewUserHandler(svc)
	r := chi.NewRouter()
	r.Get("/users", h.List)
	r.Post("/users", h.Create)
	r.Get("/users/{id}", h.GetByID)
	r.Delete("/users/{id}", h.Delete)
	return r
}

func TestUserHandlerListNeverExposesPassword(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc := servicegomock.NewMockUserServiceInterface(ctrl)
	svc.EXPECT().List(gomock.Any()).Return([]domain.User{{ID: 1, Username: "ada", Email: "ada@example.com", PasswordHash: "$argon2id$secret"}}, nil)

	rr := doRequest(t, newUserRouterForTest(svc), http.MethodGet, "/users", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if strings.Contains(rr.Body.String(), "password") || strings.Contains(rr.Body.String(), "argon2") {
		t.Fatalf("password leaked: %s", rr.Body.String())
	}
	var got []map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(got) != 1 || len(got[0]) != 3 || got[0]["username"] != "ada" {
		t.Fatalf("unexpected users: %v", got)
	}
}

func TestUserHandlerGetByID(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc := servicegomock.NewMockUserServiceInterface(ctrl)
	svc.EXPECT().GetByID(gomock.Any(), uint(7)).Return(&domain.User{ID: 7, Username: "ada", Email: "ada@example.com", PasswordHash: "h"}, nil)
	svc.EXPECT().GetByID(gomock.Any(), uint(8)).Return(nil, repository.ErrUserNotFound)
	svc.EXPECT().GetByID(gomock.Any(), uint(9)).Return(nil, errors.New("db down"))
	h := newUserRouterForTest(svc)

	rr := doRequest(t, h, http.MethodGet, "/users/7", "")
	if rr.Code != http.StatusOK || rr.Body.String() != `{"id":7,"username":"ada","email":"ada@example.com"}` {
		t.Fatalf("unexpected response %d %s", rr.Code, rr.Body.String())
	}
	rr = doRequest(t, h, http.MethodGet, "/users/8", "")
	if rr.Code != http.StatusNotFound || rr.Body.String() != "User not found" {
		t.Fatalf("expected 404, got %d %q", rr.Code, rr.Body.String())
	}
	rr = doRequest(t, h, http.MethodGet, "/users/9", "")
	if rr.Code != http.StatusInternalServerError || rr.Body.String() != "Error getting user" {
		t.Fatalf("expected 500, got %d %q", rr.Code, rr.Body.String())
	}
	rr = doRequest(t, h, http.MethodGet, "/users/x", "")
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for malformed id, got %d", rr.Code)
	}
}

func TestUserHandlerCreate(t *testing.T) {
	t.Run("created", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		svc := servicegomock.NewMockUserServiceInterface(ctrl)
		svc.EXPECT().Create(gomock.Any(), gomock.Any()).Return(&domain.User{ID: 3, Username: "ada", Email: "ada@example.com"}, nil)

		rr := doRequest(t, newUserRouterForTest(svc), http.MethodPost, "/users", `{"username":"ada","email":"ada@example.com","password":"pw"}`)
		if rr.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d", rr.Code)
		}
		want := `{"message":"User created successfully","user":{"id":3,"username":"ada","email":"ada@example.com"}}`
		if rr.Body.String() != want {
			t.Fatalf("unexpected body %s", rr.Body.String())
		}
	})

	t.Run("missing fields", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		svc := servicegomock.NewMockUserServiceInterface(ctrl)
		svc.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil, service.ErrMissingRequiredFields)

		rr := doRequest(t, newUserRouterForTest(svc), http.MethodPost, "/users", `{"username":"ada"}`)
		if rr.Code != http.StatusBadRequest || rr.Body.String() != "Missing required fields" {
			t.Fatalf("expected 400, got %d %q", rr.Code, rr.Body.String())
		}
	})

	t.Run("db error", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		svc := servicegomock.NewMockUserServiceInterface(ctrl)
		svc.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil, errors.New("db down"))

		rr := doRequest(t, newUserRouterForTest(svc), http.MethodPost, "/users", `{"username":"a","email":"b","password":"c"}`)
		if rr.Code != http.StatusInternalServerError || rr.Body.String() != "Error inserting user" {
			t.Fatalf("expected 500, got %d %q", rr.Code, rr.Body.String())
		}
	})
}

func TestUserHandlerDelete(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc := servicegomock.NewMockUserServiceInterface(ctrl)
	svc.EXPECT().DeleteByID(gomock.Any(), uint(1)).Return(nil)
	svc.EXPECT().DeleteByID(gomock.Any(), uint(2)).Return(repository.ErrUserNotFound)
	h := newUserRouterForTest(svc)

	rr := doRequest(t, h, http.MethodDelete, "/users/1", "")
	if rr.Code != http.StatusOK || rr.Body.String() != "User deleted successfully" {
		t.Fatalf("expected 200, got %d %q", rr.Code, rr.Body.String())
	}
	rr = doRequest(t, h, http.MethodDelete, "/users/2", "")
	if rr.Code != http.StatusNotFound || rr.Body.String() != "User not found" {
		t.Fatalf("expected 404, got %d %q", rr.Code, rr.Body.String())
	}
}
