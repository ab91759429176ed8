package seed

import (
	"context"
	"errors"
	"fmt"

	"github.com/sandeepkv93/inventory-crud-api/internal/repository"
	"github.com/sandeepkv93/inventory-crud-api/internal/service"
)

type ProductSeed struct {
	ProductCode     string
	Name            string
	Price           float64
	ProductQuantity int
}

type UserSeed struct {
	Username string
	Email    string
	Password string
}

type Plan struct {
	Products []ProductSeed
	Users    []UserSeed
}

// DefaultPlan is the sample data set used for local development.
func DefaultPlan(userPassword string) Plan {
	return Plan{
		Products: []ProductSeed{
			{ProductCode: "SKU-1001", Name: "Wireless Mouse", Price: 24.99, ProductQuantity: 150},
			{ProductCode: "SKU-1002", Name: "Mechanical Keyboard", Price: 89.5, ProductQuantity: 40},
			{ProductCode: "SKU-1003", Name: "USB-C Hub", Price: 39, ProductQuantity: 75},
			{ProductCode: "SKU-1004", Name: "27in Monitor", Price: 249.99, ProductQuantity: 12},
			{ProductCode: "SKU-1005", Name: "Laptop Stand", Price: 0, ProductQuantity: 0},
		},
		Users: []UserSeed{
			{Username: "alice", Email: "alice@example.com", Password: userPassword},
			{Username: "bob", Email: "bob@example.com", Password: userPassword},
		},
	}
}

func (p Plan) Describe() []string {
	out := make([]string, 0, len(p.Products)+len(p.Users))
	for _, s := range p.Products {
		out = append(out, fmt.Sprintf("would create product %s (%s, price=%.2f, qty=%d)", s.ProductCode, s.Name, s.Price, s.ProductQuantity))
	}
	for _, u := range p.Users {
		out = append(out, fmt.Sprintf("would create user %s <%s>", u.Username, u.Email))
	}
	return out
}

// Apply inserts the plan through the service layer. Products whose code
// already exists and users whose username is taken are skipped, so the
// command can be re-run.
func Apply(ctx context.Context, products service.ProductServiceInterface, users service.UserServiceInterface, plan Plan) ([]string, error) {
	details := make([]string, 0, len(plan.Products)+len(plan.Users))

	for _, s := range plan.Products {
		code, name, price, qty := s.ProductCode, s.Name, s.Price, s.ProductQuantity
		created, err := products.Create(ctx, service.ProductInput{
			ProductCode:     &code,
			Name:            &name,
			Price:           &price,
			ProductQuantity: &qty,
		})
		switch {
		case errors.Is(err, repository.ErrDuplicateProductCode):
			details = append(details, "skipped product "+code+" (already exists)")
		case err != nil:
			return details, fmt.Errorf("seed product %s: %w", code, err)
		default:
			details = append(details, fmt.Sprintf("created product %s id=%d", code, created.ID))
		}
	}

	existing, err := users.List(ctx)
	if err != nil {
		return details, fmt.Errorf("list users: %w", err)
	}
	taken := make(map[string]struct{}, len(existing))
	for _, u := range existing {
		taken[u.Username] = struct{}{}
	}
	for _, s := range plan.Users {
		if _, ok := taken[s.Username]; ok {
			details = append(details, "skipped user "+s.Username+" (already exists)")
			continue
		}
		username, email, password := s.Username, s.Email, s.Password
		created, err := users.Create(ctx, service.CreateUserInput{
			Username: &username,
			Email:    &email,
			Password: &password,
		})
		if err != nil {
			return details, fmt.Errorf("seed user %s: %w", username, err)
		}
		taken[username] = struct{}{}
		details = append(details, fmt.Sprintf("created user %s id=%d", username, created.ID))
	}
	return details, nil
}
