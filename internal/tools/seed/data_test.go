package seed

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/sandeepkv93/inventory-crud-api/internal/config"
	"github.com/sandeepkv93/inventory-crud-api/internal/database"
	"github.com/sandeepkv93/inventory-crud-api/internal/repository"
	"github.com/sandeepkv93/inventory-crud-api/internal/security"
	"github.com/sandeepkv93/inventory-crud-api/internal/service"
	servicegomock "github.com/sandeepkv93/inventory-crud-api/internal/service/gomock"
	"go.uber.org/mock/gomock"
)

func newServicesForTest(t *testing.T) (*service.ProductService, *service.UserService) {
	t.Helper()
	db, err := database.Open(&config.Config{DBDriver: config.DriverSQLite, DBName: "file::memory:"})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = database.Close(db) })
	if err := database.EnsureSchema(db); err != nil {
		t.Fatalf("ensure schema: %v", err)
	}
	hasher := security.NewPasswordHasher(security.Argon2Params{Time: 1, Memory: 1024, Threads: 1, KeyLen: 16, SaltLen: 8})
	return service.NewProductService(repository.NewProductRepository(db), nil),
		service.NewUserService(repository.NewUserRepository(db), hasher, nil)
}

func TestApplyIsIdempotent(t *testing.T) {
	products, users := newServicesForTest(t)
	ctx := context.Background()
	plan := DefaultPlan("pw")

	details, err := Apply(ctx, products, users, plan)
	if err != nil {
		t.Fatalf("first apply: %v", err)
	}
	if len(details) != len(plan.Products)+len(plan.Users) {
		t.Fatalf("unexpected details: %v", details)
	}
	for _, d := range details {
		if !strings.HasPrefix(d, "created ") {
			t.Fatalf("expected only creations on first run, got %q", d)
		}
	}

	details, err = Apply(ctx, products, users, plan)
	if err != nil {
		t.Fatalf("second apply: %v", err)
	}
	for _, d := range details {
		if !strings.HasPrefix(d, "skipped ") {
			t.Fatalf("expected only skips on second run, got %q", d)
		}
	}

	listed, err := products.List(ctx)
	if err != nil || len(listed) != len(plan.Products) {
		t.Fatalf("expected %d products, got %d err=%v", len(plan.Products), len(listed), err)
	}
	listedUsers, err := users.List(ctx)
	if err != nil || len(listedUsers) != len(plan.Users) {
		t.Fatalf("expected %d users, got %d err=%v", len(plan.Users), len(listedUsers), err)
	}
}

func TestApplyStopsOnProductError(t *testing.T) {
	ctrl := gomock.NewController(t)
	products := servicegomock.NewMockProductServiceInterface(ctrl)
	users := servicegomock.NewMockUserServiceInterface(ctrl)
	products.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil, errors.New("db down"))

	_, err := Apply(context.Background(), products, users, DefaultPlan("pw"))
	if err == nil || !strings.Contains(err.Error(), "SKU-1001") {
		t.Fatalf("expected wrapped product error, got %v", err)
	}
}

func TestApplyStopsOnUserListError(t *testing.T) {
	ctrl := gomock.NewController(t)
	products := servicegomock.NewMockProductServiceInterface(ctrl)
	users := servicegomock.NewMockUserServiceInterface(ctrl)
	users.EXPECT().List(gomock.Any()).Return(nil, errors.New("db down"))

	_, err := Apply(context.Background(), products, users, Plan{Users: DefaultPlan("pw").Users})
	if err == nil {
		t.Fatal("expected list error")
	}
}

func TestPlanDescribe(t *testing.T) {
	plan := DefaultPlan("pw")
	lines := plan.Describe()
	if len(lines) != len(plan.Products)+len(plan.Users) {
		t.Fatalf("unexpected line count %d", len(lines))
	}
	for _, l := range lines {
		if strings.Contains(l, "pw") {
			t.Fatalf("password leaked into dry-run output: %q", l)
		}
	}
	if !strings.Contains(lines[0], "SKU-1001") {
		t.Fatalf("unexpected first line %q", lines[0])
	}
}
