package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/tuanvumaihuynh/retail-pos/internal/auth"
	"github.com/tuanvumaihuynh/retail-pos/internal/config"
	"github.com/tuanvumaihuynh/retail-pos/internal/log"
	"github.com/tuanvumaihuynh/retail-pos/internal/model"
	"github.com/tuanvumaihuynh/retail-pos/internal/repository"
	"github.com/tuanvumaihuynh/retail-pos/internal/storage/db"
)

func main() {
	if err := run(); err != nil {
		fmt.Printf("error running seed application: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	time.Local = time.UTC

	type Config struct {
		Log      config.Log
		Postgres config.Postgres
		Seed     config.Seed
	}
	cfg, err := config.New[Config]()
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}

	logger := log.NewSlogLogger(cfg.Log)

	pgxPool, err := db.NewPgxPool(ctx, cfg.Postgres)
	if err != nil {
		return fmt.Errorf("error creating pgx pool: %w", err)
	}
	defer pgxPool.Close()

	dbClient := db.NewClient(pgxPool)
	userRepo := repository.NewUserRepository(dbClient)
	productRepo := repository.NewProductRepository(dbClient)
	hasher := auth.NewPasswordHasher()

	admin, err := seedUser(ctx, userRepo, hasher, cfg.Seed.AdminName, cfg.Seed.AdminEmail, cfg.Seed.AdminPassword, model.RoleAdmin)
	if err != nil {
		return err
	}
	logger.InfoContext(ctx, "admin account ready", slog.String("email", admin.Email))

	staff, err := seedUser(ctx, userRepo, hasher, cfg.Seed.StaffName, cfg.Seed.StaffEmail, cfg.Seed.StaffPassword, model.RoleStaff)
	if err != nil {
		return err
	}
	logger.InfoContext(ctx, "staff account ready", slog.String("email", staff.Email))

	if cfg.Seed.Products {
		created, err := seedProducts(ctx, productRepo, admin.ID)
		if err != nil {
			return err
		}
		logger.InfoContext(ctx, "starter catalog ready", slog.Int("created", created))
	}

	return nil
}

// seedUser creates the account if its email is unused. Existing
// accounts are left untouched, so reruns are safe.
func seedUser(
	ctx context.Context,
	userRepo repository.UserRepository,
	hasher *auth.PasswordHasher,
	name, email, password string,
	role model.Role,
) (model.User, error) {
	existing, err := userRepo.GetUserByEmail(ctx, email)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return model.User{}, fmt.Errorf("get user by email: %w", err)
	}

	hash, err := hasher.Hash(password)
	if err != nil {
		return model.User{}, fmt.Errorf("hash password: %w", err)
	}

	id, err := uuid.NewV7()
	if err != nil {
		return model.User{}, fmt.Errorf("generate uuid v7: %w", err)
	}

	now := time.Now()
	user := model.User{
		ID:           id,
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := userRepo.CreateUser(ctx, user); err != nil {
		return model.User{}, fmt.Errorf("create user: %w", err)
	}

	return user, nil
}

type seedProduct struct {
	name        string
	description string
	category    model.Category
	price       float64
	stock       int
	imageURL    string
}

var starterCatalog = []seedProduct{
	{`MacBook Pro 16"`, "Apple M2 Pro chip, 16GB RAM, 512GB SSD", model.CategoryElectronics, 2499.99, 15, "https://images.unsplash.com/photo-1517336714731-489689fd1ca8?w=500"},
	{"Wireless Mouse Logitech MX", "Ergonomic wireless mouse with precision tracking", model.CategoryElectronics, 99.99, 50, "https://images.unsplash.com/photo-1527864550417-7fd91fc51a46?w=500"},
	{"Mechanical Keyboard RGB", "Cherry MX switches, RGB backlight", model.CategoryElectronics, 149.99, 30, "https://images.unsplash.com/photo-1587829741301-dc798b83add3?w=500"},
	{"Sony WH-1000XM5 Headphones", "Industry-leading noise cancellation", model.CategoryElectronics, 399.99, 25, "https://images.unsplash.com/photo-1505740420928-5e560c06d30e?w=500"},
	{"iPhone 15 Pro", "A17 Pro chip, titanium design, 256GB", model.CategoryElectronics, 1199.99, 20, "https://images.unsplash.com/photo-1511707171634-5f897ff02aa9?w=500"},
	{"Smart Watch Series 8", "Fitness tracking, heart rate monitor", model.CategoryElectronics, 449.99, 35, "https://images.unsplash.com/photo-1523275335684-37898b6baf30?w=500"},
	{"Bluetooth Speaker JBL", "Portable waterproof speaker", model.CategoryElectronics, 129.99, 40, "https://images.unsplash.com/photo-1608043152269-423dbba4e7e1?w=500"},
	{"Blue Cotton T-Shirt", "Premium cotton, comfortable fit", model.CategoryClothing, 29.99, 100, "https://images.unsplash.com/photo-1521572163474-6864f9cf17ab?w=500"},
	{"Slim Fit Jeans", "Classic blue denim jeans", model.CategoryClothing, 79.99, 75, "https://images.unsplash.com/photo-1542272604-787c3835535d?w=500"},
	{"Leather Jacket", "Genuine leather, classic style", model.CategoryClothing, 299.99, 20, "https://images.unsplash.com/photo-1551028719-00167b16eac5?w=500"},
	{"Running Shoes Nike", "Comfortable running shoes with air cushioning", model.CategoryClothing, 129.99, 60, "https://images.unsplash.com/photo-1542291026-7eec264c27ff?w=500"},
	{"JavaScript: The Definitive Guide", "Master the world's most-used programming language", model.CategoryBooks, 59.99, 40, "https://images.unsplash.com/photo-1544947950-fa07a98d237f?w=500"},
	{"React Cookbook", "Recipes for mastering React", model.CategoryBooks, 49.99, 35, "https://images.unsplash.com/photo-1512820790803-83ca734da794?w=500"},
	{"Artisan Coffee Beans", "Premium roasted coffee beans, 1kg", model.CategoryFood, 24.99, 80, "https://images.unsplash.com/photo-1511920170033-f8396924c348?w=500"},
	{"Dark Chocolate Bar", "70% cocoa, organic", model.CategoryFood, 4.99, 150, "https://images.unsplash.com/photo-1511381939415-e44015466834?w=500"},
	{"LEGO Star Wars Set", "Millennium Falcon building set, 1000+ pieces", model.CategoryToys, 159.99, 25, "https://images.unsplash.com/photo-1587654780291-39c9404d746b?w=500"},
	{"Puzzle 1000 Pieces", "Beautiful landscape puzzle", model.CategoryToys, 19.99, 45, "https://images.unsplash.com/photo-1559056199-641a0ac8b55e?w=500"},
	{"Canvas Backpack", "Durable canvas backpack for everyday use", model.CategoryOther, 49.99, 55, "https://images.unsplash.com/photo-1553062407-98eeb64c6a62?w=500"},
	{"Sunglasses Ray-Ban", "Classic aviator style, UV protection", model.CategoryOther, 189.99, 30, "https://images.unsplash.com/photo-1572635196237-14b3f281503f?w=500"},
	{"Stainless Steel Water Bottle", "Insulated, keeps drinks cold for 24 hours", model.CategoryOther, 34.99, 70, "https://images.unsplash.com/photo-1602143407151-7111542de6e8?w=500"},
}

// seedProducts inserts the starter catalog, skipping names that already
// exist so reruns don't duplicate products.
func seedProducts(ctx context.Context, productRepo repository.ProductRepository, createdBy uuid.UUID) (int, error) {
	existing, err := productRepo.ListProducts(ctx, repository.ListProductsParams{})
	if err != nil {
		return 0, fmt.Errorf("list products: %w", err)
	}

	existingNames := make(map[string]struct{}, len(existing))
	for _, product := range existing {
		existingNames[product.Name] = struct{}{}
	}

	created := 0
	for _, sp := range starterCatalog {
		if _, ok := existingNames[sp.name]; ok {
			continue
		}

		id, err := uuid.NewV7()
		if err != nil {
			return created, fmt.Errorf("generate uuid v7: %w", err)
		}

		now := time.Now()
		owner := createdBy
		product := model.Product{
			ID:                id,
			Name:              sp.name,
			Description:       sp.description,
			Category:          sp.category,
			Price:             sp.price,
			Stock:             sp.stock,
			LowStockThreshold: model.DefaultLowStockThreshold,
			IsActive:          true,
			ImageURL:          sp.imageURL,
			CreatedBy:         &owner,
			CreatedAt:         now,
			UpdatedAt:         now,
		}
		if err := productRepo.CreateProduct(ctx, product); err != nil {
			return created, fmt.Errorf("create product %q: %w", sp.name, err)
		}
		created++
	}

	return created, nil
}
