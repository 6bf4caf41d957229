package seed

import (
	"context"
	"errors"
	"fmt"

	"shophub/internal/domain"
	"shophub/internal/repository"
	"shophub/internal/service"

	"github.com/samber/lo"
	"go.uber.org/zap"
)

const AdminEmail = "admin@shophub.com"

type account struct {
	email    string
	password string
	name     string
	role     domain.Role
	shopName *string
}

type category struct {
	name, slug, description, image string
}

type product struct {
	name, slug, short, long string
	price, compareAt        string
	category                string
	image                   string
	stock                   int
	featured                bool
}

var accounts = []account{
	{email: AdminEmail, password: "admin123", name: "Admin User", role: domain.RoleAdmin},
	{email: "seller@shophub.com", password: "seller123", name: "John's Electronics", role: domain.RoleSeller, shopName: lo.ToPtr("John's Electronics")},
	{email: "buyer@shophub.com", password: "buyer123", name: "Jane Doe", role: domain.RoleBuyer},
}

var categories = []category{
	{"Electronics", "electronics", "Latest gadgets and electronics", "https://images.unsplash.com/photo-1498049794561-7780e7231661?w=800&h=600&fit=crop"},
	{"Fashion", "fashion", "Trendy clothing and accessories", "https://images.unsplash.com/photo-1445205170230-053b83016050?w=800&h=600&fit=crop"},
	{"Home & Living", "home-living", "Everything for your home", "https://images.unsplash.com/photo-1484101403633-562f891dc89a?w=800&h=600&fit=crop"},
	{"Beauty & Health", "beauty-health", "Beauty and wellness products", "https://images.unsplash.com/photo-1596462502278-27bfdc403348?w=800&h=600&fit=crop"},
}

var products = []product{
	{
		name:      "Wireless Noise Cancelling Headphones",
		slug:      "wireless-noise-cancelling-headphones",
		short:     "Premium wireless headphones with active noise cancellation",
		long:      "Experience crystal-clear audio with our premium wireless headphones featuring advanced active noise cancellation technology. Perfect for music lovers, travelers, and professionals who demand the best sound quality.",
		price:     "299.99",
		compareAt: "399.99",
		category:  "electronics",
		image:     "https://images.unsplash.com/photo-1505740420928-5e560c06d30e?w=800&h=800&fit=crop",
		stock:     50,
		featured:  true,
	},
	{
		name:     "Smart Watch Pro",
		slug:     "smart-watch-pro",
		short:    "Advanced fitness tracking and notifications on your wrist",
		long:     "Stay connected and healthy with our Smart Watch Pro. Track your fitness goals, receive notifications, and monitor your health metrics all day long.",
		price:    "249.99",
		category: "electronics",
		image:    "https://images.unsplash.com/photo-1523275335684-37898b6baf30?w=800&h=800&fit=crop",
		stock:    30,
		featured: true,
	},
	{
		name:      "Designer Leather Backpack",
		slug:      "designer-leather-backpack",
		short:     "Handcrafted genuine leather backpack for professionals",
		long:      "Elevate your style with this premium handcrafted leather backpack. Perfect blend of sophistication and functionality for the modern professional.",
		price:     "189.99",
		compareAt: "249.99",
		category:  "fashion",
		image:     "https://images.unsplash.com/photo-1553062407-98eeb64c6a62?w=800&h=800&fit=crop",
		stock:     20,
		featured:  true,
	},
	{
		name:     "Minimalist Desk Lamp",
		slug:     "minimalist-desk-lamp",
		short:    "LED desk lamp with adjustable brightness and color temperature",
		long:     "Illuminate your workspace with our sleek minimalist desk lamp. Features adjustable brightness, color temperature control, and energy-efficient LED technology.",
		price:    "79.99",
		category: "home-living",
		image:    "https://images.unsplash.com/photo-1507473885765-e6ed057f782c?w=800&h=800&fit=crop",
		stock:    45,
		featured: true,
	},
	{
		name:     "Organic Skincare Set",
		slug:     "organic-skincare-set",
		short:    "Complete organic skincare routine for glowing skin",
		long:     "Achieve radiant, healthy skin with our complete organic skincare set. Made from natural ingredients, free from harsh chemicals.",
		price:    "129.99",
		category: "beauty-health",
		image:    "https://images.unsplash.com/photo-1556228578-8c89e6adf883?w=800&h=800&fit=crop",
		stock:    35,
	},
	{
		name:     "Portable Bluetooth Speaker",
		slug:     "portable-bluetooth-speaker",
		short:    "Waterproof speaker with 360° sound and 24-hour battery",
		long:     "Take your music anywhere with our rugged portable speaker. Featuring 360° sound, waterproof design, and an impressive 24-hour battery life.",
		price:    "89.99",
		category: "electronics",
		image:    "https://images.unsplash.com/photo-1608043152269-423dbba4e7e1?w=800&h=800&fit=crop",
		stock:    60,
	},
}

// Run loads the demo accounts, categories and products. It does nothing
// when the admin account already exists.
func Run(ctx context.Context, store repository.Storage, logger *zap.Logger) error {
	if _, err := store.GetUserByEmail(ctx, AdminEmail); err == nil {
		logger.Info("Demo data already present, skipping seed")
		return nil
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return fmt.Errorf("failed to check for seed data: %w", err)
	}

	logger.Info("Seeding demo data")

	users := make(map[domain.Role]*domain.User, len(accounts))
	for _, a := range accounts {
		hash, err := service.HashPassword(a.password)
		if err != nil {
			return fmt.Errorf("failed to hash password for %s: %w", a.email, err)
		}
		user, err := store.CreateUser(ctx, domain.User{
			Email:        a.email,
			PasswordHash: &hash,
			Name:         a.name,
			Role:         a.role,
			ShopName:     a.shopName,
		})
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", a.email, err)
		}
		users[a.role] = user
	}

	categoryIDs := make(map[string]string, len(categories))
	for _, c := range categories {
		created, err := store.CreateCategory(ctx, domain.Category{
			Name:        c.name,
			Slug:        c.slug,
			Description: lo.ToPtr(c.description),
			Image:       lo.ToPtr(c.image),
		})
		if err != nil {
			return fmt.Errorf("failed to create category %s: %w", c.slug, err)
		}
		categoryIDs[c.slug] = created.ID
	}

	seller := users[domain.RoleSeller]
	for _, p := range products {
		price, err := domain.ParseMoney(p.price)
		if err != nil {
			return fmt.Errorf("invalid price for %s: %w", p.slug, err)
		}
		item := domain.Product{
			SellerID:         seller.ID,
			CategoryID:       lo.ToPtr(categoryIDs[p.category]),
			Name:             p.name,
			Slug:             p.slug,
			ShortDescription: lo.ToPtr(p.short),
			LongDescription:  lo.ToPtr(p.long),
			Price:            price,
			Images:           domain.StringList{p.image},
			Stock:            p.stock,
			IsFeatured:       p.featured,
			Status:           domain.ProductStatusActive,
		}
		if p.compareAt != "" {
			compareAt, err := domain.ParseMoney(p.compareAt)
			if err != nil {
				return fmt.Errorf("invalid compare-at price for %s: %w", p.slug, err)
			}
			item.CompareAtPrice = &compareAt
		}
		if _, err := store.CreateProduct(ctx, item); err != nil {
			return fmt.Errorf("failed to create product %s: %w", p.slug, err)
		}
	}

	logger.Info("Demo data seeded",
		zap.Int("users", len(accounts)),
		zap.Int("categories", len(categories)),
		zap.Int("products", len(products)),
	)
	return nil
}
