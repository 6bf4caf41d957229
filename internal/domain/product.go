package domain

import (
	"database/sql/driver"
	"encoding/json"
	"time"
)

// ProductStatus is the publication state of a product.
type ProductStatus string

const (
	ProductStatusActive   ProductStatus = "active"
	ProductStatusDraft    ProductStatus = "draft"
	ProductStatusArchived ProductStatus = "archived"
)

// Valid reports whether s is a known product status.
func (s ProductStatus) Valid() bool {
	switch s {
	case ProductStatusActive, ProductStatusDraft, ProductStatusArchived:
		return true
	}
	return false
}

// StringList is an ordered list of strings stored as a JSON array.
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]string(l))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (l *StringList) Scan(src interface{}) error {
	*l = StringList{}
	return scanJSON(src, (*[]string)(l))
}

// Product represents a product in the catalog
type Product struct {
	ID               string        `json:"id" db:"id"`
	SellerID         string        `json:"sellerId" db:"seller_id"`
	CategoryID       *string       `json:"categoryId" db:"category_id"`
	Name             string        `json:"name" db:"name"`
	Slug             string        `json:"slug" db:"slug"`
	ShortDescription *string       `json:"shortDescription" db:"short_description"`
	LongDescription  *string       `json:"longDescription" db:"long_description"`
	Price            Money         `json:"price" db:"price"`
	CompareAtPrice   *Money        `json:"compareAtPrice" db:"compare_at_price"`
	Images           StringList    `json:"images" db:"images"`
	Stock            int           `json:"stock" db:"stock"`
	IsAIGenerated    bool          `json:"isAiGenerated" db:"is_ai_generated"`
	IsFeatured       bool          `json:"isFeatured" db:"is_featured"`
	Status           ProductStatus `json:"status" db:"status"`
	CreatedAt        time.Time     `json:"createdAt" db:"created_at"`
	UpdatedAt        time.Time     `json:"updatedAt" db:"updated_at"`
}

// FirstImage returns the lead image reference or "".
func (p *Product) FirstImage() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0]
}

// ProductWithDetails is a product joined with its seller, category and
// review aggregate. AverageRating is nil when the product has no reviews.
type ProductWithDetails struct {
	Product
	Seller        *User     `json:"seller,omitempty"`
	Category      *Category `json:"category,omitempty"`
	AverageRating *float64  `json:"averageRating,omitempty"`
	ReviewCount   int       `json:"reviewCount"`
}

// ProductFilter narrows a product listing; zero values mean "any".
type ProductFilter struct {
	CategoryID string
	SellerID   string
	Featured   *bool
	Status     ProductStatus
}

// ProductPatch holds the mutable product fields; nil means unchanged.
type ProductPatch struct {
	Name             *string
	ShortDescription *string
	LongDescription  *string
	Price            *Money
	CompareAtPrice   *Money
	CategoryID       *string
	Images           *[]string
	Stock            *int
	IsAIGenerated    *bool
	IsFeatured       *bool
	Status           *ProductStatus
}

// Apply merges the patch into p. It does not touch UpdatedAt.
func (pp ProductPatch) Apply(p *Product) {
	if pp.Name != nil {
		p.Name = *pp.Name
	}
	if pp.ShortDescription != nil {
		p.ShortDescription = pp.ShortDescription
	}
	if pp.LongDescription != nil {
		p.LongDescription = pp.LongDescription
	}
	if pp.Price != nil {
		p.Price = *pp.Price
	}
	if pp.CompareAtPrice != nil {
		p.CompareAtPrice = pp.CompareAtPrice
	}
	if pp.CategoryID != nil {
		p.CategoryID = pp.CategoryID
	}
	if pp.Images != nil {
		p.Images = StringList(*pp.Images)
	}
	if pp.Stock != nil {
		p.Stock = *pp.Stock
	}
	if pp.IsAIGenerated != nil {
		p.IsAIGenerated = *pp.IsAIGenerated
	}
	if pp.IsFeatured != nil {
		p.IsFeatured = *pp.IsFeatured
	}
	if pp.Status != nil {
		p.Status = *pp.Status
	}
}
