package transport

import (
	"net/http"
	"strconv"

	"shophub/internal/domain"
	"shophub/internal/middleware"
	"shophub/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// CreateProductRequest is the listing payload. Any sellerId sent by the
// client is ignored.
type CreateProductRequest struct {
	Name             string               `json:"name" validate:"required,max=200"`
	ShortDescription *string              `json:"shortDescription" validate:"omitempty,max=500"`
	LongDescription  *string              `json:"longDescription"`
	Price            domain.Money         `json:"price" validate:"gt=0"`
	CompareAtPrice   *domain.Money        `json:"compareAtPrice" validate:"omitempty,gt=0"`
	CategoryID       *string              `json:"categoryId"`
	Images           []string             `json:"images" validate:"omitempty,max=10,dive,required"`
	Stock            int                  `json:"stock" validate:"gte=0"`
	IsAIGenerated    bool                 `json:"isAiGenerated"`
	IsFeatured       bool                 `json:"isFeatured"`
	Status           domain.ProductStatus `json:"status" validate:"omitempty,oneof=active draft archived"`
}

// UpdateProductRequest holds the editable product fields
type UpdateProductRequest struct {
	Name             *string               `json:"name" validate:"omitempty,min=1,max=200"`
	ShortDescription *string               `json:"shortDescription" validate:"omitempty,max=500"`
	LongDescription  *string               `json:"longDescription"`
	Price            *domain.Money         `json:"price" validate:"omitempty,gt=0"`
	CompareAtPrice   *domain.Money         `json:"compareAtPrice" validate:"omitempty,gt=0"`
	CategoryID       *string               `json:"categoryId"`
	Images           *[]string             `json:"images" validate:"omitempty,max=10,dive,required"`
	Stock            *int                  `json:"stock" validate:"omitempty,gte=0"`
	IsAIGenerated    *bool                 `json:"isAiGenerated"`
	IsFeatured       *bool                 `json:"isFeatured"`
	Status           *domain.ProductStatus `json:"status" validate:"omitempty,oneof=active draft archived"`
}

// GenerateDescriptionRequest asks for marketing copy
type GenerateDescriptionRequest struct {
	ProductName string `json:"productName" validate:"required,max=200"`
	Category    string `json:"category" validate:"max=100"`
}

// CreateReviewRequest is a buyer's rating
type CreateReviewRequest struct {
	ProductID string  `json:"productId" validate:"required"`
	Rating    int     `json:"rating" validate:"gte=1,lte=5"`
	Comment   *string `json:"comment" validate:"omitempty,max=2000"`
}

// CreateCategoryRequest adds a category
type CreateCategoryRequest struct {
	Name        string  `json:"name" validate:"required,max=100"`
	Slug        string  `json:"slug" validate:"omitempty,max=100"`
	Image       *string `json:"image"`
	Description *string `json:"description" validate:"omitempty,max=500"`
}

// CatalogHandler serves products, categories, reviews and AI discovery
type CatalogHandler struct {
	catalog *service.CatalogService
	reviews *service.ReviewService
	logger  *zap.Logger
}

func NewCatalogHandler(catalog *service.CatalogService, reviews *service.ReviewService, logger *zap.Logger) *CatalogHandler {
	return &CatalogHandler{catalog: catalog, reviews: reviews, logger: logger}
}

// RegisterRoutes registers catalog routes
func (h *CatalogHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Route("/api/products", func(r chi.Router) {
		r.Get("/", h.ListProducts)
		r.Get("/featured", h.Featured)
		r.Get("/{ref}", h.GetProduct)
		r.Get("/{ref}/recommendations", h.Recommendations)
		r.Get("/{ref}/reviews", h.ListReviews)
		r.Get("/{ref}/reviews/summary", h.ReviewSummary)

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware)
			r.With(middleware.RequireRole(h.logger, domain.RoleSeller, domain.RoleAdmin)).Post("/", h.CreateProduct)
			r.Patch("/{ref}", h.UpdateProduct)
			r.Delete("/{ref}", h.DeleteProduct)
		})
	})

	r.Get("/api/search", h.searchHandler("q"))
	r.Get("/api/ai/search", h.searchHandler("query"))
	r.Post("/api/ai/generate-description", h.GenerateDescription)

	r.Get("/api/categories", h.ListCategories)
	r.Get("/api/categories/{ref}", h.GetCategory)

	r.With(authMiddleware).Post("/api/reviews", h.CreateReview)

	r.Group(func(r chi.Router) {
		r.Use(authMiddleware)
		r.Use(middleware.RequireAdmin(h.logger))
		r.Post("/api/admin/categories", h.CreateCategory)
	})
}

// ListProducts supports categoryId, sellerId, featured and status filters
func (h *CatalogHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := domain.ProductFilter{
		CategoryID: query.Get("categoryId"),
		SellerID:   query.Get("sellerId"),
		Status:     domain.ProductStatus(query.Get("status")),
	}
	if raw := query.Get("featured"); raw != "" {
		featured, err := strconv.ParseBool(raw)
		if err != nil {
			middleware.RespondWithError(w, http.StatusBadRequest, "featured must be true or false")
			return
		}
		filter.Featured = &featured
	}
	if filter.Status != "" && !filter.Status.Valid() {
		middleware.RespondWithError(w, http.StatusBadRequest, "unknown product status")
		return
	}

	products, err := h.catalog.ListProducts(r.Context(), filter)
	if err != nil {
		respondWithServiceError(w, h.logger, err, "list products")
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, products)
}

func (h *CatalogHandler) Featured(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalog.Featured(r.Context())
	if err != nil {
		respondWithServiceError(w, h.logger, err, "list featured products")
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, products)
}

func (h *CatalogHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	product, err := h.catalog.GetProduct(r.Context(), chi.URLParam(r, "ref"))
	if err != nil {
		respondWithServiceError(w, h.logger, err, "get product")
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, product)
}

func (h *CatalogHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req CreateProductRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		middleware.RespondWithDecodeOrValidationError(w, err)
		return
	}

	images := req.Images
	if images == nil {
		images = []string{}
	}
	product, err := h.catalog.CreateProduct(r.Context(), user, domain.Product{
		Name:             req.Name,
		ShortDescription: req.ShortDescription,
		LongDescription:  req.LongDescription,
		Price:            req.Price,
		CompareAtPrice:   req.CompareAtPrice,
		CategoryID:       req.CategoryID,
		Images:           images,
		Stock:            req.Stock,
		IsAIGenerated:    req.IsAIGenerated,
		IsFeatured:       req.IsFeatured,
		Status:           req.Status,
	})
	if err != nil {
		respondWithServiceError(w, h.logger, err, "create product")
		return
	}
	middleware.RespondWithJSON(w, http.StatusCreated, product)
}

func (h *CatalogHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req UpdateProductRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		middleware.RespondWithDecodeOrValidationError(w, err)
		return
	}

	product, err := h.catalog.UpdateProduct(r.Context(), user, chi.URLParam(r, "ref"), domain.ProductPatch{
		Name:             req.Name,
		ShortDescription: req.ShortDescription,
		LongDescription:  req.LongDescription,
		Price:            req.Price,
		CompareAtPrice:   req.CompareAtPrice,
		CategoryID:       req.CategoryID,
		Images:           req.Images,
		Stock:            req.Stock,
		IsAIGenerated:    req.IsAIGenerated,
		IsFeatured:       req.IsFeatured,
		Status:           req.Status,
	})
	if err != nil {
		respondWithServiceError(w, h.logger, err, "update product")
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, product)
}

func (h *CatalogHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	if err := h.catalog.DeleteProduct(r.Context(), user, chi.URLParam(r, "ref")); err != nil {
		respondWithServiceError(w, h.logger, err, "delete product")
		return
	}
	respondSuccess(w)
}

func (h *CatalogHandler) Recommendations(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalog.Recommendations(r.Context(), chi.URLParam(r, "ref"))
	if err != nil {
		respondWithServiceError(w, h.logger, err, "recommend products")
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, products)
}

// searchHandler serves both search endpoints, which differ only in the
// query parameter name.
func (h *CatalogHandler) searchHandler(param string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		products, err := h.catalog.Search(r.Context(), r.URL.Query().Get(param))
		if err != nil {
			respondWithServiceError(w, h.logger, err, "search products")
			return
		}
		middleware.RespondWithJSON(w, http.StatusOK, products)
	}
}

func (h *CatalogHandler) GenerateDescription(w http.ResponseWriter, r *http.Request) {
	var req GenerateDescriptionRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		middleware.RespondWithDecodeOrValidationError(w, err)
		return
	}

	description := h.catalog.GenerateDescription(r.Context(), req.ProductName, req.Category)
	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"description": description})
}

func (h *CatalogHandler) ListReviews(w http.ResponseWriter, r *http.Request) {
	reviews, err := h.reviews.List(r.Context(), chi.URLParam(r, "ref"))
	if err != nil {
		respondWithServiceError(w, h.logger, err, "list reviews")
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, reviews)
}

func (h *CatalogHandler) ReviewSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.reviews.Summary(r.Context(), chi.URLParam(r, "ref"))
	if err != nil {
		respondWithServiceError(w, h.logger, err, "summarize reviews")
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, summary)
}

func (h *CatalogHandler) CreateReview(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req CreateReviewRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		middleware.RespondWithDecodeOrValidationError(w, err)
		return
	}

	review, err := h.reviews.Create(r.Context(), user, req.ProductID, req.Rating, req.Comment)
	if err != nil {
		respondWithServiceError(w, h.logger, err, "create review")
		return
	}
	middleware.RespondWithJSON(w, http.StatusCreated, review)
}

func (h *CatalogHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.catalog.ListCategories(r.Context())
	if err != nil {
		respondWithServiceError(w, h.logger, err, "list categories")
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, categories)
}

func (h *CatalogHandler) GetCategory(w http.ResponseWriter, r *http.Request) {
	category, err := h.catalog.GetCategory(r.Context(), chi.URLParam(r, "ref"))
	if err != nil {
		respondWithServiceError(w, h.logger, err, "get category")
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, category)
}

func (h *CatalogHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req CreateCategoryRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		middleware.RespondWithDecodeOrValidationError(w, err)
		return
	}

	category, err := h.catalog.CreateCategory(r.Context(), domain.Category{
		Name:        req.Name,
		Slug:        req.Slug,
		Image:       req.Image,
		Description: req.Description,
	})
	if err != nil {
		respondWithServiceError(w, h.logger, err, "create category")
		return
	}
	middleware.RespondWithJSON(w, http.StatusCreated, category)
}
