package handlers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"medimart_api/internal/models"
	"medimart_api/internal/reconcile"
)

// CatalogHandler serves the category tree and the product shop
type CatalogHandler struct {
	db *gorm.DB
}

func NewCatalogHandler(db *gorm.DB) *CatalogHandler {
	return &CatalogHandler{db: db}
}

type categoryRequest struct {
	Name string `json:"name" validate:"required"`
}

func (h *CatalogHandler) CreateCategory(c echo.Context) error {
	req := new(categoryRequest)
	if err := bindAndValidate(c, req); err != nil {
		return err
	}

	category := models.Category{Name: req.Name}
	if err := h.db.Create(&category).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to create category")
	}
	return c.JSON(http.StatusCreated, Response{Success: true, Message: "Category created successfully", Data: category})
}

func (h *CatalogHandler) ListCategories(c echo.Context) error {
	var categories []models.Category
	err := h.db.Preload("SubCategories.SubSubCategories").Find(&categories).Error
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch categories")
	}
	return c.JSON(http.StatusOK, Response{Success: true, Data: categories})
}

func (h *CatalogHandler) DeleteCategory(c echo.Context) error {
	return h.deleteByID(c, &models.Category{}, "category")
}

type subCategoryRequest struct {
	CategoryID uint   `json:"category_id" validate:"required"`
	Name       string `json:"name" validate:"required"`
}

func (h *CatalogHandler) CreateSubCategory(c echo.Context) error {
	req := new(subCategoryRequest)
	if err := bindAndValidate(c, req); err != nil {
		return err
	}

	if err := h.db.First(&models.Category{}, req.CategoryID).Error; err != nil {
		return &reconcile.NotFoundError{Resource: "category"}
	}

	sub := models.SubCategory{CategoryID: req.CategoryID, Name: req.Name}
	if err := h.db.Create(&sub).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to create sub-category")
	}
	return c.JSON(http.StatusCreated, Response{Success: true, Message: "Sub-category created successfully", Data: sub})
}

func (h *CatalogHandler) DeleteSubCategory(c echo.Context) error {
	return h.deleteByID(c, &models.SubCategory{}, "sub-category")
}

type subSubCategoryRequest struct {
	SubCategoryID uint   `json:"sub_category_id" validate:"required"`
	Name          string `json:"name" validate:"required"`
}

func (h *CatalogHandler) CreateSubSubCategory(c echo.Context) error {
	req := new(subSubCategoryRequest)
	if err := bindAndValidate(c, req); err != nil {
		return err
	}

	if err := h.db.First(&models.SubCategory{}, req.SubCategoryID).Error; err != nil {
		return &reconcile.NotFoundError{Resource: "sub-category"}
	}

	subsub := models.SubSubCategory{SubCategoryID: req.SubCategoryID, Name: req.Name}
	if err := h.db.Create(&subsub).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to create sub-sub-category")
	}
	return c.JSON(http.StatusCreated, Response{Success: true, Message: "Sub-sub-category created successfully", Data: subsub})
}

func (h *CatalogHandler) DeleteSubSubCategory(c echo.Context) error {
	return h.deleteByID(c, &models.SubSubCategory{}, "sub-sub-category")
}

type productRequest struct {
	Name               string  `json:"name" validate:"required"`
	Description        string  `json:"description" validate:"required"`
	Status             string  `json:"status"`
	CategoryID         uint    `json:"category_id" validate:"required"`
	SubCategoryID      *uint   `json:"sub_category_id"`
	SubSubCategoryID   *uint   `json:"sub_sub_category_id"`
	Price              float64 `json:"price" validate:"required,gt=0"`
	DiscountType       string  `json:"discount_type"`
	DiscountPercentage int     `json:"discount_percentage" validate:"gte=0,lte=100"`
	FreeDelivery       bool    `json:"free_delivery"`
}

func (h *CatalogHandler) CreateProduct(c echo.Context) error {
	req := new(productRequest)
	if err := bindAndValidate(c, req); err != nil {
		return err
	}

	if err := h.db.First(&models.Category{}, req.CategoryID).Error; err != nil {
		return &reconcile.NotFoundError{Resource: "category"}
	}

	product := models.Product{
		Name:               req.Name,
		Description:        req.Description,
		Status:             req.Status,
		CategoryID:         req.CategoryID,
		SubCategoryID:      req.SubCategoryID,
		SubSubCategoryID:   req.SubSubCategoryID,
		Price:              req.Price,
		DiscountType:       req.DiscountType,
		DiscountPercentage: req.DiscountPercentage,
		FreeDelivery:       req.FreeDelivery,
	}
	if err := h.db.Create(&product).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to create product")
	}
	return c.JSON(http.StatusCreated, Response{Success: true, Message: "Product created successfully", Data: product})
}

func (h *CatalogHandler) ListProducts(c echo.Context) error {
	query := h.db.Model(&models.Product{})

	if category := c.QueryParam("category_id"); category != "" {
		query = query.Where("category_id = ?", category)
	}
	if status := c.QueryParam("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var products []models.Product
	if err := query.Find(&products).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch products")
	}
	return c.JSON(http.StatusOK, Response{Success: true, Data: products})
}

func (h *CatalogHandler) GetProduct(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid product id")
	}

	var product models.Product
	if err := h.db.Preload("Category").First(&product, uint(id)).Error; err != nil {
		return &reconcile.NotFoundError{Resource: "product"}
	}
	return c.JSON(http.StatusOK, Response{Success: true, Data: product})
}

func (h *CatalogHandler) UpdateProduct(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid product id")
	}

	req := new(productRequest)
	if err := bindAndValidate(c, req); err != nil {
		return err
	}

	var product models.Product
	if err := h.db.First(&product, uint(id)).Error; err != nil {
		return &reconcile.NotFoundError{Resource: "product"}
	}

	updates := map[string]interface{}{
		"name":                req.Name,
		"description":         req.Description,
		"status":              req.Status,
		"category_id":         req.CategoryID,
		"sub_category_id":     req.SubCategoryID,
		"sub_sub_category_id": req.SubSubCategoryID,
		"price":               req.Price,
		"discount_type":       req.DiscountType,
		"discount_percentage": req.DiscountPercentage,
		"free_delivery":       req.FreeDelivery,
	}
	if err := h.db.Model(&product).Updates(updates).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to update product")
	}
	return c.JSON(http.StatusOK, Response{Success: true, Message: "Product updated successfully", Data: product})
}

func (h *CatalogHandler) DeleteProduct(c echo.Context) error {
	return h.deleteByID(c, &models.Product{}, "product")
}

func (h *CatalogHandler) deleteByID(c echo.Context, model interface{}, resource string) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid "+resource+" id")
	}

	result := h.db.Delete(model, uint(id))
	if result.Error != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to delete "+resource)
	}
	if result.RowsAffected == 0 {
		return &reconcile.NotFoundError{Resource: resource}
	}
	return c.JSON(http.StatusOK, Response{Success: true, Message: "Deleted successfully"})
}
