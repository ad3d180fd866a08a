package api

import (
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/fridgewise/backend/internal/model"
	"github.com/fridgewise/backend/internal/service"
)

// IngredientHandler handles fridge inventory CRUD
type IngredientHandler struct {
	db           *gorm.DB
	imageService *service.ImageService
}

// NewIngredientHandler creates a new IngredientHandler instance. The image
// service may be nil when object storage is not configured.
func NewIngredientHandler(db *gorm.DB, imageService *service.ImageService) *IngredientHandler {
	return &IngredientHandler{
		db:           db,
		imageService: imageService,
	}
}

type IngredientRequest struct {
	Name         string    `json:"name" binding:"required"`
	Quantity     string    `json:"quantity"`
	Category     string    `json:"category"`
	PurchaseDate time.Time `json:"purchase_date"`
	ExpiryDate   time.Time `json:"expiry_date" binding:"required"`
}

// ListIngredients returns the user's inventory soonest-expiring first
func (h *IngredientHandler) ListIngredients(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var ingredients []model.Ingredient
	if err := h.db.WithContext(c.Request.Context()).
		Where("user_id = ?", userID).
		Order("expiry_date asc").
		Find(&ingredients).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch ingredients"})
		return
	}

	now := time.Now()
	for i := range ingredients {
		ingredients[i].Status = ingredients[i].StatusAt(now)
	}

	c.JSON(http.StatusOK, gin.H{"ingredients": ingredients})
}

func (h *IngredientHandler) CreateIngredient(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req IngredientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ingredient := model.Ingredient{
		ID:           uuid.New(),
		Name:         req.Name,
		Quantity:     req.Quantity,
		Category:     req.Category,
		PurchaseDate: req.PurchaseDate,
		ExpiryDate:   req.ExpiryDate,
		UserID:       userID,
	}

	if err := h.db.WithContext(c.Request.Context()).Create(&ingredient).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create ingredient"})
		return
	}

	ingredient.Status = ingredient.StatusAt(time.Now())
	c.JSON(http.StatusCreated, ingredient)
}

func (h *IngredientHandler) UpdateIngredient(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	ingredientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid ingredient id"})
		return
	}

	var req IngredientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var ingredient model.Ingredient
	if err := h.db.WithContext(c.Request.Context()).
		First(&ingredient, "id = ? AND user_id = ?", ingredientID, userID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Ingredient not found"})
		return
	}

	ingredient.Name = req.Name
	ingredient.Quantity = req.Quantity
	ingredient.Category = req.Category
	ingredient.PurchaseDate = req.PurchaseDate
	ingredient.ExpiryDate = req.ExpiryDate

	if err := h.db.WithContext(c.Request.Context()).Save(&ingredient).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update ingredient"})
		return
	}

	ingredient.Status = ingredient.StatusAt(time.Now())
	c.JSON(http.StatusOK, ingredient)
}

func (h *IngredientHandler) DeleteIngredient(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	ingredientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid ingredient id"})
		return
	}

	if err := h.db.WithContext(c.Request.Context()).
		Where("id = ? AND user_id = ?", ingredientID, userID).
		Delete(&model.Ingredient{}).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete ingredient"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Ingredient deleted successfully",
		"id":      ingredientID.String(),
	})
}

// UploadImage stores an ingredient photo and saves its URL on the row
func (h *IngredientHandler) UploadImage(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	if h.imageService == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "image storage is not configured"})
		return
	}

	ingredientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid ingredient id"})
		return
	}

	var ingredient model.Ingredient
	if err := h.db.WithContext(c.Request.Context()).
		First(&ingredient, "id = ? AND user_id = ?", ingredientID, userID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Ingredient not found"})
		return
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "image file is required"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to open image file"})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read image file"})
		return
	}

	contentType := fileHeader.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	url, err := h.imageService.UploadIngredientPhoto(c.Request.Context(), ingredientID, data, contentType)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to upload image"})
		return
	}

	ingredient.ImageURL = url
	if err := h.db.WithContext(c.Request.Context()).Save(&ingredient).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save image URL"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"image_url": url})
}
