package controllers

import (
	"errors"
	"net/http"
	"path/filepath"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rajagopika181204/website-backend/middlewares"
	"github.com/rajagopika181204/website-backend/services"
	"github.com/rajagopika181204/website-backend/storage"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const maxImageSize = 5 << 20

var allowedImageTypes = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
	".gif":  true,
}

type ProductController struct {
	catalog *services.Catalog
	ledger  *services.InventoryLedger
	images  storage.ImageStore
}

func NewProductController(catalog *services.Catalog, ledger *services.InventoryLedger, images storage.ImageStore) *ProductController {
	return &ProductController{catalog: catalog, ledger: ledger, images: images}
}

func (c *ProductController) GetProducts(ctx *gin.Context) {
	products, err := c.catalog.ListAvailable(ctx.Request.Context())
	if err != nil {
		respondWithError(ctx, err)
		return
	}
	sendJSONResponse(ctx, http.StatusOK, products)
}

func (c *ProductController) GetProduct(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}
	product, err := c.catalog.Get(ctx.Request.Context(), id)
	if err != nil {
		respondWithError(ctx, err)
		return
	}
	sendJSONResponse(ctx, http.StatusOK, product)
}

func (c *ProductController) CreateProduct(ctx *gin.Context) {
	var productInfo services.NewProduct
	if err := ctx.ShouldBindJSON(&productInfo); err != nil {
		sendErrorResponse(ctx, http.StatusBadRequest, msgInvalidInput)
		return
	}
	product, err := c.catalog.Create(ctx.Request.Context(), productInfo)
	if err != nil {
		respondWithError(ctx, err)
		return
	}
	middlewares.Logger(ctx).Info("Product created", zap.Uint("product_id", product.ID))
	sendJSONResponse(ctx, http.StatusCreated, gin.H{"success": true, "product": product})
}

func (c *ProductController) UpdatePrice(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}
	var body struct {
		Price decimal.Decimal `json:"price"`
	}
	if err := ctx.ShouldBindJSON(&body); err != nil {
		sendErrorResponse(ctx, http.StatusBadRequest, msgInvalidInput)
		return
	}
	product, err := c.catalog.UpdatePrice(ctx.Request.Context(), id, body.Price)
	if err != nil {
		respondWithError(ctx, err)
		return
	}
	sendJSONResponse(ctx, http.StatusOK, gin.H{"success": true, "product": product})
}

func (c *ProductController) Restock(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}
	var body struct {
		Units int `json:"units" binding:"required,gt=0"`
	}
	if err := ctx.ShouldBindJSON(&body); err != nil {
		sendErrorResponse(ctx, http.StatusBadRequest, msgInvalidInput)
		return
	}
	product, err := c.catalog.Restock(ctx.Request.Context(), id, body.Units)
	if err != nil {
		respondWithError(ctx, err)
		return
	}
	sendJSONResponse(ctx, http.StatusOK, gin.H{"success": true, "product": product})
}

// UpdateStock takes units out of stock with the same locking a checkout uses.
func (c *ProductController) UpdateStock(ctx *gin.Context) {
	var body struct {
		ProductID         uint `json:"productId" binding:"required"`
		QuantityPurchased int  `json:"quantityPurchased" binding:"required,gt=0"`
	}
	if err := ctx.ShouldBindJSON(&body); err != nil {
		sendErrorResponse(ctx, http.StatusBadRequest, "Invalid product ID or quantity")
		return
	}
	reservation, err := c.catalog.DeductStock(ctx.Request.Context(), c.ledger, body.ProductID, body.QuantityPurchased)
	if err != nil {
		respondWithError(ctx, err)
		return
	}
	sendJSONResponse(ctx, http.StatusOK, gin.H{
		"success":   true,
		"message":   "Stock updated successfully",
		"productId": reservation.ProductID,
		"remaining": reservation.Remaining,
	})
}

// UploadImage stores a multipart "image" file and records its name on the
// product.
func (c *ProductController) UploadImage(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}
	log := middlewares.Logger(ctx)

	file, err := ctx.FormFile("image")
	if err != nil {
		sendErrorResponse(ctx, http.StatusBadRequest, "image file is required")
		return
	}
	if file.Size > maxImageSize {
		sendErrorResponse(ctx, http.StatusBadRequest, "image exceeds 5MB limit")
		return
	}
	ext := filepath.Ext(file.Filename)
	if !allowedImageTypes[ext] {
		sendErrorResponse(ctx, http.StatusBadRequest, "unsupported image type")
		return
	}

	if _, err := c.catalog.Get(ctx.Request.Context(), id); err != nil {
		respondWithError(ctx, err)
		return
	}

	src, err := file.Open()
	if err != nil {
		log.Error("Failed to open uploaded image", zap.Error(err))
		sendErrorResponse(ctx, http.StatusInternalServerError, msgInternalServerError)
		return
	}
	defer src.Close()

	name := "product-" + strconv.FormatUint(uint64(id), 10) + ext
	if err := c.images.Put(ctx.Request.Context(), name, src, storage.MIMEType(name)); err != nil {
		log.Error("Failed to store image", zap.String("name", name), zap.Error(err))
		sendErrorResponse(ctx, http.StatusInternalServerError, "failed to store image")
		return
	}
	if err := c.catalog.SetImage(ctx.Request.Context(), id, name); err != nil {
		respondWithError(ctx, err)
		return
	}

	sendJSONResponse(ctx, http.StatusCreated, gin.H{"success": true, "image": name})
}

// GetImageBase64 returns an image as a data URI.
func (c *ProductController) GetImageBase64(ctx *gin.Context) {
	name := ctx.Param("filename")
	data, err := c.images.Get(ctx.Request.Context(), name)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		sendErrorResponse(ctx, http.StatusNotFound, "Image not found")
		return
	case errors.Is(err, storage.ErrInvalidName):
		sendErrorResponse(ctx, http.StatusBadRequest, "invalid image name")
		return
	case err != nil:
		middlewares.Logger(ctx).Error("Failed to read image", zap.String("name", name), zap.Error(err))
		sendErrorResponse(ctx, http.StatusInternalServerError, "Failed to convert image")
		return
	}
	sendJSONResponse(ctx, http.StatusOK, gin.H{"image": storage.DataURI(name, data)})
}
