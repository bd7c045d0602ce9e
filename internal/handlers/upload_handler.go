package handlers

import (
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/technova/storefront-api/internal/media"
	"github.com/technova/storefront-api/utils"
)

const MaxUploadSize = 10 << 20

var allowedImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

type UploadHandler struct {
	// Uploader is nil when Cloudinary is not configured.
	Uploader media.Uploader
}

func NewUploadHandler(uploader media.Uploader) *UploadHandler {
	return &UploadHandler{Uploader: uploader}
}

// UploadImage handles POST /api/v1/admin/upload. The file type is sniffed
// from its first bytes, not trusted from the client.
func (h *UploadHandler) UploadImage(c *gin.Context) {
	if h.Uploader == nil {
		respondError(c, media.ErrUploadDisabled, "")
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, MaxUploadSize)

	file, header, err := c.Request.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, utils.ErrorResponse("No file provided or file too large (Max 10MB)"))
		return
	}
	defer file.Close()

	buffer := make([]byte, 512)
	n, err := file.Read(buffer)
	if err != nil && err != io.EOF {
		c.JSON(http.StatusInternalServerError, utils.ErrorResponse("Failed to read file for validation"))
		return
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		c.JSON(http.StatusInternalServerError, utils.ErrorResponse("Failed to read file for validation"))
		return
	}

	contentType := http.DetectContentType(buffer[:n])
	fallbackExt, ok := allowedImageTypes[contentType]
	if !ok {
		c.JSON(http.StatusBadRequest, utils.ErrorResponse("Unsupported file type. Please upload JPG, PNG, WEBP, or GIF"))
		return
	}

	// A generated name keeps client paths out of storage.
	ext := filepath.Ext(header.Filename)
	if ext == "" {
		ext = fallbackExt
	}
	safeFilename := fmt.Sprintf("%s%s", uuid.NewString(), ext)

	url, err := h.Uploader.Upload(c.Request.Context(), file, safeFilename)
	if err != nil {
		respondError(c, err, "Image upload failed")
		return
	}

	c.JSON(http.StatusOK, utils.SuccessResponse("Image uploaded successfully", gin.H{
		"url":  url,
		"size": header.Size,
		"type": contentType,
	}))
}

// Fallback serves GET /api/v1/media/fallback?category=&seed= and, for offer
// banners, ?offer=&width=&height=.
func (h *UploadHandler) Fallback(c *gin.Context) {
	if offer := c.Query("offer"); offer != "" {
		width, _ := strconv.Atoi(c.DefaultQuery("width", "1200"))
		height, _ := strconv.Atoi(c.DefaultQuery("height", "400"))
		if width <= 0 || height <= 0 || width > 4000 || height > 4000 {
			c.JSON(http.StatusBadRequest, utils.ErrorResponse("width and height must be between 1 and 4000"))
			return
		}
		c.JSON(http.StatusOK, utils.SuccessResponse("Offer image resolved", gin.H{"url": media.OfferImage(offer, width, height)}))
		return
	}

	seed := c.Query("seed")
	if seed == "" {
		c.JSON(http.StatusBadRequest, utils.ErrorResponse("seed is required"))
		return
	}
	c.JSON(http.StatusOK, utils.SuccessResponse("Fallback image resolved", gin.H{
		"url": media.FallbackImage(c.Query("category"), seed),
	}))
}
