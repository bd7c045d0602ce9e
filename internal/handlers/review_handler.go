package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/technova/storefront-api/internal/models"
	"github.com/technova/storefront-api/internal/services/reviews"
	"github.com/technova/storefront-api/utils"
)

type ReviewHandler struct {
	Reviews reviews.Service
}

func NewReviewHandler(svc reviews.Service) *ReviewHandler {
	return &ReviewHandler{Reviews: svc}
}

func (h *ReviewHandler) CreateReview(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var input models.CreateReviewInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, utils.ErrorResponse("A product, a rating from 1 to 5 and a comment are required"))
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	review, err := h.Reviews.Create(ctx, userID, input)
	if err != nil {
		respondError(c, err, "Failed to submit review")
		return
	}

	c.JSON(http.StatusCreated, utils.SuccessResponse("Review submitted successfully", gin.H{"review": review}))
}

func (h *ReviewHandler) GetProductReviews(c *gin.Context) {
	productID, ok := objectIDParam(c, "id", "Invalid product ID")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	list, err := h.Reviews.ListForProduct(ctx, productID)
	if err != nil {
		respondError(c, err, "Failed to fetch reviews")
		return
	}

	c.JSON(http.StatusOK, utils.SuccessResponse("Reviews fetched successfully", gin.H{"reviews": list}))
}
