package handler

import (
	"fmt"
	"net/http"

	"core/internal/repository"

	"github.com/gin-gonic/gin"
)

// EmbeddingHandler handles embedding maintenance requests
type EmbeddingHandler struct {
	properties *repository.PropertyRepository
	dimensions int
}

// NewEmbeddingHandler creates a new embedding handler
func NewEmbeddingHandler(properties *repository.PropertyRepository, dimensions int) *EmbeddingHandler {
	return &EmbeddingHandler{properties: properties, dimensions: dimensions}
}

type embeddingBatchRequest struct {
	Embeddings []repository.EmbeddingItem `json:"embeddings" binding:"required"`
}

type embeddingBatchResponse struct {
	Success int      `json:"success"`
	Failed  int      `json:"failed"`
	Errors  []string `json:"errors,omitempty"`
}

// BatchUpdate handles PUT /api/v1/embeddings/batch
func (h *EmbeddingHandler) BatchUpdate(c *gin.Context) {
	var req embeddingBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	if len(req.Embeddings) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No embeddings provided"})
		return
	}

	for i, item := range req.Embeddings {
		if len(item.Embedding) != h.dimensions {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": fmt.Sprintf("Invalid embedding dimension at index %d: got %d, expected %d",
					i, len(item.Embedding), h.dimensions),
			})
			return
		}
	}

	success, errs := h.properties.BatchUpdateEmbeddings(c.Request.Context(), req.Embeddings)

	resp := embeddingBatchResponse{
		Success: success,
		Failed:  len(req.Embeddings) - success,
		Errors:  errs,
	}
	if len(errs) > 0 {
		c.JSON(http.StatusPartialContent, resp)
		return
	}
	c.JSON(http.StatusOK, resp)
}
