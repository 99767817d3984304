// Package handler provides HTTP handlers for the docqa service.
package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kart-io/logger"
	"github.com/panjf2000/ants/v2"

	"github.com/kart-io/docqa/internal/docqa/pipeline"
)

// DocQAHandler handles docqa HTTP requests.
type DocQAHandler struct {
	service pipeline.Service
	pool    *ants.Pool
}

// NewDocQAHandler creates a handler. The pool runs background ingestion
// tasks; it may be nil, in which case plain goroutines are used.
func NewDocQAHandler(service pipeline.Service, pool *ants.Pool) *DocQAHandler {
	return &DocQAHandler{
		service: service,
		pool:    pool,
	}
}

// SuccessResponse is a standard success response.
type SuccessResponse struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// ErrorResponse is a standard error response.
type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// IngestRequest represents an ingest request. Exactly one of URL and
// Directory should be set.
type IngestRequest struct {
	URL       string `json:"url"`
	Directory string `json:"directory"`
}

// Ingest starts corpus ingestion in the background and returns immediately.
func (h *DocQAHandler) Ingest(c *gin.Context) {
	var req IngestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Code: 400, Message: err.Error()})
		return
	}
	if (req.URL == "") == (req.Directory == "") {
		c.JSON(http.StatusBadRequest, ErrorResponse{Code: 400, Message: "exactly one of url and directory is required"})
		return
	}

	task := func() {
		ctx := context.Background()
		var err error
		if req.URL != "" {
			err = h.service.IngestFromURL(ctx, req.URL)
		} else {
			err = h.service.IngestDirectory(ctx, req.Directory)
		}
		if err != nil {
			logger.Errorw("background ingestion failed", "error", err.Error())
		}
	}

	// Degrade to a plain goroutine when the pool is unavailable.
	if h.pool != nil {
		if err := h.pool.Submit(task); err != nil {
			logger.Warnw("worker pool unavailable, falling back to goroutine", "error", err.Error())
			go task()
		}
	} else {
		go task()
	}

	c.JSON(http.StatusAccepted, SuccessResponse{Code: 0, Message: "Ingestion started"})
}

// QueryRequest represents a query request.
type QueryRequest struct {
	Question string `json:"question" binding:"required"`
}

// Query answers a question from the ingested corpus.
func (h *DocQAHandler) Query(c *gin.Context) {
	var req QueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Code: 400, Message: err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 60*time.Second)
	defer cancel()

	result, err := h.service.Query(ctx, req.Question)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			c.JSON(http.StatusRequestTimeout, ErrorResponse{
				Code:    408,
				Message: "Query timeout: the request took too long to process.",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, ErrorResponse{Code: 500, Message: err.Error()})
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Code: 0, Message: "success", Data: result})
}

// Stats returns knowledge base statistics.
func (h *DocQAHandler) Stats(c *gin.Context) {
	stats, err := h.service.GetStats(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Code: 500, Message: err.Error()})
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Code: 0, Message: "success", Data: stats})
}

// DropCollection removes the collection and all ingested chunks.
func (h *DocQAHandler) DropCollection(c *gin.Context) {
	if err := h.service.Drop(c.Request.Context()); err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Code: 500, Message: err.Error()})
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Code: 0, Message: "Collection dropped"})
}
