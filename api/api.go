// Package api exposes the crawler over HTTP: a health probe and a
// scrape endpoint that returns tender summaries plus an Excel export.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/tenderwatch/crawler/export"
	"github.com/tenderwatch/crawler/tender"
)

// summaryLimit caps how many tenders appear inline in the JSON reply.
// The full set is always present in the attached workbook.
const summaryLimit = 50

// Runner crawls up to maxPages listing pages and returns the new
// tenders it found.
type Runner interface {
	Run(ctx context.Context, maxPages int) ([]tender.Record, error)
}

type Handler struct {
	runner       Runner
	logger       *zap.Logger
	defaultPages int
}

func NewHandler(runner Runner, logger *zap.Logger, defaultPages int) *Handler {
	if defaultPages <= 0 {
		defaultPages = 3
	}

	return &Handler{
		runner:       runner,
		logger:       logger,
		defaultPages: defaultPages,
	}
}

// SetupRouter wires middleware and routes onto a fresh engine.
func SetupRouter(h *Handler, origins []string) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(loggingMiddleware(h.logger))
	router.Use(corsMiddleware(origins))

	apiGroup := router.Group("/api")
	{
		apiGroup.GET("/health", h.Health)
		apiGroup.POST("/scrape-tenders", h.ScrapeTenders)
	}

	return router
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

type scrapeRequest struct {
	MaxPages int `json:"max_pages"`
}

// summary is the slim per-tender shape embedded in the JSON reply.
type summary struct {
	Title          string `json:"Title"`
	URL            string `json:"URL"`
	BidNumber      string `json:"Bid Number"`
	Department     string `json:"Department"`
	BidDescription string `json:"Bid Description"`
	ClosingDate    string `json:"Closing Date"`
	Email          string `json:"Email"`
	Tel            string `json:"Tel"`
}

func (h *Handler) ScrapeTenders(c *gin.Context) {
	req := scrapeRequest{MaxPages: h.defaultPages}
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
			return
		}
	}

	if req.MaxPages <= 0 {
		req.MaxPages = h.defaultPages
	}

	records, err := h.runner.Run(c.Request.Context(), req.MaxPages)
	if err != nil {
		h.logger.Error("scrape failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})

		return
	}

	if len(records) == 0 {
		c.JSON(http.StatusNotFound, gin.H{
			"tenders": []summary{},
			"message": "No new tenders found",
		})

		return
	}

	encoded, err := export.Encode(records)
	if err != nil {
		h.logger.Error("excel encode failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})

		return
	}

	summaries := make([]summary, 0, summaryLimit)

	for i, r := range records {
		if i == summaryLimit {
			break
		}

		summaries = append(summaries, summary{
			Title:          r.Title,
			URL:            r.URL,
			BidNumber:      r.BidNumber,
			Department:     r.Department,
			BidDescription: r.BidDescription,
			ClosingDate:    r.ClosingDate,
			Email:          r.Email,
			Tel:            r.Tel,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"tenders":       summaries,
		"excelData":     encoded,
		"excelFileName": export.Filename(time.Now()),
	})
}

func loggingMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		logger.Info("http request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Int64("duration_ms", time.Since(start).Milliseconds()),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}

func corsMiddleware(origins []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin == "" {
			origin = "*"
		}

		if !originAllowed(origin, origins) {
			c.AbortWithStatus(http.StatusForbidden)
			return
		}

		c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

func originAllowed(origin string, allowed []string) bool {
	if len(allowed) == 0 {
		return true
	}

	for _, a := range allowed {
		if a == "*" || a == origin {
			return true
		}
	}

	return origin == "*"
}
