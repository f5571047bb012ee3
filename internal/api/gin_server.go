package api

import (
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strconv"
	"time"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"codefusion/internal/code_converter"
	"codefusion/internal/services"
	"codefusion/pkg/database"
	"codefusion/pkg/types"
)

const (
	flowConverter = "converter"
	flowReview    = "review"

	defaultHistoryLimit = 20
	maxHistoryLimit     = 100
	maxUploadSize       = 1 << 20
)

// Error messages returned in the "error" field
const (
	errInvalidFileFormat = "Invalid file format. Use .c, .cpp, .java, .js, .py, or .txt"
	errInvalidEncoding   = "Uploaded file is not valid UTF-8 text"
	errFileTooLarge      = "Uploaded file is too large (limit 1 MiB)"
	errMissingFields     = "Missing source language, target language, or code"
	errInvalidCode       = "Invalid syntax or unsupported code for the source language"
	errConversionFailed  = "Conversion failed. Unsupported conversion or error in AI processing"
	errPromptRequired    = "Prompt is required"
)

type GinServer struct {
	router            *gin.Engine
	logger            *zap.Logger
	services          *services.Services
	webDir            string
	generationTimeout time.Duration
}

func NewGinServer(logger *zap.Logger, services *services.Services, webDir string, generationTimeout time.Duration) *GinServer {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(GinLogger(logger))

	server := &GinServer{
		router:            router,
		logger:            logger,
		services:          services,
		webDir:            webDir,
		generationTimeout: generationTimeout,
	}
	server.SetupRoutes()
	return server
}

// GetRouter returns the Gin router
func (s *GinServer) GetRouter() *gin.Engine {
	return s.router
}

func (s *GinServer) SetupRoutes() {
	s.router.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
		})
	})
	s.router.GET("/health", s.HealthCheck)

	// pages
	s.router.GET("/", s.page("index.html"))
	s.router.GET("/code-converter", s.page("code_converter_index.html"))
	s.router.GET("/ai-review", s.page("ai_review_index.html"))
	s.router.GET("/static/*filepath", s.StaticFile)

	s.router.POST("/", s.ReviewCode)
	s.router.POST("/convert", s.ConvertCode)
	s.router.GET("/history", s.History)
}

// GinLogger returns a gin middleware for logging using zap
func GinLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.String("client_ip", c.ClientIP()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}

func noCache(c *gin.Context) {
	c.Header("Cache-Control", "no-cache, no-store, must-revalidate")
	c.Header("Pragma", "no-cache")
	c.Header("Expires", "0")
}

func (s *GinServer) page(name string) gin.HandlerFunc {
	return func(c *gin.Context) {
		noCache(c)
		c.File(filepath.Join(s.webDir, name))
	}
}

// StaticFile serves scripts and styles from the web directory
func (s *GinServer) StaticFile(c *gin.Context) {
	noCache(c)
	rel := filepath.Clean("/" + c.Param("filepath"))
	c.File(filepath.Join(s.webDir, "static", rel))
}

// HealthCheck godoc
// @Summary Health check endpoint
// @Description Check if the API server is running
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /health [get]
func (s *GinServer) HealthCheck(c *gin.Context) {
	c.JSON(200, gin.H{
		"status":  "healthy",
		"service": "codefusion-api",
	})
}

// ConvertCode handles code conversion requests
// @Summary Convert code from one language to another
// @Tags conversion
// @Accept x-www-form-urlencoded,multipart/form-data
// @Produce json
// @Param source_lang formData string true "Source language"
// @Param target_lang formData string true "Target language"
// @Param code formData string false "Source code"
// @Param file formData file false "Source file, overrides code"
// @Success 200 {object} types.ConversionResult
// @Failure 400 {object} types.ConversionResult
// @Failure 500 {object} types.ConversionResult
// @Router /convert [post]
func (s *GinServer) ConvertCode(c *gin.Context) {
	sourceLang := c.PostForm("source_lang")
	targetLang := c.PostForm("target_lang")
	code := c.PostForm("code")

	fail := func(status int, msg string) {
		s.record(c.Request.Context(), flowConverter, sourceLang, targetLang, len(code), errors.New(msg))
		c.JSON(status, types.ConversionResult{Error: msg})
	}

	if fh, err := c.FormFile("file"); err == nil {
		if !code_converter.AcceptsUpload(fh.Filename) {
			fail(http.StatusBadRequest, errInvalidFileFormat)
			return
		}
		content, err := readUpload(fh)
		if err != nil {
			s.logger.Warn("upload rejected", zap.String("file", fh.Filename), zap.Error(err))
			if errors.Is(err, errUploadTooLarge) {
				fail(http.StatusRequestEntityTooLarge, errFileTooLarge)
				return
			}
			fail(http.StatusBadRequest, errInvalidEncoding)
			return
		}
		code = content
	}

	if code == "" || sourceLang == "" || targetLang == "" {
		fail(http.StatusBadRequest, errMissingFields)
		return
	}

	if !code_converter.ValidateCode(code, sourceLang) {
		fail(http.StatusBadRequest, errInvalidCode)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), s.generationTimeout)
	defer cancel()

	converted, err := s.services.CodeConverterService.ConvertCode(ctx, code, sourceLang, targetLang)
	if err != nil {
		s.logger.Error("conversion error",
			zap.String("source_language", sourceLang),
			zap.String("target_language", targetLang),
			zap.Error(err),
		)
		if errors.Is(err, code_converter.ErrEmptyConversion) {
			fail(http.StatusInternalServerError, errConversionFailed)
			return
		}
		fail(http.StatusInternalServerError, err.Error())
		return
	}

	s.record(c.Request.Context(), flowConverter, sourceLang, targetLang, len(code), nil)
	c.JSON(http.StatusOK, types.ConversionResult{ConvertedCode: converted})
}

var errUploadTooLarge = errors.New("upload exceeds size limit")

func readUpload(fh *multipart.FileHeader) (string, error) {
	if fh.Size > maxUploadSize {
		return "", errUploadTooLarge
	}
	f, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxUploadSize+1))
	if err != nil {
		return "", err
	}
	if len(data) > maxUploadSize {
		return "", errUploadTooLarge
	}
	if !utf8.Valid(data) {
		return "", errors.New("content is not valid UTF-8")
	}
	return string(data), nil
}

// ReviewCode handles code review requests
// @Summary Review code
// @Tags review
// @Accept json
// @Produce plain
// @Param request body types.ReviewRequest true "Review request"
// @Success 200 {string} string "markdown review"
// @Failure 400 {object} types.ErrorResponse
// @Router / [post]
func (s *GinServer) ReviewCode(c *gin.Context) {
	var req types.ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Code == "" {
		c.JSON(http.StatusBadRequest, types.ErrorResponse{Error: errPromptRequired})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), s.generationTimeout)
	defer cancel()

	review, err := s.services.CodeReviewService.ReviewCode(ctx, req.Code)
	s.record(c.Request.Context(), flowReview, "", "", len(req.Code), err)
	if err != nil {
		s.logger.Error("review error", zap.Error(err))
		c.JSON(http.StatusInternalServerError, types.ErrorResponse{Error: err.Error()})
		return
	}

	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(review))
}

// History lists recent requests
// @Summary Recent conversion and review requests
// @Tags history
// @Produce json
// @Param limit query int false "Maximum number of entries"
// @Success 200 {object} types.HistoryResponse
// @Failure 503 {object} types.ErrorResponse
// @Router /history [get]
func (s *GinServer) History(c *gin.Context) {
	limit := defaultHistoryLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, types.ErrorResponse{Error: "limit must be a positive integer"})
			return
		}
		limit = min(n, maxHistoryLimit)
	}

	records, err := s.services.History.Recent(c.Request.Context(), limit)
	if err != nil {
		if errors.Is(err, services.ErrHistoryDisabled) {
			c.JSON(http.StatusServiceUnavailable, types.ErrorResponse{Error: err.Error()})
			return
		}
		s.logger.Error("history query failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, types.ErrorResponse{Error: "history unavailable"})
		return
	}

	entries := make([]types.HistoryEntry, 0, len(records))
	for _, rec := range records {
		entries = append(entries, rec.Entry())
	}
	c.JSON(http.StatusOK, types.HistoryResponse{Entries: entries})
}

func (s *GinServer) record(ctx context.Context, flow, sourceLang, targetLang string, codeLength int, err error) {
	rec := database.NewHistoryRecord(flow, sourceLang, targetLang, codeLength, err)
	if recErr := s.services.History.Record(ctx, rec); recErr != nil {
		s.logger.Warn("failed to record history", zap.String("flow", flow), zap.Error(recErr))
	}
}
