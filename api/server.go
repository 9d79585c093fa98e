// Package api - Thin, deterministic API layer
// The API is ONLY responsible for: input ingestion, engine orchestration, output serialization.
// The API NEVER performs pricing logic.
package api

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"aurora-quote/core/catalog"
	"aurora-quote/core/diagnostics"
	"aurora-quote/core/engine"
	"aurora-quote/core/selfcheck"
	"aurora-quote/internal/errors"
)

// Server is the API server
type Server struct {
	engine   *engine.Engine
	router   *gin.Engine
	version  string
	currency string
	logger   *zap.Logger
}

// NewServer creates a new API server over an engine
func NewServer(e *engine.Engine, version, currency string, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	gin.SetMode(gin.ReleaseMode)

	s := &Server{
		engine:   e,
		router:   gin.New(),
		version:  version,
		currency: currency,
		logger:   logger,
	}
	s.router.Use(gin.Recovery(), s.requestLogger())
	s.registerRoutes()
	return s
}

// registerRoutes registers all API routes
func (s *Server) registerRoutes() {
	api := s.router.Group("/api")
	{
		// Core endpoints
		api.POST("/quote", s.handleQuote)
		api.GET("/packages", s.handlePackages)
		api.GET("/catalog", s.handleCatalog)

		// Supporting endpoints
		api.GET("/health", s.handleHealth)
		api.GET("/version", s.handleVersion)
	}
}

// requestLogger logs one line per request
func (s *Server) requestLogger() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		start := time.Now()
		ctx.Next()
		s.logger.Debug("request",
			zap.String("method", ctx.Request.Method),
			zap.String("path", ctx.FullPath()),
			zap.Int("status", ctx.Writer.Status()),
			zap.Duration("duration", time.Since(start)))
	}
}

// handleQuote handles POST /api/quote
func (s *Server) handleQuote(ctx *gin.Context) {
	start := time.Now()

	// Parse request
	var req QuoteRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		s.writeError(ctx, "INVALID_JSON", err.Error(), http.StatusBadRequest)
		return
	}

	// Validate
	if req.PackageID == "" {
		s.writeError(ctx, "VALIDATION_ERROR", "package_id is required", http.StatusBadRequest)
		return
	}

	// Execute engine (NO PRICING LOGIC HERE)
	sess := s.engine.NewSession()
	if diag := sess.SelectPackage(req.PackageID); diag != nil {
		s.writeError(ctx, "UNKNOWN_PACKAGE", diag.String(), http.StatusBadRequest)
		return
	}
	if req.Equipment != nil {
		sess.UpdateEquipment(req.Equipment.Overlay(sess.Equipment()))
	}

	ids := make([]string, 0, len(req.Overrides))
	for id := range req.Overrides {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		qty := req.Overrides[id]
		if qty < 0 {
			s.writeError(ctx, "VALIDATION_ERROR", "override for "+id+" must not be negative", http.StatusBadRequest)
			return
		}
		if err := sess.SetQuantity(id, qty); err != nil {
			code, status := "ENGINE_ERROR", http.StatusInternalServerError
			if errors.IsType(err, errors.TypeNotFound) {
				code, status = "UNKNOWN_SERVICE", http.StatusBadRequest
			}
			s.writeError(ctx, code, err.Error(), status)
			return
		}
	}

	lines := sess.Lines()
	totals, diags := s.engine.ComputeTotals(lines)

	s.writeJSON(ctx, QuoteResponse{
		SessionID:     sess.ID(),
		Package:       sess.Package(),
		Equipment:     sess.Equipment(),
		Lines:         lines,
		Totals:        totals,
		Currency:      s.currency,
		CatalogBroken: s.engine.CatalogBroken(),
		Diagnostics:   diags,
		Metadata: &ResponseMetadata{
			InputHash:     computeInputHash(&req),
			EngineVersion: s.version,
			DurationMs:    time.Since(start).Milliseconds(),
		},
	}, http.StatusOK)
}

// handlePackages handles GET /api/packages
func (s *Server) handlePackages(ctx *gin.Context) {
	c := s.engine.Catalog()
	stats := c.Stats()

	resp := PackagesResponse{
		Packages: make([]PackageSummary, 0, len(catalog.KnownPackages)),
		Rate:     s.engine.Rate(),
		Currency: s.currency,
	}
	for _, id := range catalog.KnownPackages {
		summary := PackageSummary{Services: stats.ByPackage[id].Offered}
		if pkg, ok := c.Package(id); ok {
			summary.Package = pkg
		} else {
			summary.ID = id
		}
		totals, diag := selfcheck.DefaultTotals(c, id, s.engine.Rate())
		summary.Hours = totals.TotalHours
		summary.Price = totals.TotalPrice
		summary.Problem = diag
		resp.Packages = append(resp.Packages, summary)
	}

	s.writeJSON(ctx, resp, http.StatusOK)
}

// handleCatalog handles GET /api/catalog
func (s *Server) handleCatalog(ctx *gin.Context) {
	c := s.engine.Catalog()
	s.writeJSON(ctx, CatalogResponse{
		RatePerHour: c.RatePerHour(),
		Services:    s.engine.GetCatalog(),
		Defects:     diagnostics.FromDefects(c.Defects()),
	}, http.StatusOK)
}

// handleHealth handles GET /api/health
func (s *Server) handleHealth(ctx *gin.Context) {
	status := "healthy"
	if s.engine.CatalogBroken() {
		status = "degraded"
	}
	s.writeJSON(ctx, HealthResponse{
		Status:        status,
		Version:       s.version,
		CatalogBroken: s.engine.CatalogBroken(),
		Time:          time.Now().UTC().Format(time.RFC3339),
	}, http.StatusOK)
}

// handleVersion handles GET /api/version
func (s *Server) handleVersion(ctx *gin.Context) {
	s.writeJSON(ctx, gin.H{
		"version":     s.version,
		"engine":      "aurora-quote",
		"api_version": "v1",
	}, http.StatusOK)
}

func (s *Server) writeJSON(ctx *gin.Context, data interface{}, status int) {
	ctx.JSON(status, data)
}

func (s *Server) writeError(ctx *gin.Context, code, message string, status int) {
	s.logger.Info("request rejected", zap.String("code", code), zap.String("message", message))
	ctx.AbortWithStatusJSON(status, ErrorResponse{Error: ErrorBody{Code: code, Message: message}})
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// Helper functions

func computeInputHash(req *QuoteRequest) string {
	data, _ := json.Marshal(req)
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}
