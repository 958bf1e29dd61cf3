// Package server exposes the concept gateway and prompt settings over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/alexanderramin/pursuit/internal/domain"
	"github.com/alexanderramin/pursuit/internal/intelligence"
	"github.com/alexanderramin/pursuit/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Deps are the collaborators the HTTP API serves.
type Deps struct {
	Gateway intelligence.ConceptGateway
	Prompts service.PromptService
	// LLMAvailable reports provider reachability for /healthz. May be nil.
	LLMAvailable func(ctx context.Context) bool
	Log          *zap.Logger
	// Gatherer backs /metrics. Nil disables the endpoint.
	Gatherer    prometheus.Gatherer
	HTTPMetrics *HTTPMetrics
	CORSOrigins []string
}

type handler struct {
	deps Deps
	log  *zap.Logger
}

// NewRouter builds the gin engine with every route registered.
func NewRouter(deps Deps) *gin.Engine {
	log := deps.Log
	if log == nil {
		log = zap.NewNop()
	}
	h := &handler{deps: deps, log: log}

	router := gin.New()
	router.Use(gin.Recovery(), RequestLogger(log), deps.HTTPMetrics.Middleware())
	if len(deps.CORSOrigins) > 0 {
		router.Use(CORS(deps.CORSOrigins))
	}

	router.GET("/healthz", h.health)
	if deps.Gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})))
	}

	api := router.Group("/api")
	{
		api.POST("/generate-concept", h.generateConcept)
		api.GET("/prompt", h.getPrompt)
		api.PUT("/prompt", h.savePrompt)
		api.POST("/prompt/default", h.activateDefault)
		api.POST("/prompt/versions/:id/activate", h.activateVersion)
		api.DELETE("/prompt/versions/:id", h.deleteVersion)
	}
	return router
}

func errorJSON(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}

func (h *handler) health(c *gin.Context) {
	available := false
	if h.deps.LLMAvailable != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()
		available = h.deps.LLMAvailable(ctx)
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "llm": available})
}

type generateRequest struct {
	Idea   string `json:"idea"`
	Prompt string `json:"prompt"`
	Stage  string `json:"stage"`
}

func (h *handler) generateConcept(c *gin.Context) {
	var req generateRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Idea) == "" {
		errorJSON(c, http.StatusBadRequest, "Idea is required")
		return
	}
	if h.deps.Gateway == nil {
		errorJSON(c, http.StatusInternalServerError, "Failed to generate concept")
		return
	}

	prompt := req.Prompt
	if strings.TrimSpace(prompt) == "" && h.deps.Prompts != nil {
		prompt = h.deps.Prompts.Active()
	}

	fb, err := h.deps.Gateway.GenerateConcept(c.Request.Context(), intelligence.ConceptRequest{
		IdeaOrSummaryText: req.Idea,
		PromptOverride:    prompt,
		Stage:             req.Stage,
	})
	if err != nil {
		if errors.Is(err, intelligence.ErrIdeaRequired) {
			errorJSON(c, http.StatusBadRequest, "Idea is required")
			return
		}
		_ = c.Error(err)
		h.log.Error("concept generation failed", zap.Error(err))
		errorJSON(c, http.StatusInternalServerError, "Failed to generate concept")
		return
	}
	c.JSON(http.StatusOK, fb)
}

type promptResponse struct {
	Prompt          string                 `json:"prompt"`
	DefaultPrompt   string                 `json:"defaultPrompt"`
	ActiveVersionID string                 `json:"activeVersionId,omitempty"`
	Versions        []domain.PromptVersion `json:"versions"`
	Outcome         string                 `json:"outcome,omitempty"`
}

func (h *handler) promptState(outcome string) promptResponse {
	p := h.deps.Prompts
	return promptResponse{
		Prompt:          p.Active(),
		DefaultPrompt:   p.Default(),
		ActiveVersionID: p.ActiveVersionID(),
		Versions:        p.Versions(),
		Outcome:         outcome,
	}
}

// requirePrompts answers 503 when no prompt service is configured.
func (h *handler) requirePrompts(c *gin.Context) bool {
	if h.deps.Prompts == nil {
		errorJSON(c, http.StatusServiceUnavailable, "Prompt settings are unavailable")
		return false
	}
	return true
}

func (h *handler) getPrompt(c *gin.Context) {
	if !h.requirePrompts(c) {
		return
	}
	c.JSON(http.StatusOK, h.promptState(""))
}

type savePromptRequest struct {
	Prompt            string `json:"prompt"`
	SelectedVersionID string `json:"selectedVersionId"`
}

func (h *handler) savePrompt(c *gin.Context) {
	if !h.requirePrompts(c) {
		return
	}
	var req savePromptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorJSON(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	outcome, err := h.deps.Prompts.Save(c.Request.Context(), req.Prompt, req.SelectedVersionID)
	if err != nil {
		h.storeError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.promptState(outcome.String()))
}

func (h *handler) activateDefault(c *gin.Context) {
	if !h.requirePrompts(c) {
		return
	}
	if err := h.deps.Prompts.ActivateDefault(c.Request.Context()); err != nil {
		h.storeError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.promptState(""))
}

func (h *handler) activateVersion(c *gin.Context) {
	if !h.requirePrompts(c) {
		return
	}
	if err := h.deps.Prompts.ActivateVersion(c.Request.Context(), c.Param("id")); err != nil {
		h.storeError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.promptState(""))
}

func (h *handler) deleteVersion(c *gin.Context) {
	if !h.requirePrompts(c) {
		return
	}
	if err := h.deps.Prompts.DeleteVersion(c.Request.Context(), c.Param("id")); err != nil {
		h.storeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *handler) storeError(c *gin.Context, err error) {
	_ = c.Error(err)
	if errors.Is(err, service.ErrPromptVersionNotFound) {
		errorJSON(c, http.StatusNotFound, "Prompt version not found")
		return
	}
	h.log.Error("prompt store write failed", zap.Error(err))
	errorJSON(c, http.StatusInternalServerError, "Failed to update prompt")
}

// Run serves handler on addr until ctx is cancelled, then shuts down
// gracefully.
func Run(ctx context.Context, addr string, handler http.Handler, log *zap.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serving %s: %w", addr, err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutting down: %w", err)
		}
		return nil
	}
}
