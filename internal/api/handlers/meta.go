package handlers

import (
	"net/http"
	"time"

	"github.com/dvloznov/spendwise/internal/api/middleware"
	"github.com/dvloznov/spendwise/internal/categorizer"
	"github.com/dvloznov/spendwise/internal/domain"
)

// CategoriesHandler handles GET /api/categories.
type CategoriesHandler struct{}

func NewCategoriesHandler() *CategoriesHandler {
	return &CategoriesHandler{}
}

// ListCategories returns the category labels in order and the keyword table.
func (h *CategoriesHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"categories": domain.CategoryLabels(),
		"rules":      categorizer.DefaultRules(),
		"count":      len(domain.Categories()),
	})
}

// HealthHandler handles GET /health.
type HealthHandler struct {
	strategy categorizer.Strategy
}

func NewHealthHandler(strategy categorizer.Strategy) *HealthHandler {
	return &HealthHandler{strategy: strategy}
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	strategy := "unavailable"
	if h.strategy != nil {
		strategy = h.strategy.Name()
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]string{
		"status":     "ok",
		"time":       time.Now().UTC().Format(time.RFC3339),
		"classifier": strategy,
	})
}
