package handlers

import (
	"net/http"
	"strings"

	"github.com/wonny/fairvalue/internal/contracts"
	"github.com/wonny/fairvalue/internal/provider"
	"github.com/wonny/fairvalue/pkg/logger"
)

// SearchHandler serves symbol lookup.
type SearchHandler struct {
	provider provider.DataProvider
	logger   *logger.Logger
}

// NewSearchHandler creates a search handler.
func NewSearchHandler(p provider.DataProvider, log *logger.Logger) *SearchHandler {
	return &SearchHandler{
		provider: p,
		logger:   log,
	}
}

// Search returns symbol matches for a free-text query.
// GET /api/search?q=apple
func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		respondError(w, http.StatusBadRequest, "query parameter q is required")
		return
	}

	matches, err := h.provider.Search(r.Context(), query)
	if err != nil {
		h.logger.WithError(err).WithField("query", query).Error("Symbol search failed")
		respondError(w, http.StatusBadGateway, "symbol search failed")
		return
	}

	if matches == nil {
		matches = []contracts.SymbolMatch{}
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"query":   query,
		"matches": matches,
	})
}
