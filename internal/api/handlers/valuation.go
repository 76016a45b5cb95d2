// Package handlers contains the HTTP handlers of the API.
package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/wonny/fairvalue/internal/contracts"
	"github.com/wonny/fairvalue/internal/profile"
	"github.com/wonny/fairvalue/internal/provider"
	"github.com/wonny/fairvalue/internal/snapshot"
	"github.com/wonny/fairvalue/internal/valuation"
	"github.com/wonny/fairvalue/pkg/logger"
)

// ValuationHandler serves single-ticker valuation snapshots.
type ValuationHandler struct {
	assembler      *snapshot.Assembler
	defaultProfile profile.Profile
	logger         *logger.Logger
}

// NewValuationHandler creates a valuation handler.
func NewValuationHandler(assembler *snapshot.Assembler, defaultProfile profile.Profile, log *logger.Logger) *ValuationHandler {
	return &ValuationHandler{
		assembler:      assembler,
		defaultProfile: defaultProfile,
		logger:         log,
	}
}

// GetSnapshot returns the full valuation snapshot for one symbol.
// GET /api/valuation/{symbol}?mode=tolerant&ev=40&dcf=30&graham=10&pe=20
func (h *ValuationHandler) GetSnapshot(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	symbol := strings.TrimSpace(mux.Vars(r)["symbol"])
	if symbol == "" {
		respondError(w, http.StatusBadRequest, "symbol is required")
		return
	}

	weights, mode, err := h.resolveOptions(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	snap, err := h.assembler.Assemble(ctx, symbol, weights, mode)
	if err != nil {
		h.respondAssembleError(w, symbol, err)
		return
	}

	respondJSON(w, http.StatusOK, snap)
}

// resolveOptions merges query overrides over the default profile. Weights are
// all-or-nothing: overriding one requires overriding all four.
func (h *ValuationHandler) resolveOptions(r *http.Request) (contracts.WeightSet, valuation.Mode, error) {
	weights := h.defaultProfile.WeightSet()
	mode, err := h.defaultProfile.ParsedMode()
	if err != nil {
		return weights, mode, err
	}

	q := r.URL.Query()
	if m := q.Get("mode"); m != "" {
		mode, err = valuation.ParseMode(m)
		if err != nil {
			return weights, mode, err
		}
	}

	keys := []string{"ev", "dcf", "graham", "pe"}
	provided := 0
	values := make(map[string]int, len(keys))
	for _, key := range keys {
		raw := q.Get(key)
		if raw == "" {
			continue
		}
		v, err := strconv.Atoi(raw)
		if err != nil {
			return weights, mode, errors.New("weight " + key + " must be an integer")
		}
		values[key] = v
		provided++
	}

	switch provided {
	case 0:
	case len(keys):
		weights = contracts.WeightSet{
			EV:     values["ev"],
			DCF:    values["dcf"],
			Graham: values["graham"],
			PE:     values["pe"],
		}
	default:
		return weights, mode, errors.New("weight overrides require all of ev, dcf, graham, pe")
	}

	return weights, mode, nil
}

func (h *ValuationHandler) respondAssembleError(w http.ResponseWriter, symbol string, err error) {
	var confErr *contracts.ConfigurationError

	switch {
	case errors.Is(err, provider.ErrUnavailable):
		respondError(w, http.StatusNotFound, "no data available for "+symbol)
	case errors.As(err, &confErr):
		respondError(w, http.StatusBadRequest, confErr.Error())
	case errors.Is(err, valuation.ErrIncompleteEstimates):
		respondError(w, http.StatusUnprocessableEntity, "strict mode: not all estimates are available for "+symbol)
	case errors.Is(err, valuation.ErrInvalidCurrentPrice):
		respondError(w, http.StatusUnprocessableEntity, "no usable current price for "+symbol)
	default:
		h.logger.WithError(err).WithField("symbol", symbol).Error("Failed to assemble snapshot")
		respondError(w, http.StatusInternalServerError, "Failed to assemble snapshot")
	}
}
