package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gorilla/websocket"

	"github.com/wonny/fairvalue/internal/batch"
	"github.com/wonny/fairvalue/internal/contracts"
	"github.com/wonny/fairvalue/internal/profile"
	"github.com/wonny/fairvalue/internal/store"
	"github.com/wonny/fairvalue/internal/valuation"
	"github.com/wonny/fairvalue/pkg/httputil"
	"github.com/wonny/fairvalue/pkg/logger"
)

// maxBatchSymbols caps one request; bigger lists belong in a watchlist file.
const maxBatchSymbols = 500

// BatchHandler serves watchlist scoring.
type BatchHandler struct {
	scorer         *batch.Scorer
	loader         *batch.WatchlistLoader
	store          *store.Store // nil when persistence is disabled
	defaultProfile profile.Profile
	logger         *logger.Logger

	upgrader websocket.Upgrader
}

// NewBatchHandler creates a batch handler.
func NewBatchHandler(
	scorer *batch.Scorer,
	httpClient *httputil.Client,
	st *store.Store,
	defaultProfile profile.Profile,
	log *logger.Logger,
) *BatchHandler {
	return &BatchHandler{
		scorer:         scorer,
		loader:         batch.NewWatchlistLoader(httpClient),
		store:          st,
		defaultProfile: defaultProfile,
		logger:         log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
}

// ScoreRequest is the body of POST /api/batch/score. Exactly one of Symbols
// or WatchlistURL must be given.
type ScoreRequest struct {
	Symbols      []string            `json:"symbols,omitempty"`
	WatchlistURL string              `json:"watchlist_url,omitempty"`
	Weights      *contracts.WeightSet `json:"weights,omitempty"`
	Mode         string              `json:"mode,omitempty"`
	Filter       string              `json:"filter,omitempty"`
	SortBy       string              `json:"sort_by,omitempty"`
}

// ScoreResponse is the body of a successful scoring run.
type ScoreResponse struct {
	Report *batch.Report         `json:"report"`
	Ranked []*contracts.Snapshot `json:"ranked"`
	RunID  int64                 `json:"run_id,omitempty"`
}

// Score runs a batch over the submitted symbols or watchlist.
// POST /api/batch/score
func (h *BatchHandler) Score(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req ScoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	symbols, err := h.resolveSymbols(r, &req)
	if err != nil {
		h.respondBatchError(w, err)
		return
	}

	opts, mode, err := h.resolveOptions(&req)
	if err != nil {
		h.respondBatchError(w, err)
		return
	}

	sortCol := batch.SortByUndervaluedPct
	if req.SortBy != "" {
		sortCol, err = batch.ParseSortColumn(req.SortBy)
		if err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	report, err := h.scorer.Score(ctx, symbols, opts)
	if err != nil {
		h.respondBatchError(w, err)
		return
	}

	ranked := batch.FilterByName(report.Snapshots, req.Filter)
	batch.SortBy(ranked, sortCol)

	resp := ScoreResponse{Report: report, Ranked: ranked}

	if h.store != nil {
		runID, err := h.store.SaveRun(ctx, "api", string(mode), report)
		if err != nil {
			h.logger.WithError(err).Warn("Failed to persist batch run")
		} else {
			resp.RunID = runID
		}
	}

	respondJSON(w, http.StatusOK, resp)
}

// streamEvent is one websocket frame: either a progress update or the final
// report.
type streamEvent struct {
	Type     string          `json:"type"` // "progress" or "report"
	Progress *batch.Progress `json:"progress,omitempty"`
	Report   *batch.Report   `json:"report,omitempty"`
	Error    string          `json:"error,omitempty"`
}

// Stream scores symbols while pushing per-ticker progress over a websocket.
// GET /api/batch/stream?symbols=AAPL,MSFT&mode=tolerant
func (h *BatchHandler) Stream(w http.ResponseWriter, r *http.Request) {
	symbols := splitSymbols(r.URL.Query().Get("symbols"))
	if len(symbols) == 0 {
		respondError(w, http.StatusBadRequest, "symbols query parameter is required")
		return
	}
	if len(symbols) > maxBatchSymbols {
		respondError(w, http.StatusBadRequest, "too many symbols")
		return
	}

	req := ScoreRequest{Mode: r.URL.Query().Get("mode")}
	opts, _, err := h.resolveOptions(&req)
	if err != nil {
		h.respondBatchError(w, err)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.WithError(err).Warn("Websocket upgrade failed")
		return
	}
	defer conn.Close()

	// Progress callbacks arrive serialized from the collector loop, so
	// writing to the connection here is safe.
	opts.OnProgress = func(p batch.Progress) {
		event := p
		if err := conn.WriteJSON(streamEvent{Type: "progress", Progress: &event}); err != nil {
			h.logger.WithError(err).Debug("Progress write failed, client likely gone")
		}
	}

	report, err := h.scorer.Score(r.Context(), symbols, opts)
	if err != nil {
		_ = conn.WriteJSON(streamEvent{Type: "report", Error: err.Error()})
		return
	}

	if err := conn.WriteJSON(streamEvent{Type: "report", Report: report}); err != nil {
		h.logger.WithError(err).Debug("Report write failed")
	}

	_ = conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}

func (h *BatchHandler) resolveSymbols(r *http.Request, req *ScoreRequest) ([]string, error) {
	switch {
	case len(req.Symbols) > 0 && req.WatchlistURL != "":
		return nil, &contracts.ConfigurationError{Reason: "give either symbols or watchlist_url, not both"}
	case len(req.Symbols) > 0:
		if len(req.Symbols) > maxBatchSymbols {
			return nil, &contracts.ConfigurationError{Reason: "too many symbols"}
		}
		return req.Symbols, nil
	case req.WatchlistURL != "":
		entries, err := h.loader.Load(r.Context(), req.WatchlistURL)
		if err != nil {
			return nil, err
		}
		return batch.Symbols(entries), nil
	default:
		return nil, &contracts.ConfigurationError{Reason: "symbols or watchlist_url is required"}
	}
}

func (h *BatchHandler) resolveOptions(req *ScoreRequest) (batch.Options, valuation.Mode, error) {
	weights := h.defaultProfile.WeightSet()
	if req.Weights != nil {
		weights = *req.Weights
	}

	mode, err := h.defaultProfile.ParsedMode()
	if err != nil {
		return batch.Options{}, "", err
	}
	if req.Mode != "" {
		mode, err = valuation.ParseMode(req.Mode)
		if err != nil {
			return batch.Options{}, "", &contracts.ConfigurationError{Reason: err.Error()}
		}
	}

	return batch.Options{Weights: weights, Mode: mode}, mode, nil
}

func (h *BatchHandler) respondBatchError(w http.ResponseWriter, err error) {
	var confErr *contracts.ConfigurationError
	if errors.As(err, &confErr) {
		respondError(w, http.StatusBadRequest, confErr.Error())
		return
	}

	h.logger.WithError(err).Error("Batch scoring failed")
	respondError(w, http.StatusInternalServerError, "batch scoring failed")
}

func splitSymbols(raw string) []string {
	parts := strings.Split(raw, ",")
	symbols := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.ToUpper(strings.TrimSpace(p)); s != "" {
			symbols = append(symbols, s)
		}
	}
	return symbols
}
