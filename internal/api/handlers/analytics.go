package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/wonny/compass/internal/brain"
	"github.com/wonny/compass/internal/contracts"
	regimepkg "github.com/wonny/compass/internal/regime"
	"github.com/wonny/compass/internal/rsrating"
	sectorpkg "github.com/wonny/compass/internal/sector"
	"github.com/wonny/compass/internal/trading"
	"github.com/wonny/compass/pkg/logger"
	"github.com/wonny/compass/pkg/redis"
)

const (
	dateLayout = "2006-01-02"
	cacheTTL   = 10 * time.Minute
)

// AnalyticsHandler serves the daily analytics artifacts to the dashboard
// ⭐ SSOT: 분석 API 핸들러는 이 구조체에서만
type AnalyticsHandler struct {
	ratings      *rsrating.Repository
	regimes      *regimepkg.Repository
	sectors      *sectorpkg.Repository
	trading      *trading.Repository
	orchestrator *brain.Orchestrator
	cache        *redis.Cache
	log          *logger.Logger
}

// NewAnalyticsHandler creates the analytics handler
func NewAnalyticsHandler(
	ratings *rsrating.Repository,
	regimes *regimepkg.Repository,
	sectors *sectorpkg.Repository,
	tradingRepo *trading.Repository,
	orchestrator *brain.Orchestrator,
	cache *redis.Cache,
	log *logger.Logger,
) *AnalyticsHandler {
	return &AnalyticsHandler{
		ratings:      ratings,
		regimes:      regimes,
		sectors:      sectors,
		trading:      tradingRepo,
		orchestrator: orchestrator,
		cache:        cache,
		log:          log,
	}
}

// GetRatings returns the RS Rating rows for a date
// GET /api/ratings?date=YYYY-MM-DD
func (h *AnalyticsHandler) GetRatings(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	date, ok := h.resolveDate(ctx, w, r)
	if !ok {
		return
	}

	key := redis.RatingsKey(date.Format(dateLayout))
	var cached []*contracts.RSRatingRecord
	if hit, _ := h.cache.Get(ctx, key, &cached); hit {
		respondJSON(w, http.StatusOK, cached)
		return
	}

	rows, err := h.ratings.GetByDate(ctx, date)
	if err != nil {
		h.log.WithError(err).Error("Failed to get ratings")
		respondError(w, http.StatusInternalServerError, "Failed to retrieve ratings")
		return
	}

	if err := h.cache.Set(ctx, key, rows, cacheTTL); err != nil {
		h.log.WithError(err).Warn("Failed to cache ratings")
	}
	respondJSON(w, http.StatusOK, rows)
}

// GetSymbolRatings returns the recent rating history of one symbol
// GET /api/ratings/{symbol}?limit=30
func (h *AnalyticsHandler) GetSymbolRatings(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	symbol := mux.Vars(r)["symbol"]

	limit := 30
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}

	rows, err := h.ratings.GetBySymbol(ctx, symbol, limit)
	if err != nil {
		h.log.WithError(err).Error("Failed to get symbol ratings")
		respondError(w, http.StatusInternalServerError, "Failed to retrieve ratings")
		return
	}
	if len(rows) == 0 {
		respondError(w, http.StatusNotFound, "No ratings for symbol")
		return
	}

	respondJSON(w, http.StatusOK, rows)
}

// GetRegime returns the regime snapshot for a date
// GET /api/regime?date=YYYY-MM-DD
func (h *AnalyticsHandler) GetRegime(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	date, ok := h.resolveDate(ctx, w, r)
	if !ok {
		return
	}

	key := redis.RegimeKey(date.Format(dateLayout))
	var cached contracts.RegimeSnapshot
	if hit, _ := h.cache.Get(ctx, key, &cached); hit {
		respondJSON(w, http.StatusOK, &cached)
		return
	}

	snapshot, err := h.regimes.GetByDate(ctx, date)
	if err != nil {
		h.log.WithError(err).Error("Failed to get regime snapshot")
		respondError(w, http.StatusInternalServerError, "Failed to retrieve regime")
		return
	}
	if snapshot == nil {
		respondError(w, http.StatusNotFound, "No regime snapshot for date")
		return
	}

	if err := h.cache.Set(ctx, key, snapshot, cacheTTL); err != nil {
		h.log.WithError(err).Warn("Failed to cache regime snapshot")
	}
	respondJSON(w, http.StatusOK, snapshot)
}

// GetRegimeHistory returns the recent regime snapshots
// GET /api/regime/history?limit=30
func (h *AnalyticsHandler) GetRegimeHistory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	limit := 30
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}

	rows, err := h.regimes.GetRecent(ctx, limit)
	if err != nil {
		h.log.WithError(err).Error("Failed to get regime history")
		respondError(w, http.StatusInternalServerError, "Failed to retrieve regime history")
		return
	}

	respondJSON(w, http.StatusOK, rows)
}

// GetSectors returns the sector ranking rows for a date
// GET /api/sectors?date=YYYY-MM-DD
func (h *AnalyticsHandler) GetSectors(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	date, ok := h.resolveDate(ctx, w, r)
	if !ok {
		return
	}

	key := redis.SectorsKey(date.Format(dateLayout))
	var cached []*contracts.SectorRankingRow
	if hit, _ := h.cache.Get(ctx, key, &cached); hit {
		respondJSON(w, http.StatusOK, cached)
		return
	}

	rows, err := h.sectors.GetByDate(ctx, date)
	if err != nil {
		h.log.WithError(err).Error("Failed to get sector rankings")
		respondError(w, http.StatusInternalServerError, "Failed to retrieve sectors")
		return
	}

	if err := h.cache.Set(ctx, key, rows, cacheTTL); err != nil {
		h.log.WithError(err).Warn("Failed to cache sector rankings")
	}
	respondJSON(w, http.StatusOK, rows)
}

// GetTrading returns the buy/sell lists for a date
// GET /api/trading?date=YYYY-MM-DD
func (h *AnalyticsHandler) GetTrading(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	date, ok := h.resolveDate(ctx, w, r)
	if !ok {
		return
	}

	key := redis.TradingKey(date.Format(dateLayout))
	var cached contracts.TradingLists
	if hit, _ := h.cache.Get(ctx, key, &cached); hit {
		respondJSON(w, http.StatusOK, &cached)
		return
	}

	lists, err := h.trading.GetByDate(ctx, date)
	if err != nil {
		h.log.WithError(err).Error("Failed to get trading lists")
		respondError(w, http.StatusInternalServerError, "Failed to retrieve trading lists")
		return
	}

	if err := h.cache.Set(ctx, key, lists, cacheTTL); err != nil {
		h.log.WithError(err).Warn("Failed to cache trading lists")
	}
	respondJSON(w, http.StatusOK, lists)
}

// RunRequest triggers a pipeline run for a date
type RunRequest struct {
	Date string `json:"date"` // Optional, YYYY-MM-DD; defaults to today
}

// RunPipeline starts a full analytics run in the background
// POST /api/pipeline/run
func (h *AnalyticsHandler) RunPipeline(w http.ResponseWriter, r *http.Request) {
	var req RunRequest
	if r.Body != nil {
		// Empty body is fine: run for today
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	date := time.Now().UTC().Truncate(24 * time.Hour)
	if req.Date != "" {
		parsed, err := time.Parse(dateLayout, req.Date)
		if err != nil {
			respondError(w, http.StatusBadRequest, "Invalid date, expected YYYY-MM-DD")
			return
		}
		date = parsed
	}

	// 파이프라인은 분 단위 작업: 요청과 분리해서 실행
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
		defer cancel()

		if _, err := h.orchestrator.Run(ctx, date); err != nil {
			h.log.WithError(err).Error("Manual pipeline run failed")
		}
	}()

	respondJSON(w, http.StatusAccepted, map[string]string{
		"status": "started",
		"date":   date.Format(dateLayout),
	})
}

// resolveDate parses ?date= or falls back to the latest run date.
// Writes the error response itself when resolution fails.
func (h *AnalyticsHandler) resolveDate(ctx context.Context, w http.ResponseWriter, r *http.Request) (time.Time, bool) {
	if raw := r.URL.Query().Get("date"); raw != "" {
		date, err := time.Parse(dateLayout, raw)
		if err != nil {
			respondError(w, http.StatusBadRequest, "Invalid date, expected YYYY-MM-DD")
			return time.Time{}, false
		}
		return date, true
	}

	date, err := h.ratings.LatestDate(ctx)
	if err != nil {
		h.log.WithError(err).Error("Failed to resolve latest run date")
		respondError(w, http.StatusInternalServerError, "Failed to resolve date")
		return time.Time{}, false
	}
	if date.IsZero() {
		respondError(w, http.StatusNotFound, "No analytics runs yet")
		return time.Time{}, false
	}
	return date, true
}
