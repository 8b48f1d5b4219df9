/**
 * @description
 * Benchmark API Handlers.
 * The two read endpoints (detailed-results, win-rates) share one protocol:
 * validate query params, resolve the target run, pull the per-run base
 * aggregate through the service (cache-aside), then derive the request-specific
 * view and its representation fingerprint for conditional GET.
 *
 * @dependencies
 * - github.com/gofiber/fiber/v2
 * - internal/services
 * - internal/analytics
 * - internal/etag
 *
 * @notes
 * - Success responses carry ETag + a shared public caching policy; every
 *   error/invalid/not-found response is no-store.
 * - 500s log with the request id and never leak internals to the client.
 */

package handlers

import (
	"errors"
	"strconv"
	"time"

	"github.com/dexmark-project/backend/internal/analytics"
	"github.com/dexmark-project/backend/internal/api/middleware"
	"github.com/dexmark-project/backend/internal/etag"
	"github.com/dexmark-project/backend/internal/logger"
	"github.com/dexmark-project/backend/internal/services"
	"github.com/dexmark-project/backend/internal/store"
	"github.com/gofiber/fiber/v2"
)

const (
	// MaxTradesLimit caps the row count served in all-rows mode
	MaxTradesLimit = 5000

	defaultPage     = 1
	defaultPageSize = 50
	minPageSize     = 10
	maxPageSize     = 200

	// shared success caching policy: 1h shared-cache freshness with a 2min
	// stale-while-revalidate grace window
	publicCacheControl = "public, s-maxage=3600, stale-while-revalidate=120"
)

type BenchmarkHandler struct {
	Service *services.BenchmarkService
}

func NewBenchmarkHandler(service *services.BenchmarkService) *BenchmarkHandler {
	return &BenchmarkHandler{Service: service}
}

// PaginationMeta describes the slice a paginated response covers
type PaginationMeta struct {
	Page       int  `json:"page"`
	PageSize   int  `json:"page_size"`
	TotalItems int  `json:"total_items"`
	TotalPages int  `json:"total_pages"`
	HasNext    bool `json:"has_next"`
	HasPrev    bool `json:"has_prev"`
}

// DetailedResultsResponse is the detailed-results endpoint body
type DetailedResultsResponse struct {
	RunID      uint64                  `json:"run_id"`
	RunDate    *time.Time              `json:"run_date"`
	Pagination PaginationMeta          `json:"pagination"`
	Results    []analytics.DetailedRow `json:"results"`
}

// WinRatesView is the single-scope win-rates body (chain-filtered or overall)
type WinRatesView struct {
	RunID               uint64                                 `json:"run_id"`
	RunDate             *time.Time                             `json:"run_date"`
	ChainFilter         *string                                `json:"chain_filter"`
	TotalTradesAnalyzed int                                    `json:"total_trades_analyzed"`
	ProviderAnalytics   map[string]analytics.ProviderAnalytics `json:"provider_analytics"`
}

type detailedParams struct {
	page     int
	pageSize int
	all      bool
	limit    int
	runID    *uint64
}

// GetDetailedResults serves the per-trade detailed view
// GET /api/v1/benchmark/detailed-results?page&page_size&all&limit&run_id
func (h *BenchmarkHandler) GetDetailedResults(c *fiber.Ctx) error {
	params, perr := parseDetailedParams(c)
	if perr != "" {
		return badRequest(c, perr)
	}

	run, err := h.Service.ResolveRun(c.Context(), params.runID)
	if errors.Is(err, store.ErrRunNotFound) {
		return notFound(c)
	}
	if err != nil {
		return h.internalError(c, "detailed-results", err)
	}

	base, baseTag, err := h.Service.DetailedBase(c.Context(), run)
	if err != nil {
		return h.internalError(c, "detailed-results", err)
	}

	reprTag := etag.For(struct {
		BaseTag  string `json:"base_tag"`
		Page     int    `json:"page"`
		PageSize int    `json:"page_size"`
		All      bool   `json:"all"`
		Limit    int    `json:"limit"`
	}{baseTag, params.page, params.pageSize, params.all, params.limit})

	if matchesPrecondition(c, reprTag) {
		return notModified(c, reprTag)
	}

	resp := DetailedResultsResponse{
		RunID:   base.RunID,
		RunDate: base.RunDate,
	}

	totalItems := len(base.Rows)

	if params.all {
		limit := params.limit
		if limit > MaxTradesLimit {
			limit = MaxTradesLimit
		}
		if limit > totalItems {
			limit = totalItems
		}
		resp.Results = base.Rows[:limit]
		resp.Pagination = PaginationMeta{
			Page:       1,
			PageSize:   len(resp.Results),
			TotalItems: totalItems,
			TotalPages: onePageOrNone(totalItems),
		}
	} else {
		totalPages := (totalItems + params.pageSize - 1) / params.pageSize
		offset := (params.page - 1) * params.pageSize
		end := offset + params.pageSize
		if offset > totalItems {
			offset = totalItems
		}
		if end > totalItems {
			end = totalItems
		}
		resp.Results = base.Rows[offset:end]
		resp.Pagination = PaginationMeta{
			Page:       params.page,
			PageSize:   params.pageSize,
			TotalItems: totalItems,
			TotalPages: totalPages,
			HasNext:    params.page < totalPages,
			HasPrev:    params.page > 1,
		}
	}

	setValidatorHeaders(c, reprTag)
	return c.JSON(resp)
}

// GetWinRates serves the provider analytics rollups
// GET /api/v1/benchmark/win-rates?chain&run_id&mode
func (h *BenchmarkHandler) GetWinRates(c *fiber.Ctx) error {
	chain := c.Query("chain")
	mode := c.Query("mode")

	runID, ok := parseOptionalRunID(c)
	if !ok {
		return badRequest(c, "run_id must be a positive integer")
	}

	run, err := h.Service.ResolveRun(c.Context(), runID)
	if errors.Is(err, store.ErrRunNotFound) {
		return notFound(c)
	}
	if err != nil {
		return h.internalError(c, "win-rates", err)
	}

	base, baseTag, err := h.Service.WinRatesBase(c.Context(), run)
	if err != nil {
		return h.internalError(c, "win-rates", err)
	}

	reprTag := etag.For(struct {
		BaseTag string `json:"base_tag"`
		Chain   string `json:"chain"`
		Mode    string `json:"mode"`
	}{baseTag, chain, mode})

	if matchesPrecondition(c, reprTag) {
		return notModified(c, reprTag)
	}

	if mode == "full" {
		// entire base aggregate, for client-side filtering
		setValidatorHeaders(c, reprTag)
		return c.JSON(base)
	}

	view := WinRatesView{
		RunID:               base.RunID,
		RunDate:             base.RunDate,
		TotalTradesAnalyzed: base.TotalTradesAnalyzed,
		ProviderAnalytics:   base.Overall,
	}
	if scoped, known := base.ByChain[chain]; chain != "" && known {
		view.ChainFilter = &chain
		view.TotalTradesAnalyzed = scoped.TotalTradesAnalyzed
		view.ProviderAnalytics = scoped.ProviderAnalytics
	}

	setValidatorHeaders(c, reprTag)
	return c.JSON(view)
}

// parseDetailedParams validates the detailed-results query string.
// The second return value is a human-readable problem description, "" if valid.
func parseDetailedParams(c *fiber.Ctx) (detailedParams, string) {
	params := detailedParams{
		page:     defaultPage,
		pageSize: defaultPageSize,
		limit:    MaxTradesLimit,
		all:      c.Query("all") == "1",
	}

	if raw := c.Query("page"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 1 {
			return params, "page must be a positive integer"
		}
		params.page = v
	}

	if raw := c.Query("page_size"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < minPageSize || v > maxPageSize {
			return params, "page_size must be an integer between 10 and 200"
		}
		params.pageSize = v
	}

	if raw := c.Query("limit"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 0 {
			return params, "limit must be a non-negative integer"
		}
		params.limit = v
	}

	runID, ok := parseOptionalRunID(c)
	if !ok {
		return params, "run_id must be a positive integer"
	}
	params.runID = runID

	return params, ""
}

// parseOptionalRunID reads the run_id param; ok is false on malformed input
func parseOptionalRunID(c *fiber.Ctx) (*uint64, bool) {
	raw := c.Query("run_id")
	if raw == "" {
		return nil, true
	}
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || v == 0 {
		return nil, false
	}
	return &v, true
}

// matchesPrecondition reports whether the request's If-None-Match equals tag
func matchesPrecondition(c *fiber.Ctx, tag string) bool {
	inm := c.Get(fiber.HeaderIfNoneMatch)
	return inm != "" && inm == tag
}

// onePageOrNone is the all-rows-mode page count: 1 when anything exists
func onePageOrNone(totalItems int) int {
	if totalItems == 0 {
		return 0
	}
	return 1
}

func setValidatorHeaders(c *fiber.Ctx, tag string) {
	c.Set(fiber.HeaderETag, tag)
	c.Set(fiber.HeaderCacheControl, publicCacheControl)
}

func notModified(c *fiber.Ctx, tag string) error {
	setValidatorHeaders(c, tag)
	return c.SendStatus(fiber.StatusNotModified)
}

func badRequest(c *fiber.Ctx, detail string) error {
	c.Set(fiber.HeaderCacheControl, "no-store")
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"error":   "Invalid query",
		"details": detail,
	})
}

func notFound(c *fiber.Ctx) error {
	c.Set(fiber.HeaderCacheControl, "no-store")
	return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
		"error": "No benchmark runs found",
	})
}

func (h *BenchmarkHandler) internalError(c *fiber.Ctx, endpoint string, err error) error {
	logger.Error("%s error (request %s): %v", endpoint, middleware.GetRequestID(c), err)
	c.Set(fiber.HeaderCacheControl, "no-store")
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": "Internal Server Error",
	})
}
