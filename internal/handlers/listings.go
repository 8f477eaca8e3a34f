package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"carscout/internal/models"
	"carscout/internal/session"
	"carscout/internal/storage"
	"carscout/internal/util"
	"carscout/internal/validation"
	"carscout/internal/workflow"
)

const (
	SessionHeader = "X-Session-ID"
	sessionCookie = "carscout_session"

	selectorHint = "This may be caused by a missing or changed selector on the website."
)

// Pinger reports whether the cache store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type ListingsHandler struct {
	svc      *workflow.Service
	sessions *session.Store
	files    *storage.CSVStore
	db       Pinger
	log      zerolog.Logger
}

// ScrapeRequest is the input of a scrape plus the number of pages to fetch.
type ScrapeRequest struct {
	validation.Input
	Pages int `json:"pages"`
}

// ValidateResponse describes whether actions may run for an input.
type ValidateResponse struct {
	Success bool          `json:"success"`
	Ready   bool          `json:"ready"`
	Hint    string        `json:"hint,omitempty"`
	Invalid []string      `json:"invalid,omitempty"`
	Query   *models.Query `json:"query,omitempty"`
}

// CacheResponse carries the latest stored result for a query, if any.
type CacheResponse struct {
	Success     bool               `json:"success"`
	Found       bool               `json:"found"`
	Entry       *models.CacheEntry `json:"entry,omitempty"`
	ExtractedAt *time.Time         `json:"extractedAt,omitempty"`
	Rows        []models.ResultRow `json:"rows,omitempty"`
	Download    string             `json:"download,omitempty"`
}

type DetectResponse struct {
	Success bool `json:"success"`
	Pages   int  `json:"pages"`
}

type ScrapeResponse struct {
	Success     bool               `json:"success"`
	NoResults   bool               `json:"noResults"`
	Message     string             `json:"message,omitempty"`
	Pages       int                `json:"pages"`
	Count       int                `json:"count"`
	ExtractedAt *time.Time         `json:"extractedAt,omitempty"`
	Rows        []models.ResultRow `json:"rows,omitempty"`
	Filename    string             `json:"filename,omitempty"`
	Download    string             `json:"download,omitempty"`
	CacheSaved  bool               `json:"cacheSaved"`
}

func NewListingsHandler(svc *workflow.Service, sessions *session.Store, files *storage.CSVStore, db Pinger, log zerolog.Logger) *ListingsHandler {
	return &ListingsHandler{
		svc:      svc,
		sessions: sessions,
		files:    files,
		db:       db,
		log:      log.With().Str("module", "handlers").Logger(),
	}
}

// Validate godoc
// @Summary Check search input
// @Description Reports whether brand, model and max mileage are usable and which fields need attention.
// @Tags listings
// @Accept json
// @Produce json
// @Param input body validation.Input true "Raw search input"
// @Success 200 {object} handlers.ValidateResponse
// @Failure 400 {object} map[string]interface{} "Malformed request body"
// @Router /api/validate [post]
func (h *ListingsHandler) Validate(c *gin.Context) {
	var in validation.Input
	if err := c.ShouldBindJSON(&in); err != nil {
		util.ErrorResponse(c, http.StatusBadRequest, util.KindValidation, "Invalid request format", err)
		return
	}

	res := h.svc.Validate(in)
	resp := ValidateResponse{
		Success: true,
		Ready:   res.Ready(),
		Hint:    res.Hint(),
		Invalid: res.Invalid,
	}
	if res.Ready() {
		q := res.Query()
		resp.Query = &q
	}
	c.JSON(http.StatusOK, resp)
}

// Cache godoc
// @Summary Latest cached result
// @Description Returns the most recent stored result for the query, with a download link for its CSV file.
// @Tags listings
// @Produce json
// @Param brand query string true "Car brand"
// @Param model query string true "Car model"
// @Param maxMileage query string true "Maximum mileage in km"
// @Success 200 {object} handlers.CacheResponse
// @Failure 400 {object} map[string]interface{} "Invalid input"
// @Failure 404 {object} map[string]interface{} "Cached file missing or unreadable"
// @Router /api/cache [get]
func (h *ListingsHandler) Cache(c *gin.Context) {
	var in validation.Input
	if err := c.ShouldBindQuery(&in); err != nil {
		util.ErrorResponse(c, http.StatusBadRequest, util.KindValidation, "Invalid query parameters", err)
		return
	}

	cached, err := h.svc.Cached(c.Request.Context(), in)
	if err != nil {
		h.fail(c, err)
		return
	}
	if cached == nil {
		c.JSON(http.StatusOK, CacheResponse{Success: true})
		return
	}

	extractedAt := cached.Results.ExtractedAt
	c.JSON(http.StatusOK, CacheResponse{
		Success:     true,
		Found:       true,
		Entry:       &cached.Entry,
		ExtractedAt: nonZero(extractedAt),
		Rows:        cached.Results.Rows,
		Download:    downloadPath(cached.Entry.Filename),
	})
}

// DetectPages godoc
// @Summary Detect result pages
// @Description Opens the search in a headless browser, applies the mileage filter and reads the page count. The count is stored in the session and bounds later scrapes.
// @Tags listings
// @Accept json
// @Produce json
// @Param X-Session-ID header string false "Session id returned by a previous call"
// @Param input body validation.Input true "Search input"
// @Success 200 {object} handlers.DetectResponse
// @Failure 400 {object} map[string]interface{} "Invalid input"
// @Failure 409 {object} map[string]interface{} "Another action is running"
// @Failure 502 {object} map[string]interface{} "Page detection failed"
// @Router /api/detect-pages [post]
func (h *ListingsHandler) DetectPages(c *gin.Context) {
	var in validation.Input
	if err := c.ShouldBindJSON(&in); err != nil {
		util.ErrorResponse(c, http.StatusBadRequest, util.KindValidation, "Invalid request format", err)
		return
	}

	st := h.session(c)
	pages, err := h.svc.DetectPages(c.Request.Context(), st, in)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, DetectResponse{Success: true, Pages: pages})
}

// Scrape godoc
// @Summary Scrape listings
// @Description Extracts pages 1..pages in order. Any page failure abandons the run. Completed runs are saved as CSV and recorded in the cache.
// @Tags listings
// @Accept json
// @Produce json
// @Param X-Session-ID header string false "Session id returned by a previous call"
// @Param request body handlers.ScrapeRequest true "Search input and pages to scrape"
// @Success 200 {object} handlers.ScrapeResponse
// @Failure 400 {object} map[string]interface{} "Invalid input or page count"
// @Failure 409 {object} map[string]interface{} "Pages not detected yet, or another action is running"
// @Failure 502 {object} map[string]interface{} "Extraction failed"
// @Router /api/scrape [post]
func (h *ListingsHandler) Scrape(c *gin.Context) {
	var req ScrapeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.ErrorResponse(c, http.StatusBadRequest, util.KindValidation, "Invalid request format", err)
		return
	}

	st := h.session(c)
	out, err := h.svc.Scrape(c.Request.Context(), st, req.Input, req.Pages)
	if err != nil {
		h.fail(c, err)
		return
	}

	if out.NoResults {
		c.JSON(http.StatusOK, ScrapeResponse{
			Success:   true,
			NoResults: true,
			Message:   workflow.ErrNoResults.Error(),
			Pages:     out.Pages,
		})
		return
	}

	resp := ScrapeResponse{
		Success:     true,
		Pages:       out.Pages,
		Count:       out.Results.Len(),
		ExtractedAt: nonZero(out.Results.ExtractedAt),
		Rows:        out.Results.Rows,
		Filename:    out.Filename,
		Download:    downloadPath(out.Filename),
		CacheSaved:  out.CacheErr == nil,
	}
	if out.CacheErr != nil {
		resp.Message = fmt.Sprintf("Results saved but not cached: %v", out.CacheErr)
	}
	c.JSON(http.StatusOK, resp)
}

// Download godoc
// @Summary Download a result file
// @Tags listings
// @Produce text/csv
// @Param filename path string true "Result file name"
// @Success 200 {file} file
// @Failure 400 {object} map[string]interface{} "Invalid file name"
// @Failure 404 {object} map[string]interface{} "File not found"
// @Router /api/download/{filename} [get]
func (h *ListingsHandler) Download(c *gin.Context) {
	name := c.Param("filename")
	path, err := h.files.Path(name)
	if err != nil {
		util.ErrorResponse(c, http.StatusBadRequest, util.KindValidation, "Invalid file name", err)
		return
	}
	if _, err := os.Stat(path); err != nil {
		util.ErrorResponse(c, http.StatusNotFound, util.KindNotFound, "File not found", err)
		return
	}

	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.FileAttachment(path, name)
}

// Session godoc
// @Summary Current session
// @Description Returns the session id and the page count detected for the last query.
// @Tags session
// @Produce json
// @Param X-Session-ID header string false "Session id returned by a previous call"
// @Success 200 {object} session.Snapshot
// @Router /api/session [get]
func (h *ListingsHandler) Session(c *gin.Context) {
	c.JSON(http.StatusOK, h.session(c).Snapshot())
}

// Health godoc
// @Summary Health check
// @Tags system
// @Produce json
// @Success 200 {object} map[string]string
// @Failure 503 {object} map[string]interface{}
// @Router /api/health [get]
func (h *ListingsHandler) Health(c *gin.Context) {
	if err := h.db.Ping(c.Request.Context()); err != nil {
		util.ErrorResponse(c, http.StatusServiceUnavailable, util.KindInternal, "Cache store unavailable", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// session resolves the caller's session from the header or cookie and echoes
// its id back on both.
func (h *ListingsHandler) session(c *gin.Context) *session.State {
	id := c.GetHeader(SessionHeader)
	if id == "" {
		id, _ = c.Cookie(sessionCookie)
	}

	st := h.sessions.Get(id)
	c.Header(SessionHeader, st.ID())
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(sessionCookie, st.ID(), 0, "/", "", false, true)
	return st
}

func (h *ListingsHandler) fail(c *gin.Context, err error) {
	var (
		validationErr *workflow.ValidationError
		rangeErr      *workflow.PageRangeError
		discoveryErr  *workflow.DiscoveryError
		extractionErr *workflow.ExtractionError
		cacheErr      *workflow.CacheReadError
	)

	h.log.Warn().Err(err).Str("path", c.Request.URL.Path).Msg("Action failed")

	switch {
	case errors.As(err, &validationErr):
		util.ErrorResponse(c, http.StatusBadRequest, util.KindValidation, validationErr.Hint, err)
	case errors.As(err, &rangeErr):
		util.ErrorResponse(c, http.StatusBadRequest, util.KindPageRange, "Choose a page count within the detected range", err)
	case errors.Is(err, workflow.ErrPagesUnknown):
		util.ErrorResponse(c, http.StatusConflict, util.KindPagesUnknown, "Detect pages for this search first", err)
	case errors.As(err, &discoveryErr):
		util.ErrorResponse(c, http.StatusBadGateway, util.KindDiscovery, "Failed to detect pages. "+selectorHint, err)
	case errors.As(err, &extractionErr):
		util.ErrorResponse(c, http.StatusBadGateway, util.KindExtraction,
			fmt.Sprintf("Scraping failed on page %d. %s", extractionErr.Page, selectorHint), err)
	case errors.As(err, &cacheErr):
		util.ErrorResponse(c, http.StatusNotFound, util.KindCacheRead, "Cached results could not be loaded", err)
	default:
		util.ErrorResponse(c, http.StatusInternalServerError, util.KindInternal, "Something went wrong", err)
	}
}

func downloadPath(name string) string {
	return "/api/download/" + url.PathEscape(name)
}

func nonZero(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
