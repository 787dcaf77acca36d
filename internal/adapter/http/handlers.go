package http

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/couchcryptid/motostock-inventory-service/internal/domain"
	"github.com/couchcryptid/motostock-inventory-service/internal/pipeline"
)

const (
	defaultPage    = 1
	defaultPerPage = 10
	maxPerPage     = 100
)

type handlers struct {
	deps   Deps
	logger *slog.Logger
}

type dashboardResponse struct {
	Summary     domain.Summary `json:"summary"`
	Regions     []string       `json:"regions"`
	LastUpdated *time.Time     `json:"last_updated"`
	Loading     bool           `json:"loading"`
	HasData     bool           `json:"has_data"`
	State       pipeline.State `json:"state"`
	Unread      int            `json:"unread_notifications"`
}

func (h *handlers) dashboard(c *gin.Context) {
	snap := h.deps.Store.Snapshot()
	filtered := domain.FilterRegionSearch(snap.Records, c.Query("region"), c.Query("search"))

	resp := dashboardResponse{
		Summary: domain.Summarize(filtered),
		Regions: domain.Regions(),
		Loading: snap.Loading,
		HasData: snap.HasData,
		State:   h.deps.Scheduler.State(),
		Unread:  h.deps.Store.UnreadCount(),
	}
	if !snap.LastUpdated.IsZero() {
		resp.LastUpdated = &snap.LastUpdated
	}
	c.JSON(http.StatusOK, resp)
}

func (h *handlers) inventory(c *gin.Context) {
	records := domain.FilterRegionSearch(h.deps.Store.Records(), c.Query("region"), c.Query("search"))
	filter := domain.InventoryFilter{
		Category: c.Query("category"),
		Band:     c.Query("band"),
		Demand:   c.Query("demand"),
	}
	page, perPage := parsePagination(c)
	c.JSON(http.StatusOK, domain.Paginate(filter.Apply(records), page, perPage))
}

// parsePagination reads page and per_page, falling back to defaults on bad input.
func parsePagination(c *gin.Context) (int, int) {
	page, perPage := defaultPage, defaultPerPage
	if p, err := strconv.Atoi(c.Query("page")); err == nil && p > 0 {
		page = p
	}
	if n, err := strconv.Atoi(c.Query("per_page")); err == nil && n > 0 {
		perPage = min(n, maxPerPage)
	}
	return page, perPage
}

func (h *handlers) cityMap(c *gin.Context) {
	records := domain.FilterRegionSearch(h.deps.Store.Records(), c.Query("region"), c.Query("search"))
	c.JSON(http.StatusOK, gin.H{"markers": domain.CityMarkers(c.Request.Context(), records, h.deps.Place)})
}

func (h *handlers) transferCandidates(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid record id"})
		return
	}
	source, err := h.deps.Store.Record(id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"source":     source,
		"candidates": domain.TransferCandidates(h.deps.Store.Records(), source),
	})
}

type restockRequest struct {
	City     string `json:"city" binding:"required"`
	Category string `json:"category" binding:"required"`
	Item     string `json:"item" binding:"required"`
}

func (h *handlers) restock(c *gin.Context) {
	var req restockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ref, ok := domain.LookupCategory(req.Category)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown category: " + req.Category})
		return
	}

	h.deps.Store.Restock(req.City, ref.ID, req.Item)
	c.JSON(http.StatusAccepted, gin.H{"status": "restock scheduled"})
}

type transferRequest struct {
	SourceCity string `json:"source_city" binding:"required"`
	TargetCity string `json:"target_city" binding:"required"`
	Item       string `json:"item" binding:"required"`
	Amount     int    `json:"amount"`
}

func (h *handlers) transfer(c *gin.Context) {
	var req transferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Amount <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "amount must be positive"})
		return
	}
	if req.SourceCity == req.TargetCity {
		c.JSON(http.StatusBadRequest, gin.H{"error": "source and target city must differ"})
		return
	}

	source, err := h.deps.Store.FindRecord(req.SourceCity, req.Item)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "source: " + err.Error()})
		return
	}
	if _, err := h.deps.Store.FindRecord(req.TargetCity, req.Item); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "target: " + err.Error()})
		return
	}
	if req.Amount > source.Stock {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "amount exceeds source stock of " + strconv.Itoa(source.Stock),
		})
		return
	}

	h.deps.Store.Transfer(req.SourceCity, req.TargetCity, req.Item, req.Amount)

	// Re-read after the move; a concurrent refresh may have replaced the data.
	updatedSource, _ := h.deps.Store.FindRecord(req.SourceCity, req.Item)
	updatedTarget, _ := h.deps.Store.FindRecord(req.TargetCity, req.Item)
	c.JSON(http.StatusOK, gin.H{"source": updatedSource, "target": updatedTarget})
}

func (h *handlers) notifications(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"notifications": h.deps.Store.Notifications(),
		"unread":        h.deps.Store.UnreadCount(),
	})
}

func (h *handlers) markRead(c *gin.Context) {
	if err := h.deps.Store.MarkRead(c.Param("id")); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *handlers) clearNotification(c *gin.Context) {
	if err := h.deps.Store.ClearNotification(c.Param("id")); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

type settingsResponse struct {
	AutoRefresh       bool   `json:"auto_refresh"`
	RefreshInterval   int    `json:"refresh_interval_seconds"`
	Notifications     bool   `json:"notifications"`
	RestockWebhookURL string `json:"restock_webhook_url"`
}

// settingsRequest is a partial update; omitted fields keep their value.
type settingsRequest struct {
	AutoRefresh     *bool `json:"auto_refresh"`
	RefreshInterval *int  `json:"refresh_interval_seconds"`
	Notifications   *bool `json:"notifications"`
}

func (h *handlers) settingsBody(s domain.Settings) settingsResponse {
	return settingsResponse{
		AutoRefresh:       s.AutoRefresh,
		RefreshInterval:   int(s.RefreshInterval / time.Second),
		Notifications:     s.Notifications,
		RestockWebhookURL: h.deps.RestockWebhookURL,
	}
}

func (h *handlers) getSettings(c *gin.Context) {
	c.JSON(http.StatusOK, h.settingsBody(h.deps.Store.Settings()))
}

func (h *handlers) putSettings(c *gin.Context) {
	var req settingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	settings := h.deps.Store.Settings()
	if req.AutoRefresh != nil {
		settings.AutoRefresh = *req.AutoRefresh
	}
	if req.RefreshInterval != nil {
		settings.RefreshInterval = time.Duration(*req.RefreshInterval) * time.Second
	}
	if req.Notifications != nil {
		settings.Notifications = *req.Notifications
	}

	if err := h.deps.Scheduler.ApplySettings(settings); err != nil {
		if errors.Is(err, pipeline.ErrInvalidInterval) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.logger.Error("apply settings failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	c.JSON(http.StatusOK, h.settingsBody(h.deps.Store.Settings()))
}

func (h *handlers) refresh(c *gin.Context) {
	h.deps.Scheduler.RefreshNow(pipeline.TriggerManual)
	c.JSON(http.StatusAccepted, gin.H{"status": "refresh started"})
}

func (h *handlers) insights(c *gin.Context) {
	if h.deps.Insights == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "insight webhook not configured"})
		return
	}
	insight, err := h.deps.Insights.Analyze(c.Request.Context())
	if err != nil {
		h.logger.Warn("insight analysis failed", "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, insight)
}
