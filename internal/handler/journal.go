package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/SimoHua/symphonyx/internal/logger"
	"github.com/SimoHua/symphonyx/internal/middleware"
	"github.com/SimoHua/symphonyx/internal/model"
	"github.com/SimoHua/symphonyx/internal/service"

	"github.com/gin-gonic/gin"
)

type JournalReader interface {
	Section(ctx context.Context, t time.Time, viewer *model.User) ([]*model.TeamNode, error)
	Chapter(ctx context.Context, weekOf, now time.Time, viewer *model.User) ([]*model.TeamNode, error)
	HasSectionToday(ctx context.Context, now time.Time) (bool, error)
	HasChapterWeek(ctx context.Context, now time.Time) (bool, error)
	HasPostParagraphToday(ctx context.Context, userName string, now time.Time) (bool, error)
	RecentJournals(ctx context.Context, page, size int) ([]*model.JournalView, int, error)
}

type JournalHandler struct {
	journals JournalReader
	labels   service.Labels
	loc      *time.Location
	now      func() time.Time
}

func NewJournalHandler(journals JournalReader, labels service.Labels, loc *time.Location) *JournalHandler {
	return &JournalHandler{journals: journals, labels: labels, loc: loc, now: time.Now}
}

// Register mounts the read-only journal routes on g.
func (h *JournalHandler) Register(g *gin.RouterGroup) {
	j := g.Group("/journals")
	j.GET("/section", h.Section)
	j.GET("/chapter", h.Chapter)
	j.GET("/chapter/export", h.ExportChapter)
	j.GET("/status", h.Status)
	j.GET("/posted", h.Posted)
	j.GET("/recent", h.Recent)
}

// date parses ?date=YYYY-MM-DD in the journal location, defaulting to now.
func (h *JournalHandler) date(c *gin.Context) (time.Time, bool) {
	raw := c.Query("date")
	if raw == "" {
		return h.now().In(h.loc), true
	}
	t, err := time.ParseInLocation(time.DateOnly, raw, h.loc)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date, want YYYY-MM-DD"})
		return time.Time{}, false
	}
	return t, true
}

// Rollup failures are logged by the service; clients get an empty team list.
func (h *JournalHandler) Section(c *gin.Context) {
	t, ok := h.date(c)
	if !ok {
		return
	}
	teams, _ := h.journals.Section(c.Request.Context(), t, middleware.ViewerFrom(c))
	c.JSON(http.StatusOK, gin.H{"teams": teams})
}

func (h *JournalHandler) Chapter(c *gin.Context) {
	t, ok := h.date(c)
	if !ok {
		return
	}
	teams, _ := h.journals.Chapter(c.Request.Context(), t, h.now(), middleware.ViewerFrom(c))
	c.JSON(http.StatusOK, gin.H{"teams": teams})
}

func (h *JournalHandler) ExportChapter(c *gin.Context) {
	t, ok := h.date(c)
	if !ok {
		return
	}
	teams, err := h.journals.Chapter(c.Request.Context(), t, h.now(), nil)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "chapter unavailable"})
		return
	}
	buf, err := service.ChapterWorkbook(teams, h.labels)
	if err != nil {
		logger.Error("journal.export", "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "export failed"})
		return
	}
	name := "chapter-" + t.Format(time.DateOnly) + ".xlsx"
	c.Header("Content-Disposition", `attachment; filename="`+name+`"`)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}

func (h *JournalHandler) Status(c *gin.Context) {
	now := h.now()
	section, err := h.journals.HasSectionToday(c.Request.Context(), now)
	if err != nil {
		logger.Error("journal.status", "err", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}
	chapter, err := h.journals.HasChapterWeek(c.Request.Context(), now)
	if err != nil {
		logger.Error("journal.status", "err", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"has_section_today": section, "has_chapter_week": chapter})
}

func (h *JournalHandler) Posted(c *gin.Context) {
	name := c.Query("user")
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user is required"})
		return
	}
	posted, err := h.journals.HasPostParagraphToday(c.Request.Context(), name, h.now())
	if err != nil {
		logger.Error("journal.posted", "user", name, "err", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"posted": posted})
}

func (h *JournalHandler) Recent(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("p", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("size", "20"))
	if size > 100 {
		size = 100
	}
	journals, pageCount, err := h.journals.RecentJournals(c.Request.Context(), page, size)
	if err != nil {
		logger.Error("journal.recent", "err", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"journals": journals, "page_count": pageCount})
}
