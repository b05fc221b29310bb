package gallery

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"galleryhub/pkg/models"
)

type Handler struct {
	Repo *Repo
}

func NewHandler(repo *Repo) *Handler {
	return &Handler{Repo: repo}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.list)            // GET /galleries
	rg.GET("/:gid/:token", h.get) // GET /galleries/:gid/:token
}

func (h *Handler) list(c *gin.Context) {
	q := ListQuery{
		Q:         c.Query("q"),
		Category:  models.ParseCategory(c.Query("category")),
		Language:  models.ParseLanguage(c.Query("language")),
		MinRating: parseFloat(c.Query("min_rating"), 0),
		Invalid:   c.Query("invalid") == "true",
		Limit:     parseInt(c.Query("limit"), 20),
		Offset:    parseInt(c.Query("offset"), 0),
	}

	total, err := h.Repo.Count(c.Request.Context(), q)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "count failed"})
		return
	}

	items, err := h.Repo.List(c.Request.Context(), q)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"total":  total,
		"limit":  q.Limit,
		"offset": q.Offset,
		"items":  items,
	})
}

func (h *Handler) get(c *gin.Context) {
	gid, err := strconv.ParseInt(c.Param("gid"), 10, 64)
	if err != nil || gid <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid gid"})
		return
	}
	token := strings.TrimSpace(c.Param("token"))
	if !models.ValidToken(token) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid token"})
		return
	}

	g, err := h.Repo.Get(c.Request.Context(), gid, token)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "get failed"})
		return
	}
	if g == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	c.JSON(http.StatusOK, g)
}

func parseInt(s string, def int) int {
	if strings.TrimSpace(s) == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

func parseFloat(s string, def float64) float64 {
	if strings.TrimSpace(s) == "" {
		return def
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return def
	}
	return f
}
