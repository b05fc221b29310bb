package progress

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"galleryhub/internal/auth"
	"galleryhub/internal/sync"
	"galleryhub/pkg/models"
)

type Handler struct {
	Repo *Repo
	Hub  *sync.Hub
}

func NewHandler(repo *Repo, hub *sync.Hub) *Handler {
	return &Handler{Repo: repo, Hub: hub}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/progress", h.list)
	rg.GET("/progress/latest", h.latest)
	rg.POST("/progress", h.add)
}

type addReq struct {
	GID   int64  `json:"gid"`
	Token string `json:"token"`
	Page  int    `json:"page"`
}

func (h *Handler) add(c *gin.Context) {
	claims := auth.MustGetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req addReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	token := strings.TrimSpace(req.Token)
	if req.GID <= 0 || !models.ValidToken(token) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "gid and token required"})
		return
	}
	if req.Page < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "page must be >= 0"})
		return
	}

	entry := models.ReadProgress{
		UserID: claims.UserID,
		GID:    req.GID,
		Token:  token,
		Page:   req.Page,
		At:     time.Now().UTC(),
	}

	if err := h.Repo.Add(c.Request.Context(), entry); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "save failed"})
		return
	}

	if h.Hub != nil {
		ev := sync.GalleryEvent{
			Type:   "progress.update",
			UserID: claims.UserID,
			GID:    req.GID,
			Token:  token,
			Page:   req.Page,
			At:     entry.At,
		}
		go h.Hub.Broadcast(ev)
	}

	c.JSON(http.StatusOK, entry)
}

func (h *Handler) list(c *gin.Context) {
	claims := auth.MustGetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	gid, token, ok := identityQuery(c)
	if !ok {
		return
	}

	limit := parseInt(c.Query("limit"), 50)
	offset := parseInt(c.Query("offset"), 0)

	items, total, err := h.Repo.List(c.Request.Context(), claims.UserID, gid, token, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"total":  total,
		"limit":  limit,
		"offset": offset,
		"items":  items,
	})
}

func (h *Handler) latest(c *gin.Context) {
	claims := auth.MustGetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	gid, token, ok := identityQuery(c)
	if !ok {
		return
	}

	entry, err := h.Repo.Latest(c.Request.Context(), claims.UserID, gid, token)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "get failed"})
		return
	}
	if entry == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no history"})
		return
	}
	c.JSON(http.StatusOK, entry)
}

func identityQuery(c *gin.Context) (int64, string, bool) {
	gid, err := strconv.ParseInt(strings.TrimSpace(c.Query("gid")), 10, 64)
	token := strings.TrimSpace(c.Query("token"))
	if err != nil || gid <= 0 || !models.ValidToken(token) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "gid and token required"})
		return 0, "", false
	}
	return gid, token, true
}

func parseInt(s string, def int) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}
