package favorites

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
	rg.GET("/favorites", h.list)
	rg.POST("/favorites", h.addOrUpdate)
	rg.PUT("/favorites/:gid/:token", h.addOrUpdate)
	rg.DELETE("/favorites/:gid/:token", h.remove)
	rg.GET("/favorites/:gid/:token", h.getOne)
}

type upsertReq struct {
	GID   int64  `json:"gid"` // required for POST
	Token string `json:"token"`
	Slot  *int   `json:"slot"`
	Note  string `json:"note"`
}

func (h *Handler) addOrUpdate(c *gin.Context) {
	claims := auth.MustGetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req upsertReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	gid := req.GID
	token := strings.TrimSpace(req.Token)
	if gid == 0 && c.Param("gid") != "" {
		gid, _ = strconv.ParseInt(c.Param("gid"), 10, 64)
	}
	if token == "" {
		token = strings.TrimSpace(c.Param("token"))
	}
	if gid <= 0 || !models.ValidToken(token) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "gid and token required"})
		return
	}

	if req.Slot == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "slot required"})
		return
	}
	if *req.Slot < 0 || *req.Slot > 9 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "slot must be in [0, 9]"})
		return
	}

	item := models.FavoriteItem{
		UserID: claims.UserID,
		GID:    gid,
		Token:  token,
		Slot:   *req.Slot,
		Note:   strings.TrimSpace(req.Note),
	}
	if err := h.Repo.Upsert(c.Request.Context(), item); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "save failed"})
		return
	}

	// Return canonical stored row including updated_at
	saved, err := h.Repo.Get(c.Request.Context(), claims.UserID, gid, token)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "fetch saved failed"})
		return
	}
	if saved == nil {
		saved = &item
		saved.UpdatedAt = time.Now().UTC()
	}

	if h.Hub != nil {
		slot := saved.Slot
		ev := sync.GalleryEvent{
			Type:   "favorite.update",
			UserID: claims.UserID,
			GID:    gid,
			Token:  token,
			Slot:   &slot,
			At:     time.Now().UTC(),
		}
		go h.Hub.Broadcast(ev)
	}

	c.JSON(http.StatusOK, saved)
}

func (h *Handler) list(c *gin.Context) {
	claims := auth.MustGetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	slot := -1
	if s := strings.TrimSpace(c.Query("slot")); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 || n > 9 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid slot filter"})
			return
		}
		slot = n
	}

	limit := parseInt(c.Query("limit"), 20)
	offset := parseInt(c.Query("offset"), 0)

	items, total, err := h.Repo.List(c.Request.Context(), claims.UserID, slot, limit, offset)
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

func (h *Handler) remove(c *gin.Context) {
	claims := auth.MustGetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	gid, token, ok := identityParams(c)
	if !ok {
		return
	}

	deleted, err := h.Repo.Delete(c.Request.Context(), claims.UserID, gid, token)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete failed"})
		return
	}
	if !deleted {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}

	if h.Hub != nil {
		ev := sync.GalleryEvent{
			Type:   "favorite.delete",
			UserID: claims.UserID,
			GID:    gid,
			Token:  token,
			At:     time.Now().UTC(),
		}
		go h.Hub.Broadcast(ev)
	}

	c.JSON(http.StatusOK, gin.H{"message": "deleted"})
}

func (h *Handler) getOne(c *gin.Context) {
	claims := auth.MustGetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	gid, token, ok := identityParams(c)
	if !ok {
		return
	}

	it, err := h.Repo.Get(c.Request.Context(), claims.UserID, gid, token)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "get failed"})
		return
	}
	if it == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	c.JSON(http.StatusOK, it)
}

func identityParams(c *gin.Context) (int64, string, bool) {
	gid, err := strconv.ParseInt(strings.TrimSpace(c.Param("gid")), 10, 64)
	token := strings.TrimSpace(c.Param("token"))
	if err != nil || gid <= 0 || !models.ValidToken(token) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid gid or token"})
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
