package comments

import (
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"galleryhub/internal/auth"
	"galleryhub/pkg/models"
)

type Handler struct {
	Repo *Repo
}

func NewHandler(repo *Repo) *Handler {
	return &Handler{Repo: repo}
}

func (h *Handler) RegisterPublicRoutes(rg *gin.RouterGroup) {
	rg.GET("/galleries/:gid/:token/comments", h.listByGallery)
}

func (h *Handler) RegisterProtectedRoutes(rg *gin.RouterGroup) {
	rg.POST("/comments", h.create)
	rg.DELETE("/comments/:id", h.delete)
}

type createReq struct {
	GID    int64    `json:"gid"`
	Token  string   `json:"token"`
	Rating *float64 `json:"rating,omitempty"`
	Text   string   `json:"text"`
}

func validRating(r float64) bool {
	if r < 0.5 || r > 5 {
		return false
	}
	// half-star steps only
	return r*2 == math.Trunc(r*2)
}

func (h *Handler) create(c *gin.Context) {
	claims := auth.MustGetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req createReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	token := strings.TrimSpace(req.Token)
	if req.GID <= 0 || !models.ValidToken(token) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "gid and token required"})
		return
	}

	text := strings.TrimSpace(req.Text)
	if req.Rating == nil && text == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "rating or text required"})
		return
	}
	if req.Rating != nil && !validRating(*req.Rating) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "rating must be 0.5-5.0 in 0.5 steps"})
		return
	}

	comment, err := h.Repo.Create(c.Request.Context(), claims.UserID, req.GID, token, req.Rating, text)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create failed"})
		return
	}

	c.JSON(http.StatusCreated, comment)
}

func (h *Handler) listByGallery(c *gin.Context) {
	gid, err := strconv.ParseInt(strings.TrimSpace(c.Param("gid")), 10, 64)
	token := strings.TrimSpace(c.Param("token"))
	if err != nil || gid <= 0 || !models.ValidToken(token) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid gid or token"})
		return
	}

	limit := parseInt(c.Query("limit"), 20)
	offset := parseInt(c.Query("offset"), 0)

	items, err := h.Repo.ListByGallery(c.Request.Context(), gid, token, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}

	mean, hasMean, err := h.Repo.MeanRating(c.Request.Context(), gid, token)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}

	resp := gin.H{
		"limit":  limit,
		"offset": offset,
		"items":  items,
	}
	if hasMean {
		resp["mean_rating"] = mean
	}

	c.JSON(http.StatusOK, resp)
}

func (h *Handler) delete(c *gin.Context) {
	claims := auth.MustGetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	id, err := strconv.ParseInt(strings.TrimSpace(c.Param("id")), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	deleted, err := h.Repo.Delete(c.Request.Context(), id, claims.UserID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete failed"})
		return
	}
	if !deleted {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "deleted"})
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
