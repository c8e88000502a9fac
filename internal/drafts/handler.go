package drafts

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"resume-builder/internal/shared/server/middleware"
	"resume-builder/internal/shared/server/respond"
	"resume-builder/resume/model"
)

type Handler struct {
	Svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	g := rg.Group("/drafts")
	g.POST("", middleware.RequireIdentity(), h.save)
	g.GET("", middleware.RequireIdentity(), h.load)
	g.POST("/claim", middleware.RequireUser(), h.claim)
}

type saveRequest struct {
	Content       model.Content        `json:"content"`
	Customization *model.Customization `json:"customization"`
}

func (h *Handler) save(c *gin.Context) {
	id, _ := middleware.IdentityFromContext(c)
	var req saveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	d, err := h.Svc.Save(c.Request.Context(), id, req.Content, req.Customization)
	if err != nil {
		respond.FromError(c, err)
		return
	}
	respond.OK(c, d)
}

func (h *Handler) load(c *gin.Context) {
	id, _ := middleware.IdentityFromContext(c)
	d, err := h.Svc.Load(c.Request.Context(), id)
	if err != nil {
		respond.FromError(c, err)
		return
	}
	respond.OK(c, d)
}

type claimRequest struct {
	GuestID string `json:"guestId" binding:"required"`
	Title   string `json:"title"`
}

func (h *Handler) claim(c *gin.Context) {
	id, _ := middleware.IdentityFromContext(c)
	var req claimRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "guestId is required", nil)
		return
	}
	res, err := h.Svc.Claim(c.Request.Context(), id, req.GuestID, req.Title)
	if err != nil {
		respond.FromError(c, err)
		return
	}
	c.Set(middleware.ResumeIDKey, res.ID)
	respond.Created(c, gin.H{"resumeId": res.ID, "title": res.Title})
}
