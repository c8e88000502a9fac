package resumes

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"resume-builder/internal/shared/auth"
	"resume-builder/internal/shared/server/middleware"
	"resume-builder/internal/shared/server/respond"
	"resume-builder/resume/model"
)

// SharePasswordHeader carries the password for a protected share link.
const SharePasswordHeader = "X-Share-Password"

const maxPhotoRequestSize = MaxPhotoBytes + 1<<20

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches owner routes (signed-in users only) and public share routes.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	owned := rg.Group("/resumes", middleware.RequireUser())
	owned.POST("", h.create)
	owned.GET("", h.list)
	owned.GET("/trash", h.listDeleted)
	owned.GET("/:id", h.get)
	owned.PUT("/:id", h.update)
	owned.DELETE("/:id", h.softDelete)
	owned.POST("/:id/restore", h.restore)
	owned.DELETE("/:id/permanent", h.permanentDelete)
	owned.POST("/:id/duplicate", h.duplicate)
	owned.POST("/:id/photo", h.uploadPhoto)
	owned.POST("/:id/versions", h.saveVersion)
	owned.GET("/:id/versions", h.listVersions)
	owned.GET("/:id/versions/compare", h.compareVersions)
	owned.GET("/:id/versions/:version", h.getVersion)
	owned.GET("/:id/versions/:version/diff", h.compareWithCurrent)
	owned.POST("/:id/versions/:version/restore", h.restoreVersion)
	owned.PUT("/:id/share", h.updateShare)

	rg.GET("/shared/:shareId", h.getShared)
}

// SharePassword reads the share password from the header, falling back to the query.
func SharePassword(c *gin.Context) string {
	if v := c.GetHeader(SharePasswordHeader); v != "" {
		return v
	}
	return c.Query("password")
}

func resumeParam(c *gin.Context) string {
	id := strings.TrimSpace(c.Param("id"))
	c.Set(middleware.ResumeIDKey, id)
	return id
}

func pagination(c *gin.Context) (int, int) {
	limit, offset := defaultListLimit, 0
	if v := c.Query("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			limit = parsed
		}
	}
	if v := c.Query("offset"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			offset = parsed
		}
	}
	return limit, offset
}

func versionParam(c *gin.Context, name string, raw string) (int, bool) {
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || v < 1 {
		respond.Error(c, http.StatusBadRequest, "validation_error", name+" must be a positive integer", nil)
		return 0, false
	}
	return v, true
}

type createRequest struct {
	Title         string               `json:"title"`
	Content       model.Content        `json:"content"`
	Customization *model.Customization `json:"customization"`
}

func (h *Handler) create(c *gin.Context) {
	id, _ := middleware.IdentityFromContext(c)
	var req createRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
			return
		}
	}
	res, err := h.Svc.Create(c.Request.Context(), id, CreateInput{
		Title:         req.Title,
		Content:       req.Content,
		Customization: req.Customization,
	})
	if err != nil {
		respond.FromError(c, err)
		return
	}
	c.Set(middleware.ResumeIDKey, res.ID)
	respond.Created(c, toResponse(res))
}

func (h *Handler) list(c *gin.Context) {
	h.listWith(c, h.Svc.List)
}

func (h *Handler) listDeleted(c *gin.Context) {
	h.listWith(c, h.Svc.ListDeleted)
}

func (h *Handler) listWith(c *gin.Context, fn func(context.Context, auth.Identity, int, int) ([]Resume, error)) {
	id, _ := middleware.IdentityFromContext(c)
	limit, offset := pagination(c)
	items, err := fn(c.Request.Context(), id, limit, offset)
	if err != nil {
		respond.FromError(c, err)
		return
	}
	out := make([]ResumeSummary, 0, len(items))
	for _, r := range items {
		out = append(out, toSummary(r))
	}
	respond.OK(c, out)
}

func (h *Handler) get(c *gin.Context) {
	id, _ := middleware.IdentityFromContext(c)
	res, err := h.Svc.Get(c.Request.Context(), id, resumeParam(c))
	if err != nil {
		respond.FromError(c, err)
		return
	}
	respond.OK(c, toResponse(res))
}

type updateRequest struct {
	Title         *string              `json:"title"`
	Content       *model.Content       `json:"content"`
	Customization *model.Customization `json:"customization"`
}

func (h *Handler) update(c *gin.Context) {
	id, _ := middleware.IdentityFromContext(c)
	var req updateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	res, err := h.Svc.Update(c.Request.Context(), id, resumeParam(c), UpdateInput{
		Title:         req.Title,
		Content:       req.Content,
		Customization: req.Customization,
	})
	if err != nil {
		respond.FromError(c, err)
		return
	}
	respond.OK(c, toResponse(res))
}

func (h *Handler) softDelete(c *gin.Context) {
	id, _ := middleware.IdentityFromContext(c)
	if err := h.Svc.SoftDelete(c.Request.Context(), id, resumeParam(c)); err != nil {
		respond.FromError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) restore(c *gin.Context) {
	id, _ := middleware.IdentityFromContext(c)
	res, err := h.Svc.Restore(c.Request.Context(), id, resumeParam(c))
	if err != nil {
		respond.FromError(c, err)
		return
	}
	respond.OK(c, toResponse(res))
}

type permanentDeleteRequest struct {
	Confirm string `json:"confirm"`
}

func (h *Handler) permanentDelete(c *gin.Context) {
	id, _ := middleware.IdentityFromContext(c)
	var req permanentDeleteRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
			return
		}
	}
	if req.Confirm == "" {
		req.Confirm = c.Query("confirm")
	}
	if err := h.Svc.PermanentDelete(c.Request.Context(), id, resumeParam(c), req.Confirm); err != nil {
		respond.FromError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) duplicate(c *gin.Context) {
	id, _ := middleware.IdentityFromContext(c)
	res, err := h.Svc.Duplicate(c.Request.Context(), id, resumeParam(c))
	if err != nil {
		respond.FromError(c, err)
		return
	}
	respond.Created(c, toResponse(res))
}

func (h *Handler) uploadPhoto(c *gin.Context) {
	id, _ := middleware.IdentityFromContext(c)
	resumeID := resumeParam(c)
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxPhotoRequestSize)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "file is required", nil)
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "unable to read file", nil)
		return
	}
	defer file.Close()

	res, err := h.Svc.UploadPhoto(c.Request.Context(), id, resumeID, fileHeader.Filename, file)
	if err != nil {
		respond.FromError(c, err)
		return
	}
	respond.OK(c, toResponse(res))
}

type saveVersionRequest struct {
	Comment string `json:"comment"`
}

func (h *Handler) saveVersion(c *gin.Context) {
	id, _ := middleware.IdentityFromContext(c)
	var req saveVersionRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
			return
		}
	}
	snap, err := h.Svc.SaveVersion(c.Request.Context(), id, resumeParam(c), req.Comment)
	if err != nil {
		respond.FromError(c, err)
		return
	}
	respond.Created(c, toVersionResponse(snap))
}

func (h *Handler) listVersions(c *gin.Context) {
	id, _ := middleware.IdentityFromContext(c)
	snaps, err := h.Svc.ListVersions(c.Request.Context(), id, resumeParam(c))
	if err != nil {
		respond.FromError(c, err)
		return
	}
	out := make([]VersionSummary, 0, len(snaps))
	for _, s := range snaps {
		out = append(out, toVersionSummary(s))
	}
	respond.OK(c, out)
}

func (h *Handler) getVersion(c *gin.Context) {
	id, _ := middleware.IdentityFromContext(c)
	version, ok := versionParam(c, "version", c.Param("version"))
	if !ok {
		return
	}
	snaps, err := h.Svc.ListVersions(c.Request.Context(), id, resumeParam(c))
	if err != nil {
		respond.FromError(c, err)
		return
	}
	for _, s := range snaps {
		if s.Version == version {
			respond.OK(c, toVersionResponse(s))
			return
		}
	}
	respond.FromError(c, ErrVersionNotFound)
}

func (h *Handler) restoreVersion(c *gin.Context) {
	id, _ := middleware.IdentityFromContext(c)
	version, ok := versionParam(c, "version", c.Param("version"))
	if !ok {
		return
	}
	res, err := h.Svc.RestoreVersion(c.Request.Context(), id, resumeParam(c), version)
	if err != nil {
		respond.FromError(c, err)
		return
	}
	respond.OK(c, toResponse(res))
}

func (h *Handler) compareVersions(c *gin.Context) {
	id, _ := middleware.IdentityFromContext(c)
	v1, ok := versionParam(c, "v1", c.Query("v1"))
	if !ok {
		return
	}
	v2, ok := versionParam(c, "v2", c.Query("v2"))
	if !ok {
		return
	}
	diff, err := h.Svc.CompareVersions(c.Request.Context(), id, resumeParam(c), v1, v2)
	if err != nil {
		respond.FromError(c, err)
		return
	}
	respond.OK(c, diff)
}

func (h *Handler) compareWithCurrent(c *gin.Context) {
	id, _ := middleware.IdentityFromContext(c)
	version, ok := versionParam(c, "version", c.Param("version"))
	if !ok {
		return
	}
	diff, err := h.Svc.CompareWithCurrent(c.Request.Context(), id, resumeParam(c), version)
	if err != nil {
		respond.FromError(c, err)
		return
	}
	respond.OK(c, diff)
}

type shareRequest struct {
	Public        *bool      `json:"public"`
	Consent       *bool      `json:"consent"`
	Password      *string    `json:"password"`
	ExpiresAt     *time.Time `json:"expiresAt"`
	ClearExpiry   bool       `json:"clearExpiry"`
	AllowDownload *bool      `json:"allowDownload"`
}

func (h *Handler) updateShare(c *gin.Context) {
	id, _ := middleware.IdentityFromContext(c)
	var req shareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	res, err := h.Svc.UpdateShareSettings(c.Request.Context(), id, resumeParam(c), ShareUpdate{
		Public:        req.Public,
		Consent:       req.Consent,
		Password:      req.Password,
		ExpiresAt:     req.ExpiresAt,
		ClearExpiry:   req.ClearExpiry,
		AllowDownload: req.AllowDownload,
	})
	if err != nil {
		respond.FromError(c, err)
		return
	}
	c.Set(middleware.ShareIDKey, res.Share.ShareID)
	respond.OK(c, toShareResponse(res.Share))
}

func (h *Handler) getShared(c *gin.Context) {
	shareID := strings.TrimSpace(c.Param("shareId"))
	c.Set(middleware.ShareIDKey, shareID)
	res, err := h.Svc.GetShared(c.Request.Context(), shareID, SharePassword(c), false)
	if err != nil {
		respond.FromError(c, err)
		return
	}
	c.Header("Cache-Control", "no-store")
	respond.OK(c, toSharedResponse(res))
}
