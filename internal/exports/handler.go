package exports

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"resume-builder/internal/resumes"
	"resume-builder/internal/shared/server/middleware"
	"resume-builder/internal/shared/server/respond"
	"resume-builder/resume/render"
)

// Handler serves file downloads. Bytes are fully rendered before any header is written.
type Handler struct {
	Svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/resumes/:id/export/:format", middleware.RequireUser(), h.exportOwned)
	rg.GET("/shared/:shareId/export/:format", h.exportShared)
}

func formatParam(c *gin.Context) (render.Format, bool) {
	raw := c.Param("format")
	format, ok := render.ParseFormat(raw)
	if !ok {
		respond.Error(c, http.StatusBadRequest, "validation_error", "format must be pdf or docx", nil)
		return "", false
	}
	c.Set(middleware.ExportFormatKey, string(format))
	return format, true
}

func (h *Handler) exportOwned(c *gin.Context) {
	format, ok := formatParam(c)
	if !ok {
		return
	}
	id, _ := middleware.IdentityFromContext(c)
	resumeID := strings.TrimSpace(c.Param("id"))
	c.Set(middleware.ResumeIDKey, resumeID)

	var (
		file File
		err  error
	)
	if format == render.FormatPDF {
		file, err = h.Svc.ExportPDF(c.Request.Context(), id, resumeID)
	} else {
		file, err = h.Svc.ExportDOCX(c.Request.Context(), id, resumeID)
	}
	if err != nil {
		respond.FromError(c, err)
		return
	}
	respond.Attachment(c, file.ContentType, file.Name, file.Data)
}

func (h *Handler) exportShared(c *gin.Context) {
	format, ok := formatParam(c)
	if !ok {
		return
	}
	shareID := strings.TrimSpace(c.Param("shareId"))
	c.Set(middleware.ShareIDKey, shareID)
	password := resumes.SharePassword(c)

	var (
		file File
		err  error
	)
	if format == render.FormatPDF {
		file, err = h.Svc.ExportPDFShared(c.Request.Context(), shareID, password)
	} else {
		file, err = h.Svc.ExportDOCXShared(c.Request.Context(), shareID, password)
	}
	if err != nil {
		respond.FromError(c, err)
		return
	}
	respond.Attachment(c, file.ContentType, file.Name, file.Data)
}
