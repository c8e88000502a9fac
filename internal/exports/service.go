package exports

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"resume-builder/internal/extract"
	"resume-builder/internal/resumes"
	"resume-builder/internal/shared/apperr"
	"resume-builder/internal/shared/auth"
	"resume-builder/internal/shared/metrics"
	"resume-builder/internal/shared/telemetry"
	"resume-builder/resume/render"
)

const defaultTimeout = 20 * time.Second

// Source loads decrypted resumes for the owner or through a share link.
type Source interface {
	Get(ctx context.Context, requester auth.Identity, id string) (resumes.Resume, error)
	GetShared(ctx context.Context, shareID, password string, wantsDownload bool) (resumes.Resume, error)
}

// File is a fully rendered export.
type File struct {
	Name        string
	ContentType string
	Format      render.Format
	Data        []byte
}

// Service renders owner and shared exports under an overall deadline.
type Service struct {
	Resumes Source
	PDF     render.Renderer
	DOCX    render.Renderer
	Timeout time.Duration
	// Verify re-reads each rendered file before it is returned.
	Verify bool
}

// NewService wires the PDF renderer to photos; photos may be nil.
func NewService(src Source, photos render.PhotoResolver, timeout time.Duration) *Service {
	return &Service{
		Resumes: src,
		PDF:     render.NewPDFRenderer(photos),
		DOCX:    render.DOCXRenderer{},
		Timeout: timeout,
	}
}

func (s *Service) ExportPDF(ctx context.Context, requester auth.Identity, resumeID string) (File, error) {
	return s.Export(ctx, render.FormatPDF, s.owned(requester, resumeID))
}

func (s *Service) ExportDOCX(ctx context.Context, requester auth.Identity, resumeID string) (File, error) {
	return s.Export(ctx, render.FormatDOCX, s.owned(requester, resumeID))
}

func (s *Service) ExportPDFShared(ctx context.Context, shareID, password string) (File, error) {
	return s.Export(ctx, render.FormatPDF, s.shared(shareID, password))
}

func (s *Service) ExportDOCXShared(ctx context.Context, shareID, password string) (File, error) {
	return s.Export(ctx, render.FormatDOCX, s.shared(shareID, password))
}

type loader func(ctx context.Context) (resumes.Resume, error)

func (s *Service) owned(requester auth.Identity, id string) loader {
	return func(ctx context.Context) (resumes.Resume, error) {
		return s.Resumes.Get(ctx, requester, id)
	}
}

func (s *Service) shared(shareID, password string) loader {
	return func(ctx context.Context) (resumes.Resume, error) {
		return s.Resumes.GetShared(ctx, shareID, password, true)
	}
}

// Export loads the resume and renders it in format. Nothing partial is returned:
// on error File is empty.
func (s *Service) Export(ctx context.Context, format render.Format, load loader) (File, error) {
	renderer, err := s.rendererFor(format)
	if err != nil {
		return File{}, err
	}

	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, s.timeout())
	defer cancel()

	res, err := load(ctx)
	if err != nil {
		metrics.ObserveExport(string(format), "rejected", time.Since(start))
		return File{}, classify(ctx, err)
	}

	data, err := renderWithin(ctx, renderer, res)
	if err == nil && s.Verify {
		if verr := extract.Verify(ctx, data, format.ContentType()); verr != nil {
			err = apperr.Wrap(apperr.KindRender, "rendered document failed verification", verr)
		}
	}
	elapsed := time.Since(start)
	if err != nil {
		err = classify(ctx, err)
		metrics.ObserveExport(string(format), outcome(err), elapsed)
		telemetry.Error("export.failed", map[string]any{
			"resume_id":     res.ID,
			"export_format": string(format),
			"duration_ms":   elapsed.Milliseconds(),
			"error":         err,
		})
		return File{}, err
	}

	metrics.ObserveExport(string(format), "ok", elapsed)
	telemetry.Info("export.rendered", map[string]any{
		"resume_id":     res.ID,
		"export_format": string(format),
		"bytes":         len(data),
		"duration_ms":   elapsed.Milliseconds(),
	})
	return File{
		Name:        FileName(res, format),
		ContentType: format.ContentType(),
		Format:      format,
		Data:        data,
	}, nil
}

func (s *Service) rendererFor(format render.Format) (render.Renderer, error) {
	var r render.Renderer
	switch format {
	case render.FormatPDF:
		r = s.PDF
	case render.FormatDOCX:
		r = s.DOCX
	}
	if r == nil {
		return nil, apperr.Validation(fmt.Sprintf("unsupported export format %q", format))
	}
	return r, nil
}

func (s *Service) timeout() time.Duration {
	if s.Timeout > 0 {
		return s.Timeout
	}
	return defaultTimeout
}

type rendered struct {
	data []byte
	err  error
}

// renderWithin stops waiting once ctx is done. The renderer goroutine finishes on
// its own and its output is dropped.
func renderWithin(ctx context.Context, r render.Renderer, res resumes.Resume) ([]byte, error) {
	done := make(chan rendered, 1)
	go func() {
		data, err := r.Render(ctx, res.Content, res.Customization)
		done <- rendered{data: data, err: err}
	}()
	select {
	case out := <-done:
		if out.err != nil {
			return nil, out.err
		}
		return out.data, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func classify(ctx context.Context, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return apperr.Wrap(apperr.KindRenderTimeout, "export timed out", err)
	}
	if _, ok := apperr.As(err); ok || errors.Is(err, context.Canceled) {
		return err
	}
	return apperr.Wrap(apperr.KindRender, "export failed", err)
}

func outcome(err error) string {
	switch apperr.KindOf(err) {
	case apperr.KindRenderTimeout:
		return "timeout"
	case apperr.KindRender:
		return "render_failed"
	}
	return "error"
}

// FileName builds "<FullName or Resume>_<Title>.<ext>". Whitespace runs become one
// underscore and characters unsafe in file names become dashes.
func FileName(res resumes.Resume, format render.Format) string {
	name := strings.TrimSpace(res.Content.Personal.FullName)
	if name == "" {
		name = "Resume"
	}
	base := name
	if title := strings.TrimSpace(res.Title); title != "" {
		base += "_" + title
	}
	base = strings.Join(strings.Fields(base), "_")
	base = strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', '"', ':', '*', '?', '<', '>', '|':
			return '-'
		}
		return r
	}, base)
	return base + format.Extension()
}
