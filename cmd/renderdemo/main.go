package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"resume-builder/internal/extract"
	"resume-builder/resume/model"
	"resume-builder/resume/render"
)

func main() {
	outDir := flag.String("out", "./out", "directory for the sample PDF and DOCX")
	layout := flag.String("layout", string(model.LayoutSingleColumn), "layout variant")
	flag.Parse()

	content := sampleContent()
	cust := model.DefaultCustomization()
	cust.Layout = model.Layout(*layout)
	if err := cust.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid customization: %v\n", err)
		os.Exit(1)
	}

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "create out dir: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	renderers := []struct {
		format   render.Format
		renderer render.Renderer
	}{
		{render.FormatPDF, render.NewPDFRenderer(nil)},
		{render.FormatDOCX, render.DOCXRenderer{}},
	}
	for _, r := range renderers {
		data, err := r.renderer.Render(ctx, content, cust)
		if err != nil {
			fmt.Fprintf(os.Stderr, "render %s failed: %v\n", r.format, err)
			os.Exit(1)
		}
		if err := extract.Verify(ctx, data, r.format.ContentType()); err != nil {
			fmt.Fprintf(os.Stderr, "render %s validation failed: %v\n", r.format, err)
			os.Exit(1)
		}
		path := filepath.Join(*outDir, "sample_resume"+r.format.Extension())
		if err := os.WriteFile(path, data, 0o644); err != nil {
			fmt.Fprintf(os.Stderr, "write failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("OK: wrote %s (%d bytes)\n", path, len(data))
	}

	payload, err := json.MarshalIndent(content, "", "  ")
	if err == nil {
		_ = os.WriteFile(filepath.Join(*outDir, "sample_resume_content.json"), payload, 0o644)
	}
}

func sampleContent() model.Content {
	return model.Content{
		Personal: model.Personal{
			FullName: "Jordan Lee",
			Title:    "Senior Backend Engineer",
			Email:    "jordan.lee@example.com",
			Phone:    "+1-555-0102",
			Address:  "Austin, TX",
			LinkedIn: "https://www.linkedin.com/in/jordanlee",
			Summary:  "Backend engineer with 8+ years of experience building resilient APIs and data services.",
		},
		Experience: []model.Experience{
			{
				JobTitle:    "Senior Backend Engineer",
				Company:     "Northwind Systems",
				Location:    "Remote",
				StartDate:   "2021-03",
				Current:     true,
				Description: "• Led migration of monolith endpoints to Go services\n• Cut p95 latency by 40% with query tuning and caching",
			},
			{
				JobTitle:    "Backend Engineer",
				Company:     "Blue Harbor Labs",
				Location:    "Austin, TX",
				StartDate:   "2017-06",
				EndDate:     "2021-02",
				Description: "• Built event ingestion pipelines\n• Introduced structured logging and tracing",
			},
		},
		Education: []model.Education{
			{Degree: "B.S.", Field: "Computer Science", School: "University of Texas at Austin", StartDate: "2012-08", EndDate: "2016-05"},
		},
		Skills: model.Skills{
			Technical: []string{"Go", "PostgreSQL", "MongoDB", "Redis", "AWS"},
			Soft:      []string{"Mentoring", "Technical writing"},
		},
	}
}
