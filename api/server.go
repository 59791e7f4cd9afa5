// Package api exposes recipe execution over HTTP: one upload-and-run
// endpoint plus a health probe. Responses are either a bare CSV (single
// sheet, no side artifacts) or a zip bundle.
package api

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"reportauto/adapters/ingest"
	"reportauto/domain/recipe"
	"reportauto/engine"
	"reportauto/internal"
	"reportauto/internal/config"
	"reportauto/internal/errors"
)

// Server wires the HTTP surface to the engine.
type Server struct {
	cfg    *config.Config
	log    *internal.Logger
	engine *engine.Engine
	reader *ingest.Reader
}

func NewServer(cfg *config.Config, log *internal.Logger) *Server {
	return &Server{
		cfg:    cfg,
		log:    log.With("API"),
		engine: engine.New(log, cfg.Engine.StepParallelism),
		reader: ingest.NewReader(log),
	}
}

// Router builds the gin engine with all routes registered.
func (s *Server) Router() *gin.Engine {
	gin.SetMode(s.cfg.Server.GinMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.MaxMultipartMemory = s.cfg.Upload.MaxUploadBytes

	r.GET("/healthz", s.handleHealth)
	r.POST("/reports/run", s.handleRun)
	return r
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// handleRun accepts a multipart form with a "file" upload, a "recipe"
// JSON document, and an optional "multi_sheet" flag. The recipe runs
// against each ingested sheet; validation and ingestion failures are
// 400s, anything else a 500.
func (s *Server) handleRun(c *gin.Context) {
	execID := uuid.NewString()
	c.Header("X-Execution-ID", execID)
	log := s.log.With("API " + execID[:8])

	fileHeader, err := c.FormFile("file")
	if err != nil {
		s.fail(c, errors.IO("missing file upload", err))
		return
	}
	if fileHeader.Size > s.cfg.Upload.MaxUploadBytes {
		s.fail(c, errors.IO(fmt.Sprintf("upload exceeds %d bytes", s.cfg.Upload.MaxUploadBytes), nil))
		return
	}
	f, err := fileHeader.Open()
	if err != nil {
		s.fail(c, errors.IO("failed to open upload", err))
		return
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		s.fail(c, errors.IO("failed to read upload", err))
		return
	}

	recipeJSON := c.PostForm("recipe")
	if recipeJSON == "" {
		s.fail(c, errors.Validation("recipe", "recipe form field is required"))
		return
	}
	rec, err := recipe.Parse([]byte(recipeJSON))
	if err != nil {
		s.fail(c, err)
		return
	}

	multiSheet := c.PostForm("multi_sheet") == "true"
	sheets, err := s.reader.Read(fileHeader.Filename, data, multiSheet)
	if err != nil {
		s.fail(c, err)
		return
	}

	log.Info("running %d steps on %d sheet(s) from %q", len(rec.Steps), len(sheets), fileHeader.Filename)

	bundles := make([]*engine.Bundle, len(sheets))
	for i, sheet := range sheets {
		b, err := s.engine.Execute(c.Request.Context(), sheet.Table, rec)
		if err != nil {
			s.fail(c, err)
			return
		}
		bundles[i] = b
	}

	// A lone report with no side artifacts goes out as plain CSV;
	// everything else is zipped.
	if len(bundles) == 1 && len(bundles[0].Artifacts) == 0 {
		b := bundles[0]
		c.Header("Content-Disposition", `attachment; filename="`+b.Filename+`"`)
		c.Data(http.StatusOK, "text/csv", b.Report)
		return
	}

	archive, err := zipBundles(sheets, bundles, multiSheet)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="report_bundle.zip"`)
	c.Data(http.StatusOK, "application/zip", archive)
}

// zipBundles flattens the per-sheet bundles into one archive. With
// multiple sheets every entry is prefixed by its sheet name so reports
// do not collide.
func zipBundles(sheets []ingest.Sheet, bundles []*engine.Bundle, multiSheet bool) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	prefix := func(sheet, name string) string {
		if multiSheet && len(bundles) > 1 {
			return sheet + "_" + name
		}
		return name
	}
	for i, b := range bundles {
		entries := append([]engine.NamedArtifact{{Name: b.Filename, Data: b.Report}}, b.Artifacts...)
		for _, e := range entries {
			w, err := zw.Create(prefix(sheets[i].Name, e.Name))
			if err != nil {
				return nil, errors.IO("building zip bundle", err)
			}
			if _, err := w.Write(e.Data); err != nil {
				return nil, errors.IO("building zip bundle", err)
			}
		}
	}
	if err := zw.Close(); err != nil {
		return nil, errors.IO("building zip bundle", err)
	}
	return buf.Bytes(), nil
}

// fail maps engine error codes onto HTTP statuses. Validation and
// ingestion problems are the caller's fault; the rest are ours.
func (s *Server) fail(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	code := errors.GetCode(err)
	if code == errors.CodeValidationError || code == errors.CodeIOError {
		status = http.StatusBadRequest
	}
	s.log.Error("request failed (%s): %v", code, err)

	body := gin.H{"error": err.Error(), "code": code}
	if appErr, ok := err.(*errors.AppError); ok && appErr.Field != "" {
		body["field"] = appErr.Field
	}
	c.JSON(status, body)
}
