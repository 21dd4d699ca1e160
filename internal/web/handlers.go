package web

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/JonMunkholm/fixedwidth/internal/pgload"
	"github.com/JonMunkholm/fixedwidth/internal/service"
	"github.com/JonMunkholm/fixedwidth/internal/web/templates"
)

const (
	// maxLayoutSize bounds a layout sent as a file part.
	maxLayoutSize = 1 << 20
	// multipartMemory is how much of a form is held in memory before
	// spilling file parts to disk.
	multipartMemory = 32 << 20
)

var errInvalidForm = errors.New("invalid form")

// handleIndex renders the upload page.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	page := templates.IndexPage(templates.PageData{
		PreviewRows: s.service.PreviewRows(),
		HasDatabase: s.service.HasDatabase(),
	})
	if err := page.Render(r.Context(), w); err != nil {
		s.respondError(w, r, err)
	}
}

// handleStatus reports read slot usage and database availability.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, struct {
		Reads    service.LimiterStatus `json:"reads"`
		Database bool                  `json:"database"`
	}{
		Reads:    s.service.Status(),
		Database: s.service.HasDatabase(),
	})
}

// handleDetect infers column types for the uploaded file.
func (s *Server) handleDetect(w http.ResponseWriter, r *http.Request) {
	req, cleanup, err := s.parseRequest(w, r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	defer cleanup()

	res, err := s.service.Detect(r.Context(), req)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// handleRead reads the uploaded file and returns its columns and up to
// ?limit rows (default: the preview size; -1 for every row).
func (s *Server) handleRead(w http.ResponseWriter, r *http.Request) {
	limit, err := parseLimit(r, s.service.PreviewRows())
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	req, cleanup, err := s.parseRequest(w, r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	defer cleanup()

	table, err := s.service.Read(r.Context(), req)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, service.NewTableView(table, limit))
}

// handlePreview renders the preview table for the upload page.
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	req, cleanup, err := s.parseRequest(w, r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	defer cleanup()

	table, err := s.service.Read(r.Context(), req)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	view := templates.PreviewTable(service.NewTableView(table, s.service.PreviewRows()))
	if !isHTMX(r) {
		view = templates.Page(table.Name(), view)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := view.Render(r.Context(), w); err != nil {
		s.respondError(w, r, err)
	}
}

// handleLoad reads the uploaded file and copies it into the table named by
// the "table" form field, creating it when "create" is set.
func (s *Server) handleLoad(w http.ResponseWriter, r *http.Request) {
	if !s.service.HasDatabase() {
		s.respondError(w, r, service.ErrNoDatabase)
		return
	}

	req, cleanup, err := s.parseRequest(w, r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	defer cleanup()

	target := pgload.Target{
		Table:  strings.TrimSpace(r.FormValue("table")),
		Create: parseCheckbox(r.FormValue("create")),
	}
	res, err := s.service.Load(r.Context(), req, target)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// parseRequest reads the multipart form: the layout as a "layout" field or
// file part, and the data as the "file" part. cleanup releases the file and
// any temporary files backing the form.
func (s *Server) parseRequest(w http.ResponseWriter, r *http.Request) (service.Request, func(), error) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Reader.MaxFileSize+maxLayoutSize)

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return service.Request{}, nil, fmt.Errorf("%w: request body too large", service.ErrFileTooLarge)
		}
		return service.Request{}, nil, fmt.Errorf("%w: %v", errInvalidForm, err)
	}
	removeForm := func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}

	layoutDoc, err := formLayout(r)
	if err != nil {
		removeForm()
		return service.Request{}, nil, err
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		removeForm()
		if errors.Is(err, http.ErrMissingFile) {
			return service.Request{}, nil, service.ErrNoFile
		}
		return service.Request{}, nil, fmt.Errorf("%w: %v", errInvalidForm, err)
	}

	req := service.Request{
		Layout:   layoutDoc,
		File:     file,
		FileName: header.Filename,
	}
	return req, func() {
		file.Close()
		removeForm()
	}, nil
}

// formLayout returns the layout document from a text field or a file part.
func formLayout(r *http.Request) ([]byte, error) {
	if v := r.FormValue("layout"); strings.TrimSpace(v) != "" {
		return []byte(v), nil
	}

	f, _, err := r.FormFile("layout")
	if errors.Is(err, http.ErrMissingFile) {
		return nil, service.ErrNoLayout
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errInvalidForm, err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxLayoutSize+1))
	if err != nil {
		return nil, fmt.Errorf("read layout: %w", err)
	}
	if len(data) > maxLayoutSize {
		return nil, fmt.Errorf("%w: layout exceeds %d bytes", service.ErrFileTooLarge, maxLayoutSize)
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, service.ErrNoLayout
	}
	return data, nil
}

// parseLimit reads the ?limit query parameter.
func parseLimit(r *http.Request, defaultVal int) (int, error) {
	val := r.URL.Query().Get("limit")
	if val == "" {
		return defaultVal, nil
	}
	n, err := strconv.Atoi(val)
	if err != nil || n < -1 {
		return 0, fmt.Errorf("%w: limit must be -1 or a non-negative integer, got %q", errInvalidForm, val)
	}
	return n, nil
}

// parseCheckbox accepts HTML checkbox values as well as boolean strings.
func parseCheckbox(v string) bool {
	if strings.EqualFold(v, "on") {
		return true
	}
	b, _ := strconv.ParseBool(v)
	return b
}
