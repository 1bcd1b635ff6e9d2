package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"os"
	"path/filepath"
	"testing"

	"github.com/a3tai/switchgear-extractor/internal/equipment"
	"github.com/a3tai/switchgear-extractor/internal/pdf"
	"github.com/a3tai/switchgear-extractor/internal/pdf/pdftest"
	"github.com/a3tai/switchgear-extractor/internal/pipeline"
	"github.com/a3tai/switchgear-extractor/internal/report"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeExtractor struct {
	dir    string
	result *pipeline.Result
	err    error
	calls  int
}

func (f *fakeExtractor) ProcessUpload(_ context.Context, _ []byte) (*pipeline.Result, error) {
	f.calls++
	return f.result, f.err
}

func (f *fakeExtractor) OutputDirectory() string { return f.dir }

func newTestServer(t *testing.T, ex Extractor, opts Options) http.Handler {
	t.Helper()
	srv, err := New(ex, pdf.NewValidator(1024*1024), opts, nil)
	require.NoError(t, err)
	return srv.Handler()
}

// upload builds a multipart request carrying data as the file field
func upload(t *testing.T, filename, contentType string, data []byte) *http.Request {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="file"; filename="`+filename+`"`)
	if contentType != "" {
		h.Set("Content-Type", contentType)
	}
	part, err := mw.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/extract", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.Detail
}

func TestHandleExtract_Success(t *testing.T) {
	items := []*equipment.Item{
		{Name: "MVSAA100", Type: equipment.TypeService},
		{Name: "DSGAA102", Type: equipment.TypeDistribution, PrimarySource: "MVSAA100"},
	}
	ex := &fakeExtractor{
		dir: t.TempDir(),
		result: &pipeline.Result{
			Items:             items,
			Summary:           report.Summarize(items),
			OutputName:        "equipment_data_1_abcdef12.xlsx",
			ServiceCount:      1,
			DistributionCount: 1,
		},
	}
	h := newTestServer(t, ex, Options{})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, upload(t, "sld.pdf", "application/pdf", []byte("%PDF-1.4 body")))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))

	var resp ExtractResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.MVSCount)
	assert.Equal(t, 1, resp.DSGCount)
	assert.Equal(t, "/outputs/equipment_data_1_abcdef12.xlsx", resp.ExcelURL)
	assert.Equal(t, "equipment_data_1_abcdef12.xlsx", resp.OutputName)
	require.Len(t, resp.EquipmentList, 2)
	assert.Equal(t, "MVSAA100", resp.EquipmentList[1].PrimarySource)
}

func TestHandleExtract_Rejections(t *testing.T) {
	tests := []struct {
		name        string
		filename    string
		contentType string
		data        []byte
		wantDetail  string
	}{
		{name: "wrong extension", filename: "sld.png", contentType: "image/png", data: []byte("%PDF-1.4"), wantDetail: DetailNotPDF},
		{name: "wrong content type", filename: "sld.pdf", contentType: "text/plain", data: []byte("%PDF-1.4"), wantDetail: DetailNotPDF},
		{name: "no pdf header", filename: "sld.pdf", contentType: "application/pdf", data: []byte("hello"), wantDetail: DetailNotPDF},
		{name: "empty", filename: "sld.pdf", contentType: "application/pdf", data: nil, wantDetail: "Uploaded file is empty"},
		{name: "too large", filename: "sld.pdf", contentType: "application/pdf",
			data: append([]byte("%PDF-1.4"), make([]byte, 1024*1024)...), wantDetail: "File too large (max: 1048576 bytes)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ex := &fakeExtractor{dir: t.TempDir()}
			h := newTestServer(t, ex, Options{})

			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, upload(t, tt.filename, tt.contentType, tt.data))

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, tt.wantDetail, decodeError(t, rec))
			assert.Zero(t, ex.calls, "pipeline must not run for rejected uploads")
		})
	}
}

func TestHandleExtract_MissingFile(t *testing.T) {
	h := newTestServer(t, &fakeExtractor{dir: t.TempDir()}, Options{})

	req := httptest.NewRequest(http.MethodPost, "/extract", bytes.NewBufferString("not multipart"))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeError(t, rec), `"file"`)
}

func TestHandleExtract_Failures(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantDetail string
	}{
		{name: "no equipment", err: equipment.ErrNoEquipment, wantDetail: DetailNoEquipment},
		{name: "wrapped no equipment", err: errors.Join(errors.New("page 2"), equipment.ErrNoEquipment), wantDetail: DetailNoEquipment},
		{name: "write failure", err: errors.New("disk full"), wantDetail: "Extraction failed. disk full"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestServer(t, &fakeExtractor{dir: t.TempDir(), err: tt.err}, Options{})

			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, upload(t, "sld.pdf", "application/pdf", []byte("%PDF-1.4")))

			assert.Equal(t, http.StatusInternalServerError, rec.Code)
			assert.Equal(t, tt.wantDetail, decodeError(t, rec))
		})
	}
}

func TestHandleExtract_RateLimit(t *testing.T) {
	ex := &fakeExtractor{dir: t.TempDir(), err: equipment.ErrNoEquipment}
	h := newTestServer(t, ex, Options{RateLimit: 0.001, RateBurst: 1})

	first := httptest.NewRecorder()
	h.ServeHTTP(first, upload(t, "sld.pdf", "application/pdf", []byte("%PDF-1.4")))
	assert.Equal(t, http.StatusInternalServerError, first.Code)

	second := httptest.NewRecorder()
	h.ServeHTTP(second, upload(t, "sld.pdf", "application/pdf", []byte("%PDF-1.4")))
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.Equal(t, 1, ex.calls)
}

func TestHandleOutput(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "equipment_data_1_abcdef12.xlsx"), []byte("xlsx"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("secret"), 0o600))

	h := newTestServer(t, &fakeExtractor{dir: dir}, Options{})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/outputs/equipment_data_1_abcdef12.xlsx", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, xlsxContentType, rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "attachment")
	assert.Equal(t, "xlsx", rec.Body.String())

	for _, path := range []string{"/outputs/missing.xlsx", "/outputs/notes.txt"} {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusNotFound, rec.Code, path)
	}
}

func TestHealthAndMetrics(t *testing.T) {
	h := newTestServer(t, &fakeExtractor{dir: t.TempDir()}, Options{CORSOrigin: "https://example.com"})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	assert.Equal(t, "https://example.com", rec.Header().Get("Access-Control-Allow-Origin"))

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "switchgear_http_requests_total")
}

func TestMethodNotAllowed(t *testing.T) {
	h := newTestServer(t, &fakeExtractor{dir: t.TempDir()}, Options{})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/extract", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestEndToEnd(t *testing.T) {
	svc, err := pipeline.New(pipeline.Options{
		Rules:           equipment.DefaultRules(),
		WordOptions:     pdf.DefaultWordOptions(),
		OutputDirectory: t.TempDir(),
	})
	require.NoError(t, err)

	h := newTestServer(t, svc, Options{})

	page := append(
		pdftest.Row(72, 720, 228, "'MVSAA100'", "'MVSAA101'"),
		pdftest.Row(72, 600, 228, "'DSGAA102'", "'DSGAA103'")...,
	)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, upload(t, "SLD.PDF", "application/pdf", pdftest.Build(page)))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp ExtractResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.MVSCount)
	assert.Equal(t, 2, resp.DSGCount)

	dl := httptest.NewRecorder()
	h.ServeHTTP(dl, httptest.NewRequest(http.MethodGet, resp.ExcelURL, nil))
	require.Equal(t, http.StatusOK, dl.Code)

	records, err := report.ReadSheetFrom(dl.Body)
	require.NoError(t, err)
	require.Len(t, records, 4)
	assert.Equal(t, "DSGAA102", records[2].Equipment)
	assert.Equal(t, "MVSAA100", records[2].PrimaryFrom)
	assert.Equal(t, "MVSAA101", records[2].AlternateFrom)
}
