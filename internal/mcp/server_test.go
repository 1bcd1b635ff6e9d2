package mcp

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/a3tai/switchgear-extractor/internal/config"
	"github.com/a3tai/switchgear-extractor/internal/equipment"
	"github.com/a3tai/switchgear-extractor/internal/pdf/pdftest"
	"github.com/a3tai/switchgear-extractor/internal/pipeline"
)

type stubRunner struct {
	dir  string
	err  error
	seen []string
}

func (r *stubRunner) ProcessFile(_ context.Context, path, outputPath string) (*pipeline.Result, error) {
	r.seen = append(r.seen, path, outputPath)
	return nil, r.err
}

func (r *stubRunner) OutputDirectory() string { return r.dir }

// testEnv holds a server over real drawings and outputs directories
type testEnv struct {
	server  *Server
	drawDir string
	outDir  string
}

func testConfig(drawDir string) *config.Config {
	cfg := config.DefaultConfig()
	cfg.Mode = config.ModeStdio
	cfg.InputDirectory = drawDir
	cfg.ServerName = "test-server"
	cfg.MaxFileSize = 1024 * 1024
	return cfg
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	drawDir := t.TempDir()
	outDir := t.TempDir()
	cfg := testConfig(drawDir)
	cfg.OutputDirectory = outDir

	runner, err := pipeline.New(pipeline.Options{
		Rules:           cfg.Rules(),
		WordOptions:     cfg.WordOptions(),
		OutputDirectory: outDir,
	})
	if err != nil {
		t.Fatalf("failed to create pipeline: %v", err)
	}

	server, err := NewServer(cfg, runner, nil)
	if err != nil {
		t.Fatalf("failed to create server: %v", err)
	}
	return &testEnv{server: server, drawDir: drawDir, outDir: outDir}
}

func writeDrawing(t *testing.T, dir, name string) string {
	t.Helper()

	page := append(
		pdftest.Row(72, 720, 228, "'MVSAA100'", "'MVSAA101'"),
		pdftest.Row(72, 600, 228, "'DSGAA102'", "'DSGAA103'")...,
	)
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, pdftest.Build(page), 0o600); err != nil {
		t.Fatalf("failed to write drawing: %v", err)
	}
	return path
}

func callRequest(args map[string]interface{}) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Arguments: args,
		},
	}
}

func TestNewServer(t *testing.T) {
	runner := &stubRunner{dir: t.TempDir()}

	if _, err := NewServer(nil, runner, nil); err == nil {
		t.Error("expected error for nil config")
	}
	if _, err := NewServer(testConfig(t.TempDir()), nil, nil); err == nil {
		t.Error("expected error for nil runner")
	}

	server, err := NewServer(testConfig(t.TempDir()), runner, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if server.MCPServer() == nil {
		t.Fatal("MCP server should not be nil")
	}
	if server.palette.Size() != 8 {
		t.Errorf("expected palette of 8 colors, got %d", server.palette.Size())
	}
}

func TestServer_HandleExtractEquipment(t *testing.T) {
	env := newTestEnv(t)
	writeDrawing(t, env.drawDir, "plant/sld.pdf")

	result, err := env.server.handleExtractEquipment(context.Background(), callRequest(map[string]interface{}{
		"path": "plant/sld.pdf",
	}))
	if err != nil {
		t.Fatalf("handler failed: %v", err)
	}
	if result.IsError {
		t.Fatalf("unexpected tool error: %s", extractTextFromResult(result))
	}

	text := extractTextFromResult(result)
	for _, want := range []string{
		"MVS: 2, DSG: 2",
		"EXTRACTION SUMMARY",
		"DSGAA102 DSG page 1 color Black primary MVSAA100 alternate MVSAA101",
		"DSGAA103 DSG page 1 color Red",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("expected %q in result, got:\n%s", want, text)
		}
	}

	entries, err := os.ReadDir(env.outDir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || !strings.HasPrefix(entries[0].Name(), pipeline.OutputPrefix) {
		t.Errorf("expected one generated spreadsheet, got %v", entries)
	}
}

func TestServer_HandleExtractEquipment_Output(t *testing.T) {
	env := newTestEnv(t)
	writeDrawing(t, env.drawDir, "sld.pdf")

	result, err := env.server.handleExtractEquipment(context.Background(), callRequest(map[string]interface{}{
		"path":   "sld.pdf",
		"output": "site-a/equipment.xlsx",
	}))
	if err != nil {
		t.Fatalf("handler failed: %v", err)
	}
	if result.IsError {
		t.Fatalf("unexpected tool error: %s", extractTextFromResult(result))
	}
	if _, err := os.Stat(filepath.Join(env.outDir, "site-a", "equipment.xlsx")); err != nil {
		t.Errorf("expected spreadsheet at requested output: %v", err)
	}
}

func TestServer_HandleExtractEquipment_Rejections(t *testing.T) {
	env := newTestEnv(t)
	writeDrawing(t, env.drawDir, "sld.pdf")

	outside := writeDrawing(t, t.TempDir(), "other.pdf")
	if err := os.WriteFile(filepath.Join(env.drawDir, "notes.txt"), []byte("text"), 0o600); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		args map[string]interface{}
		want string
	}{
		{name: "missing path", args: map[string]interface{}{}, want: "path"},
		{name: "outside drawings directory", args: map[string]interface{}{"path": outside}, want: "outside"},
		{name: "missing file", args: map[string]interface{}{"path": "nope.pdf"}, want: "cannot access"},
		{name: "not a pdf", args: map[string]interface{}{"path": "notes.txt"}, want: "only PDF"},
		{name: "bad output extension", args: map[string]interface{}{"path": "sld.pdf", "output": "out.csv"}, want: ".xlsx"},
		{name: "output escapes", args: map[string]interface{}{"path": "sld.pdf", "output": "../out.xlsx"}, want: "outside"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := env.server.handleExtractEquipment(context.Background(), callRequest(tt.args))
			if err != nil {
				t.Fatalf("handler should not return error, got: %v", err)
			}
			if !result.IsError {
				t.Fatalf("expected tool error, got: %s", extractTextFromResult(result))
			}
			if text := extractTextFromResult(result); !strings.Contains(text, tt.want) {
				t.Errorf("expected %q in error, got: %s", tt.want, text)
			}
		})
	}
}

func TestServer_HandleExtractEquipment_RunnerErrors(t *testing.T) {
	drawDir := t.TempDir()
	writeDrawing(t, drawDir, "sld.pdf")

	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "no equipment", err: equipment.ErrNoEquipment, want: "No equipment found in PDF"},
		{name: "write failure", err: errors.New("disk full"), want: "Extraction failed. disk full"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := &stubRunner{dir: t.TempDir(), err: tt.err}
			server, err := NewServer(testConfig(drawDir), runner, nil)
			if err != nil {
				t.Fatal(err)
			}

			result, err := server.handleExtractEquipment(context.Background(), callRequest(map[string]interface{}{"path": "sld.pdf"}))
			if err != nil {
				t.Fatalf("handler should not return error, got: %v", err)
			}
			if !result.IsError || extractTextFromResult(result) != tt.want {
				t.Errorf("expected error %q, got: %s", tt.want, extractTextFromResult(result))
			}
			if len(runner.seen) != 2 || runner.seen[1] != "" {
				t.Errorf("expected one run with a generated output name, got %v", runner.seen)
			}
		})
	}
}

func TestServer_HandleListDrawings(t *testing.T) {
	env := newTestEnv(t)
	writeDrawing(t, env.drawDir, "b-site.pdf")
	writeDrawing(t, env.drawDir, "nested/a-site.PDF")
	if err := os.WriteFile(filepath.Join(env.drawDir, "readme.md"), []byte("x"), 0o600); err != nil {
		t.Fatal(err)
	}

	result, err := env.server.handleListDrawings(context.Background(), callRequest(map[string]interface{}{}))
	if err != nil {
		t.Fatalf("handler failed: %v", err)
	}
	text := extractTextFromResult(result)
	if !strings.Contains(text, "Found 2 PDF drawing(s)") {
		t.Errorf("expected two drawings, got:\n%s", text)
	}
	if strings.Index(text, "b-site.pdf") > strings.Index(text, filepath.Join("nested", "a-site.PDF")) {
		t.Errorf("expected sorted listing, got:\n%s", text)
	}
	if strings.Contains(text, "readme.md") {
		t.Errorf("non-PDF files should not be listed:\n%s", text)
	}

	result, err = env.server.handleListDrawings(context.Background(), callRequest(map[string]interface{}{"query": "A-SITE"}))
	if err != nil {
		t.Fatalf("handler failed: %v", err)
	}
	if text := extractTextFromResult(result); !strings.Contains(text, "Found 1 PDF drawing(s)") {
		t.Errorf("expected one match, got:\n%s", text)
	}

	result, _ = env.server.handleListDrawings(context.Background(), callRequest(map[string]interface{}{"query": "zzz"}))
	if text := extractTextFromResult(result); !strings.Contains(text, "No PDF drawings found") {
		t.Errorf("expected empty listing, got:\n%s", text)
	}
}

func TestServer_HandleEquipmentPalette(t *testing.T) {
	server, err := NewServer(testConfig(t.TempDir()), &stubRunner{dir: t.TempDir()}, nil)
	if err != nil {
		t.Fatal(err)
	}

	result, err := server.handleEquipmentPalette(context.Background(), callRequest(nil))
	if err != nil {
		t.Fatalf("handler failed: %v", err)
	}

	text := extractTextFromResult(result)
	for _, want := range []string{"0. Black #333333 (anchor", "1. Red #FFB3B3", "7. Light Grey #E6E6E6"} {
		if !strings.Contains(text, want) {
			t.Errorf("expected %q in palette, got:\n%s", want, text)
		}
	}
}

// extractTextFromResult returns the first text content of a tool result
func extractTextFromResult(result *mcp.CallToolResult) string {
	if result == nil || len(result.Content) == 0 {
		return ""
	}

	for _, content := range result.Content {
		if textContent, ok := content.(mcp.TextContent); ok {
			return textContent.Text
		}
		if textContentPtr, ok := content.(*mcp.TextContent); ok {
			return textContentPtr.Text
		}
	}

	return ""
}
