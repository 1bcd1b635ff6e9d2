package mcp

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/a3tai/switchgear-extractor/internal/config"
	"github.com/a3tai/switchgear-extractor/internal/descriptions"
	"github.com/a3tai/switchgear-extractor/internal/equipment"
	"github.com/a3tai/switchgear-extractor/internal/pdf"
	"github.com/a3tai/switchgear-extractor/internal/pipeline"
	"github.com/a3tai/switchgear-extractor/internal/security"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"
)

// maximum number of drawings listed by list_drawings
const drawingListLimit = 200

// Runner runs the extraction pipeline on a file
type Runner interface {
	ProcessFile(ctx context.Context, path, outputPath string) (*pipeline.Result, error)
	OutputDirectory() string
}

// Server represents the MCP server instance
type Server struct {
	config    *config.Config
	runner    Runner
	validator *pdf.Validator
	inputs    *security.PathValidator
	outputs   *security.PathValidator
	palette   equipment.Palette
	mcpServer *server.MCPServer
	logger    *zap.Logger
}

// NewServer creates a new MCP server instance
func NewServer(cfg *config.Config, runner Runner, logger *zap.Logger) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if runner == nil {
		return nil, fmt.Errorf("runner cannot be nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	inputs, err := security.NewPathValidator(cfg.InputDirectory)
	if err != nil {
		return nil, fmt.Errorf("invalid input directory: %w", err)
	}
	outputs, err := security.NewPathValidator(runner.OutputDirectory())
	if err != nil {
		return nil, fmt.Errorf("invalid output directory: %w", err)
	}

	mcpServer := server.NewMCPServer(
		cfg.ServerName,
		cfg.Version,
		server.WithToolCapabilities(false),
	)

	s := &Server{
		config:    cfg,
		runner:    runner,
		validator: pdf.NewValidator(cfg.MaxFileSize),
		inputs:    inputs,
		outputs:   outputs,
		palette:   cfg.Rules().Palette,
		mcpServer: mcpServer,
		logger:    logger,
	}

	s.registerTools()

	return s, nil
}

// registerTools registers all available MCP tools
func (s *Server) registerTools() {
	extractTool := mcp.NewTool(
		descriptions.ExtractEquipmentTool,
		mcp.WithDescription(descriptions.GetToolDescription(descriptions.ExtractEquipmentTool)),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Path to the PDF, absolute or relative to the drawings directory"),
		),
		mcp.WithString("output",
			mcp.Description("Spreadsheet path inside the output directory (a fresh name is generated if empty)"),
		),
	)
	s.mcpServer.AddTool(extractTool, s.handleExtractEquipment)

	listTool := mcp.NewTool(
		descriptions.ListDrawingsTool,
		mcp.WithDescription(descriptions.GetToolDescription(descriptions.ListDrawingsTool)),
		mcp.WithString("query",
			mcp.Description("Optional case-insensitive substring the file name must contain"),
		),
	)
	s.mcpServer.AddTool(listTool, s.handleListDrawings)

	paletteTool := mcp.NewTool(
		descriptions.EquipmentPaletteTool,
		mcp.WithDescription(descriptions.GetToolDescription(descriptions.EquipmentPaletteTool)),
	)
	s.mcpServer.AddTool(paletteTool, s.handleEquipmentPalette)
}

func (s *Server) handleExtractEquipment(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	input, err := s.inputs.ResolveFile(path)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := s.validator.ValidateFile(input); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	output := ""
	if o, ok := request.GetArguments()["output"].(string); ok && o != "" {
		if !strings.EqualFold(filepath.Ext(o), ".xlsx") {
			return mcp.NewToolResultError("output must be an .xlsx file"), nil
		}
		if output, err = s.outputs.Resolve(o); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
	}

	result, err := s.runner.ProcessFile(ctx, input, output)
	if err != nil {
		if errors.Is(err, equipment.ErrNoEquipment) {
			return mcp.NewToolResultError("No equipment found in PDF"), nil
		}
		s.logger.Error("extraction failed", zap.String("path", input), zap.Error(err))
		return mcp.NewToolResultError(fmt.Sprintf("Extraction failed. %v", err)), nil
	}

	return mcp.NewToolResultText(s.formatExtractResult(input, result)), nil
}

func (s *Server) handleListDrawings(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query := ""
	if q, ok := request.GetArguments()["query"].(string); ok {
		query = strings.ToLower(q)
	}

	root := s.inputs.Root()
	var drawings []string
	truncated := false

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// unreadable subdirectories are skipped
			if d != nil && d.IsDir() && path != root {
				return fs.SkipDir
			}
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(d.Name()), ".pdf") {
			return nil
		}
		if query != "" && !strings.Contains(strings.ToLower(d.Name()), query) {
			return nil
		}
		if len(drawings) == drawingListLimit {
			truncated = true
			return fs.SkipAll
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			rel = path
		}
		drawings = append(drawings, rel)
		return nil
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to list drawings: %v", err)), nil
	}

	sort.Strings(drawings)

	var b strings.Builder
	fmt.Fprintf(&b, "Drawings directory: %s\n", root)
	if len(drawings) == 0 {
		b.WriteString("No PDF drawings found\n")
		return mcp.NewToolResultText(b.String()), nil
	}
	fmt.Fprintf(&b, "Found %d PDF drawing(s):\n", len(drawings))
	for i, d := range drawings {
		fmt.Fprintf(&b, "  %d. %s\n", i+1, d)
	}
	if truncated {
		fmt.Fprintf(&b, "(listing stopped after %d files)\n", drawingListLimit)
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (s *Server) handleEquipmentPalette(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var b strings.Builder
	b.WriteString("Equipment color table:\n")
	for i, c := range s.palette {
		marker := ""
		if i == equipment.AnchorIndex {
			marker = " (anchor: service rows and diagram origin positions)"
		}
		fmt.Fprintf(&b, "  %d. %s #%s%s\n", i, c.Name, c.Hex, marker)
	}
	return mcp.NewToolResultText(b.String()), nil
}

// formatExtractResult renders a run for the tool response
func (s *Server) formatExtractResult(input string, result *pipeline.Result) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Extracted equipment from %s\n", filepath.Base(input))
	fmt.Fprintf(&b, "MVS: %d, DSG: %d\n", result.ServiceCount, result.DistributionCount)
	fmt.Fprintf(&b, "Spreadsheet: %s\n\n", result.OutputPath)

	if result.Summary != nil {
		b.WriteString(result.Summary.String())
		b.WriteString("\n")
	}

	b.WriteString("Equipment:\n")
	for _, it := range result.Items {
		fmt.Fprintf(&b, "  %s %s page %d color %s", it.Name, it.Type, it.Page+1, it.ColorName)
		if it.PrimarySource != "" {
			fmt.Fprintf(&b, " primary %s", it.PrimarySource)
		}
		if it.AlternateSource != "" {
			fmt.Fprintf(&b, " alternate %s", it.AlternateSource)
		}
		if it.Properties != "" {
			fmt.Fprintf(&b, " [%s]", it.Properties)
		}
		b.WriteString("\n")
	}

	return b.String()
}

// Run serves the MCP tools over stdio until the client disconnects
func (s *Server) Run(_ context.Context) error {
	s.logger.Info("starting MCP server in stdio mode",
		zap.String("drawings", s.inputs.Root()),
		zap.String("outputs", s.outputs.Root()))

	if err := server.ServeStdio(s.mcpServer); err != nil {
		return fmt.Errorf("failed to serve stdio: %w", err)
	}
	return nil
}

// MCPServer returns the underlying MCP server
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}
