package pdf

import (
	"fmt"
	"io"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// pdfcpu otherwise writes a config directory under the user's home
func init() {
	api.DisableConfigDir()
}

// Inspect reads the document structure with pdfcpu and returns its page count
// and info dictionary fields. Info fields are only filled when the document
// also passes relaxed validation.
func Inspect(rs io.ReadSeeker) (*DocumentInfo, error) {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	ctx, err := api.ReadContext(rs, conf)
	if err != nil {
		return nil, &ExtractError{Op: "inspect", Page: -1, Err: fmt.Errorf("failed to read PDF context: %w", err)}
	}

	if err := ctx.EnsurePageCount(); err != nil {
		return nil, &ExtractError{Op: "inspect", Page: -1, Err: fmt.Errorf("failed to ensure page count: %w", err)}
	}

	info := &DocumentInfo{Pages: ctx.PageCount}
	if err := api.ValidateContext(ctx); err == nil {
		info.Title = ctx.XRefTable.Title
		info.Author = ctx.XRefTable.Author
		info.Producer = ctx.XRefTable.Producer
	}
	return info, nil
}
