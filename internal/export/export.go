package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jonathan/company-analyst/internal/types"
)

// Export formats.
const (
	FormatMarkdown = "markdown"
	FormatHTML     = "html"
	FormatPDF      = "pdf"
)

// WriteFile renders the report in the given format and writes it into
// dir, returning the artifact path. The filename is derived from the
// company name and the report UID so repeated exports never clobber
// unrelated reports.
func WriteFile(rpt *types.Report, format, dir string) (string, error) {
	var content string
	var ext string

	switch format {
	case FormatMarkdown:
		content = RenderMarkdown(rpt)
		ext = "md"
	case FormatHTML:
		rendered, err := RenderHTML(rpt)
		if err != nil {
			return "", err
		}
		content = rendered
		ext = "html"
	case FormatPDF:
		return "", fmt.Errorf("%w: pdf output requires an external converter, export markdown or html instead", ErrUnsupportedFormat)
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}

	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", &RenderError{Message: "failed to create export directory", Cause: err}
	}

	name := fmt.Sprintf("%s-report-%s.%s", slugify(rpt.CompanyName), shortUID(rpt), ext)
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", &RenderError{Message: "failed to write export file", Cause: err}
	}
	return path, nil
}

// slugify lowercases the company name and collapses anything that is not
// alphanumeric into single hyphens.
func slugify(name string) string {
	var sb strings.Builder
	lastHyphen := false
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			sb.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen && sb.Len() > 0 {
				sb.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	out := strings.TrimSuffix(sb.String(), "-")
	if out == "" {
		return "report"
	}
	return out
}

func shortUID(rpt *types.Report) string {
	uid := rpt.UID.String()
	if len(uid) >= 8 {
		return uid[:8]
	}
	return uid
}
