package export

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Format identifies an export target. Each format maps to one underlying
// file encoding; the backend does the rendering and the coordinator only
// passes the identifier through.
type Format string

const (
	FormatExcel  Format = "excel"
	FormatPDF    Format = "pdf"
	FormatJSON   Format = "json"
	FormatMSProj Format = "project"
	FormatJira   Format = "jira"
	FormatDevOps Format = "devops"
)

// extensions maps each format to the artifact file extension.
var extensions = map[Format]string{
	FormatExcel:  "xlsx",
	FormatPDF:    "pdf",
	FormatJSON:   "json",
	FormatMSProj: "xml",
	FormatJira:   "csv",
	FormatDevOps: "json",
}

// Artifact is a downloadable export result.
type Artifact struct {
	Filename string
	Format   Format
	Data     []byte
}

// WriteFile saves the artifact into dir under its deterministic filename.
func (a *Artifact) WriteFile(dir string) (string, error) {
	path := filepath.Join(dir, a.Filename)
	if err := os.WriteFile(path, a.Data, 0o644); err != nil {
		return "", fmt.Errorf("write export file: %w", err)
	}
	return path, nil
}

// Coordinator drives format-specific export requests against the current
// project.
type Coordinator struct {
	backend  Backend
	projects CurrentProject
	logger   *slog.Logger
	now      func() time.Time
}

// NewCoordinator creates an export coordinator.
func NewCoordinator(backend Backend, projects CurrentProject, logger *slog.Logger) *Coordinator {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Coordinator{
		backend:  backend,
		projects: projects,
		logger:   logger,
		now:      time.Now,
	}
}

// Export requests the current project in the given format and names the
// resulting artifact scopeai_<project>_<ISO-date>.<ext>. It fails before any
// network call when no project is selected; a remote failure leaves project
// state untouched.
func (c *Coordinator) Export(ctx context.Context, format Format) (*Artifact, error) {
	ext, ok := extensions[format]
	if !ok {
		return nil, ErrUnsupportedFormat
	}

	current := c.projects.Current()
	if current == nil {
		return nil, ErrNoProject
	}

	data, err := c.backend.ExportProject(ctx, current.ID, string(format))
	if err != nil {
		return nil, fmt.Errorf("exporting project: %w", err)
	}

	filename := fmt.Sprintf("scopeai_%s_%s.%s",
		sanitizeName(current.Name), c.now().Format("2006-01-02"), ext)

	c.logger.Info("export ready", "project_id", current.ID, "format", format, "filename", filename)
	return &Artifact{Filename: filename, Format: format, Data: data}, nil
}

// sanitizeName keeps artifact filenames portable across filesystems.
func sanitizeName(name string) string {
	name = strings.TrimSpace(name)
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9',
			r == '.', r == '_', r == '-':
			b.WriteRune(r)
		default:
			b.WriteRune('-')
		}
	}
	if b.Len() == 0 {
		return "project"
	}
	return b.String()
}
