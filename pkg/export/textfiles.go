package export

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/caselawlab/courtcrawl/pkg/record"
	"github.com/caselawlab/courtcrawl/pkg/text"
)

// WriteTextFiles writes each record's opinion text to
// dir/<case-title-slug>_<opinion-id>.txt, cleaned of residual markup and
// with whitespace normalized. The opinion ID suffix keeps filenames
// unique when a case produces several opinions. The directory is created
// if missing.
func WriteTextFiles(dir string, records []record.CrawlRecord) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create text dir: %w", err)
	}

	for _, r := range records {
		name := TextFileName(r)
		path := filepath.Join(dir, name)
		body := text.CleanHTML(r.OpinionTextPlain)
		if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", name, err)
		}
	}
	return nil
}

// TextFileName returns the text file name for a record. Records with a
// title that slugs to nothing fall back to the bare opinion ID.
func TextFileName(r record.CrawlRecord) string {
	slug := text.Slug(r.CaseName)
	if slug == "" {
		return fmt.Sprintf("opinion_%d.txt", r.OpinionID)
	}
	return fmt.Sprintf("%s_%d.txt", slug, r.OpinionID)
}
