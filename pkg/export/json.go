package export

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/caselawlab/courtcrawl/pkg/record"
)

// WriteJSON writes records to w as an indented JSON array. An empty run
// produces "[]", not null.
func WriteJSON(w io.Writer, records []record.CrawlRecord) error {
	if records == nil {
		records = []record.CrawlRecord{}
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal records: %w", err)
	}

	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write json: %w", err)
	}
	if _, err := io.WriteString(w, "\n"); err != nil {
		return fmt.Errorf("write json: %w", err)
	}
	return nil
}
