// Package export serializes assembled CrawlRecords: CSV with a fixed
// header, a JSON array, and per-opinion text files named by case-title
// slug.
package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/caselawlab/courtcrawl/pkg/record"
)

// WriteCSV writes records to w as CSV. The header is always written, so
// an empty run still produces a parseable file.
func WriteCSV(w io.Writer, records []record.CrawlRecord) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(record.Header()); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, r := range records {
		if err := cw.Write(r.Row()); err != nil {
			return fmt.Errorf("write csv row (opinion %d): %w", r.OpinionID, err)
		}
	}

	cw.Flush()
	return cw.Error()
}
