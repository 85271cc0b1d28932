package dataset

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"csr-insights-go/internal/transcript"
	"csr-insights-go/internal/types"
)

// Record is one row of a labeled call transcript workbook.
type Record struct {
	ID           string
	CustomerText string
	AgentText    string
	Transcript   string
	Label        types.SentimentLabel // empty when the row carries no valid label
	Category     string
}

// Text is the customer speech of the row: the customer column when present,
// otherwise the customer lines of the full transcript.
func (r Record) Text() string {
	if t := strings.TrimSpace(r.CustomerText); t != "" {
		return t
	}
	return transcript.CustomerText(r.Transcript)
}

type columns struct {
	id, customer, agent, transcript, label, category int
}

// detectColumns finds columns by header heuristics.
func detectColumns(header []string) columns {
	c := columns{id: -1, customer: -1, agent: -1, transcript: -1, label: -1, category: -1}
	for i, h := range header {
		l := strings.ToLower(strings.TrimSpace(h))
		switch {
		case l == "id" || strings.HasSuffix(l, "_id") || strings.HasSuffix(l, " id"):
			if c.id == -1 {
				c.id = i
			}
		case strings.Contains(l, "customer"):
			if c.customer == -1 {
				c.customer = i
			}
		case strings.Contains(l, "agent") || strings.Contains(l, "csr"):
			if c.agent == -1 {
				c.agent = i
			}
		case strings.Contains(l, "transcript") || strings.Contains(l, "text"):
			if c.transcript == -1 {
				c.transcript = i
			}
		case strings.Contains(l, "sentiment") || strings.Contains(l, "label"):
			if c.label == -1 {
				c.label = i
			}
		case strings.Contains(l, "category") || strings.Contains(l, "issue"):
			if c.category == -1 {
				c.category = i
			}
		}
	}
	return c
}

// Load reads the first sheet of an xlsx workbook. Rows without any text are
// skipped.
func Load(path string) ([]Record, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read rows: %w", err)
	}
	if len(rows) <= 1 {
		return nil, fmt.Errorf("no data rows")
	}

	cols := detectColumns(rows[0])
	if cols.customer == -1 && cols.transcript == -1 {
		return nil, fmt.Errorf("no customer or transcript column in header %v", rows[0])
	}

	var out []Record
	for i, r := range rows[1:] {
		cell := func(idx int) string {
			if idx >= 0 && idx < len(r) {
				return strings.TrimSpace(r[idx])
			}
			return ""
		}
		rec := Record{
			ID:           cell(cols.id),
			CustomerText: cell(cols.customer),
			AgentText:    cell(cols.agent),
			Transcript:   cell(cols.transcript),
			Category:     cell(cols.category),
		}
		if rec.ID == "" {
			rec.ID = fmt.Sprintf("row_%d", i+2)
		}
		if l, ok := types.ParseSentimentLabel(cell(cols.label)); ok {
			rec.Label = l
		}
		if rec.Text() == "" {
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

// Labeled keeps the records that carry a sentiment label.
func Labeled(records []Record) []Record {
	var out []Record
	for _, r := range records {
		if r.Label != "" {
			out = append(out, r)
		}
	}
	return out
}
