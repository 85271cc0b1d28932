package dataset

import (
	"csr-insights-go/internal/logger"
)

const maxExamples = 6

type DatasetSummary struct {
	TotalCalls   int            `json:"total_calls"`
	Labeled      int            `json:"labeled"`
	ByLabel      map[string]int `json:"by_label"`
	ByCategory   map[string]int `json:"by_category"`
	ExampleTexts []string       `json:"example_texts"`
}

// Summarize counts labels and categories. Unlabeled or uncategorised rows
// are counted under "unlabeled" and "other".
func Summarize(records []Record) DatasetSummary {
	ds := DatasetSummary{
		TotalCalls:   len(records),
		ByLabel:      map[string]int{},
		ByCategory:   map[string]int{},
		ExampleTexts: []string{},
	}
	for _, r := range records {
		label := string(r.Label)
		if label == "" {
			label = "unlabeled"
		} else {
			ds.Labeled++
		}
		ds.ByLabel[label]++

		cat := r.Category
		if cat == "" {
			cat = "other"
		}
		ds.ByCategory[cat]++

		if len(ds.ExampleTexts) < maxExamples {
			ds.ExampleTexts = append(ds.ExampleTexts, r.Text())
		}
	}
	return ds
}

// LoadAndSummarize reads the workbook and summarises it.
func LoadAndSummarize(path string) (DatasetSummary, error) {
	log := logger.New().WithField("component", "dataset.summary").WithField("path", path)
	log.Info("opening dataset for summarization")

	records, err := Load(path)
	if err != nil {
		log.WithError(err).Error("load failed")
		return DatasetSummary{}, err
	}
	ds := Summarize(records)
	log.WithFields(map[string]interface{}{
		"total_calls": ds.TotalCalls,
		"labeled":     ds.Labeled,
		"categories":  len(ds.ByCategory),
	}).Info("dataset summarization complete")
	for i, ex := range ds.ExampleTexts {
		log.WithField("example_index", i).Debug("example transcript: ", ex)
	}
	return ds, nil
}
