// Command train fits the naive Bayes sentiment model on a labeled
// transcript workbook and writes it where the API's trained backend reads it.
package main

import (
	"flag"
	"fmt"

	"github.com/joho/godotenv"

	"csr-insights-go/internal/classifier"
	"csr-insights-go/internal/dataset"
	"csr-insights-go/internal/logger"
)

type result struct {
	Total    int
	Train    int
	Test     int
	Accuracy float64
}

func main() {
	_ = godotenv.Load()

	data := flag.String("data", "call_transcripts.xlsx", "labeled transcript workbook")
	out := flag.String("out", "models/sentiment_nb.json", "where to write the model")
	holdout := flag.Float64("holdout", 0.2, "fraction of examples held out for evaluation")
	seed := flag.Int64("seed", 42, "shuffle seed")
	flag.Parse()

	log := logger.New()
	res, err := train(*data, *out, *holdout, *seed)
	if err != nil {
		log.WithError(err).Fatal("training failed")
	}
	log.WithField("examples", res.Total).
		WithField("train", res.Train).
		WithField("test", res.Test).
		WithField("accuracy", fmt.Sprintf("%.3f", res.Accuracy)).
		WithField("model", *out).
		Info("model trained")
}

func train(dataPath, outPath string, holdout float64, seed int64) (result, error) {
	records, err := dataset.Load(dataPath)
	if err != nil {
		return result{}, fmt.Errorf("load %s: %w", dataPath, err)
	}
	examples := make([]classifier.Example, 0, len(records))
	for _, r := range dataset.Labeled(records) {
		examples = append(examples, classifier.Example{Text: r.Text(), Label: r.Label})
	}

	trainSet, testSet := classifier.SplitHoldout(examples, holdout, seed)
	model, err := classifier.TrainNaiveBayes(trainSet)
	if err != nil {
		return result{}, err
	}
	if err := model.Save(outPath); err != nil {
		return result{}, err
	}
	return result{
		Total:    len(examples),
		Train:    len(trainSet),
		Test:     len(testSet),
		Accuracy: model.Accuracy(testSet),
	}, nil
}
