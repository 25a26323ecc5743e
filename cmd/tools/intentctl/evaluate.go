// cmd/tools/intentctl/evaluate.go
package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"tile-intent-workers/internal/catalog"
	"tile-intent-workers/internal/classifier"
)

const defaultEvaluationFile = "configs/evaluation.yaml"

var (
	errBelowMinAccuracy = errors.New("accuracy below minimum")
	errInvalidCorpus    = errors.New("invalid evaluation corpus")
)

// labelledCase is one utterance with its expected intent. Decision is optional.
type labelledCase struct {
	Utterance string `yaml:"utterance" json:"utterance"`
	Intent    string `yaml:"intent" json:"intent"`
	Decision  string `yaml:"decision,omitempty" json:"decision,omitempty"`
}

type corpus struct {
	Cases []labelledCase `yaml:"cases" json:"cases"`
}

type evalFailure struct {
	Utterance        string              `json:"utterance"`
	Expected         classifier.Intent   `json:"expected"`
	Actual           classifier.Intent   `json:"actual"`
	ExpectedDecision classifier.Decision `json:"expectedDecision,omitempty"`
	ActualDecision   classifier.Decision `json:"actualDecision"`
	Confidence       float64             `json:"confidence"`
	RuleID           string              `json:"ruleId"`
}

type evalReport struct {
	Total    int           `json:"total"`
	Correct  int           `json:"correct"`
	Accuracy float64       `json:"accuracy"`
	Failures []evalFailure `json:"failures"`
}

func newEvaluateCmd(opts *options) *cobra.Command {
	var (
		dataFile    string
		catalogFile string
		minAccuracy float64
		jsonOut     bool
	)

	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Score the classifier against a labelled utterance corpus",
		RunE: func(cmd *cobra.Command, args []string) error {
			if minAccuracy < 0 || minAccuracy > 100 {
				return fmt.Errorf("--min-accuracy must be within [0,100], got %v", minAccuracy)
			}

			cases, err := loadCorpus(dataFile)
			if err != nil {
				return err
			}

			c, snap, err := loadClassifier(cmd, opts, &catalogFile)
			if err != nil {
				return err
			}

			report, err := evaluate(c, snap, cases)
			if err != nil {
				return err
			}

			if jsonOut {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				if err := enc.Encode(report); err != nil {
					return err
				}
			} else {
				writeReport(cmd.OutOrStdout(), report)
			}

			if report.Accuracy < minAccuracy {
				return fmt.Errorf("%w: %.1f%% < %.1f%%", errBelowMinAccuracy, report.Accuracy, minAccuracy)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&dataFile, "data", defaultEvaluationFile, "Labelled corpus (.yaml, .yml or .json)")
	cmd.Flags().StringVar(&catalogFile, "catalog", defaultCatalogFile, "Catalog snapshot file (.json or .yaml)")
	cmd.Flags().Float64Var(&minAccuracy, "min-accuracy", 0, "Fail when accuracy (percent) is below this value")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print the report as JSON")
	return cmd
}

// loadCorpus reads a labelled corpus and rejects unknown intents and decisions
// before anything is classified.
func loadCorpus(path string) ([]labelledCase, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read corpus: %w", err)
	}

	var doc corpus
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		dec := json.NewDecoder(bytes.NewReader(raw))
		dec.DisallowUnknownFields()
		err = dec.Decode(&doc)
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(raw))
		dec.KnownFields(true)
		err = dec.Decode(&doc)
	default:
		return nil, fmt.Errorf("%w: unsupported extension %q", errInvalidCorpus, filepath.Ext(path))
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", errInvalidCorpus, path, err)
	}
	if len(doc.Cases) == 0 {
		return nil, fmt.Errorf("%w: %s has no cases", errInvalidCorpus, path)
	}

	for i, lc := range doc.Cases {
		if strings.TrimSpace(lc.Utterance) == "" {
			return nil, fmt.Errorf("%w: case %d has no utterance", errInvalidCorpus, i+1)
		}
		if _, err := classifier.ParseIntent(lc.Intent); err != nil {
			return nil, fmt.Errorf("%w: case %d: %v", errInvalidCorpus, i+1, err)
		}
		switch classifier.Decision(lc.Decision) {
		case "", classifier.DecisionAccept, classifier.DecisionEscalatePre, classifier.DecisionEscalatePostEligible:
		default:
			return nil, fmt.Errorf("%w: case %d: unknown decision %q", errInvalidCorpus, i+1, lc.Decision)
		}
	}
	return doc.Cases, nil
}

func evaluate(c *classifier.Classifier, snap *catalog.Snapshot, cases []labelledCase) (*evalReport, error) {
	report := &evalReport{Total: len(cases), Failures: []evalFailure{}}
	for _, lc := range cases {
		res, err := c.Classify(lc.Utterance, snap)
		if err != nil {
			return nil, err
		}

		want := classifier.Intent(lc.Intent)
		wantDecision := classifier.Decision(lc.Decision)
		if res.Intent == want && (wantDecision == "" || res.Verdict.Decision == wantDecision) {
			report.Correct++
			continue
		}
		report.Failures = append(report.Failures, evalFailure{
			Utterance:        lc.Utterance,
			Expected:         want,
			Actual:           res.Intent,
			ExpectedDecision: wantDecision,
			ActualDecision:   res.Verdict.Decision,
			Confidence:       res.Confidence,
			RuleID:           res.RuleID,
		})
	}
	if report.Total > 0 {
		report.Accuracy = float64(report.Correct) / float64(report.Total) * 100
	}
	return report, nil
}

func writeReport(w io.Writer, r *evalReport) {
	fmt.Fprintf(w, "accuracy: %d/%d = %.1f%%\n", r.Correct, r.Total, r.Accuracy)
	if len(r.Failures) == 0 {
		return
	}
	fmt.Fprintf(w, "failures (%d):\n", len(r.Failures))
	for _, f := range r.Failures {
		fmt.Fprintf(w, "  %q\n", f.Utterance)
		if f.ExpectedDecision != "" {
			fmt.Fprintf(w, "    expected: %s %s\n", f.Expected, f.ExpectedDecision)
		} else {
			fmt.Fprintf(w, "    expected: %s\n", f.Expected)
		}
		rule := f.RuleID
		if rule == "" {
			rule = "none"
		}
		fmt.Fprintf(w, "    got:      %s %s (%.2f, rule %s)\n", f.Actual, f.ActualDecision, f.Confidence, rule)
	}
}
