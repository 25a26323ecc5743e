// cmd/tools/intentctl/classify.go
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"tile-intent-workers/internal/catalog"
	"tile-intent-workers/internal/classifier"
)

const defaultCatalogFile = "configs/catalog.json"

func newClassifyCmd(opts *options) *cobra.Command {
	var (
		catalogFile string
		jsonOut     bool
	)

	cmd := &cobra.Command{
		Use:   "classify [utterance...]",
		Short: "Classify utterances; reads one per line from stdin when none are given",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, snap, err := loadClassifier(cmd, opts, &catalogFile)
			if err != nil {
				return err
			}

			utterances := args
			if len(utterances) == 0 {
				if utterances, err = readLines(cmd.InOrStdin()); err != nil {
					return err
				}
			}

			results := make([]*classifier.Result, 0, len(utterances))
			for _, u := range utterances {
				res, err := c.Classify(u, snap)
				if err != nil {
					return err
				}
				results = append(results, res)
			}

			if jsonOut {
				return writeJSON(cmd.OutOrStdout(), results)
			}
			return writeTable(cmd.OutOrStdout(), results)
		},
	}
	cmd.Flags().StringVar(&catalogFile, "catalog", defaultCatalogFile, "Catalog snapshot file (.json or .yaml)")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print full results as JSON")
	return cmd
}

// loadClassifier builds the classifier and snapshot for a one-shot command.
// With --config the service's classifier settings apply, and its catalog file
// replaces *catalogFile unless --catalog was given.
func loadClassifier(cmd *cobra.Command, opts *options, catalogFile *string) (*classifier.Classifier, *catalog.Snapshot, error) {
	clsCfg := classifier.DefaultConfig()
	if opts.configPath != "" {
		cfg, err := opts.loadConfig()
		if err != nil {
			return nil, nil, err
		}
		clsCfg = classifier.ConfigFromApp(cfg.Classifier)
		if !cmd.Flags().Changed("catalog") {
			*catalogFile = cfg.Catalog.FilePath
		}
	}

	c, err := classifier.New(clsCfg)
	if err != nil {
		return nil, nil, err
	}

	data, err := catalog.NewFileSource(*catalogFile).Load(contextOrBackground(cmd))
	if err != nil {
		return nil, nil, err
	}
	snap, err := catalog.NewSnapshot(data)
	if err != nil {
		return nil, nil, err
	}
	return c, snap, nil
}

func readLines(r io.Reader) ([]string, error) {
	var lines []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		if line := strings.TrimSpace(sc.Text()); line != "" {
			lines = append(lines, line)
		}
	}
	return lines, sc.Err()
}

func writeJSON(w io.Writer, results []*classifier.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(results)
}

func writeTable(w io.Writer, results []*classifier.Result) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "UTTERANCE\tINTENT\tCONFIDENCE\tDECISION\tREASON\tRULE")
	for _, r := range results {
		fmt.Fprintf(tw, "%s\t%s\t%.2f\t%s\t%s\t%s\n",
			r.Utterance, r.Intent, r.Confidence, r.Verdict.Decision, r.Verdict.Reason, r.RuleID)
	}
	return tw.Flush()
}

// contextOrBackground keeps RunE usable when a test calls it without Execute.
func contextOrBackground(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
