package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tile-intent-workers/internal/catalog"
	"tile-intent-workers/internal/catalog/catalogtest"
	"tile-intent-workers/internal/classifier"
)

func writeCatalog(t *testing.T) string {
	t.Helper()
	raw, err := json.Marshal(catalogtest.Data())
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "catalog.json")
	require.NoError(t, os.WriteFile(path, raw, 0o600))
	return path
}

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestClassify_Table(t *testing.T) {
	out, err := run(t, "", "classify", "--catalog", writeCatalog(t), "Show me Carrara", "asdkjhasd")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "INTENT")
	assert.Contains(t, lines[1], "product_search")
	assert.Contains(t, lines[1], "ACCEPT")
	assert.Contains(t, lines[2], "unknown_intent")
}

func TestClassify_JSONFromStdin(t *testing.T) {
	out, err := run(t, "good morning\n\nshow me matte wall tiles\n", "classify", "--json", "--catalog", writeCatalog(t))
	require.NoError(t, err)

	var results []classifier.Result
	require.NoError(t, json.Unmarshal([]byte(out), &results))
	require.Len(t, results, 2)
	assert.Equal(t, classifier.IntentGreeting, results[0].Intent)
	assert.Equal(t, classifier.IntentCategoryBrowseFiltered, results[1].Intent)
	require.NotNil(t, results[1].Entities.CategoryID)
	assert.Equal(t, catalogtest.CategoryWallTiles, *results[1].Entities.CategoryID)
	assert.Equal(t, "fixture-1", results[1].CatalogVersion)
}

func TestClassify_MissingCatalog(t *testing.T) {
	_, err := run(t, "", "classify", "--catalog", filepath.Join(t.TempDir(), "absent.json"), "hi")
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestCatalogValidate(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		out, err := run(t, "", "catalog", "validate", "--file", writeCatalog(t))
		require.NoError(t, err)
		assert.Contains(t, out, "is valid (version fixture-1)")
		assert.Contains(t, out, "products")
	})

	t.Run("schema violation", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"products":[{"name":"x"}],"categories":[]}`), 0o600))

		_, err := run(t, "", "catalog", "validate", "--file", path)
		assert.ErrorIs(t, err, catalog.ErrInvalidData)
	})
}

func TestCatalogSync_FileToRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	body := fmt.Sprintf(`camunda:
  broker_address: localhost:26500
database:
  redis:
    address: %s
catalog:
  redis_key: catalog:test
`, mr.Addr())
	require.NoError(t, os.WriteFile(cfgPath, []byte(body), 0o600))

	out, err := run(t, "", "--config", cfgPath, "catalog", "sync", "--from", "file", "--file", writeCatalog(t), "--ttl", "1h")
	require.NoError(t, err)
	assert.Contains(t, out, "published fixture-1 from file to catalog:test")

	raw, err := mr.Get("catalog:test")
	require.NoError(t, err)
	var d catalog.Data
	require.NoError(t, json.Unmarshal([]byte(raw), &d))
	assert.Equal(t, "fixture-1", d.Version)
	assert.Equal(t, "1h0m0s", mr.TTL("catalog:test").String())
}

func writeCorpus(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

const labelledYAML = `cases:
  - {utterance: "Show me Carrara", intent: product_search, decision: ACCEPT}
  - {utterance: "good morning", intent: greeting}
  - {utterance: "where is my order", intent: order_tracking}
  - {utterance: "asdkjhasd", intent: greeting}
`

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name     string
		file     string
		body     string
		args     []string
		wantErr  error
		contains []string
		absent   []string
	}{
		{
			name:     "all correct",
			file:     "ok.yaml",
			body:     "cases:\n  - {utterance: hi, intent: greeting}\n  - {utterance: Show me Carrara, intent: product_search}\n",
			args:     []string{"--min-accuracy", "100"},
			contains: []string{"accuracy: 2/2 = 100.0%"},
			absent:   []string{"failures"},
		},
		{
			name: "failure listed",
			file: "mixed.yaml",
			body: labelledYAML,
			contains: []string{
				"accuracy: 3/4 = 75.0%",
				"failures (1):",
				`"asdkjhasd"`,
				"expected: greeting",
				"got:      unknown ESCALATE_PRE",
			},
		},
		{
			name:     "below minimum accuracy",
			file:     "mixed.yaml",
			body:     labelledYAML,
			args:     []string{"--min-accuracy", "80"},
			wantErr:  errBelowMinAccuracy,
			contains: []string{"accuracy: 3/4 = 75.0%"},
		},
		{
			name:     "at minimum accuracy",
			file:     "mixed.yaml",
			body:     labelledYAML,
			args:     []string{"--min-accuracy", "75"},
			contains: []string{"accuracy: 3/4 = 75.0%"},
		},
		{
			name:     "decision mismatch",
			file:     "decision.json",
			body:     `{"cases":[{"utterance":"asdkjhasd","intent":"unknown","decision":"ACCEPT"}]}`,
			contains: []string{"accuracy: 0/1 = 0.0%", "expected: unknown ACCEPT"},
		},
		{
			name:    "unknown intent label",
			file:    "bad.yaml",
			body:    "cases:\n  - {utterance: hi, intent: say_hello}\n",
			wantErr: errInvalidCorpus,
		},
		{
			name:    "unknown decision label",
			file:    "bad.json",
			body:    `{"cases":[{"utterance":"hi","intent":"greeting","decision":"MAYBE"}]}`,
			wantErr: errInvalidCorpus,
		},
		{
			name:    "unknown field",
			file:    "typo.yaml",
			body:    "cases:\n  - {utterance: hi, intnet: greeting}\n",
			wantErr: errInvalidCorpus,
		},
		{
			name:    "empty corpus",
			file:    "empty.yaml",
			body:    "cases: []\n",
			wantErr: errInvalidCorpus,
		},
		{
			name:    "unsupported extension",
			file:    "cases.csv",
			body:    "hi,greeting\n",
			wantErr: errInvalidCorpus,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"evaluate", "--catalog", writeCatalog(t), "--data", writeCorpus(t, tt.file, tt.body)}, tt.args...)
			out, err := run(t, "", args...)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
			}
			for _, s := range tt.contains {
				assert.Contains(t, out, s)
			}
			for _, s := range tt.absent {
				assert.NotContains(t, out, s)
			}
		})
	}
}

func TestEvaluate_JSONReport(t *testing.T) {
	out, err := run(t, "", "evaluate", "--json", "--catalog", writeCatalog(t), "--data", writeCorpus(t, "mixed.yaml", labelledYAML))
	require.NoError(t, err)

	var report evalReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, 4, report.Total)
	assert.Equal(t, 3, report.Correct)
	assert.InDelta(t, 75.0, report.Accuracy, 1e-9)
	require.Len(t, report.Failures, 1)
	assert.Equal(t, classifier.IntentGreeting, report.Failures[0].Expected)
	assert.Equal(t, classifier.IntentUnknown, report.Failures[0].Actual)
	assert.Equal(t, classifier.DecisionEscalatePre, report.Failures[0].ActualDecision)
}

func TestEvaluate_MinAccuracyRange(t *testing.T) {
	_, err := run(t, "", "evaluate", "--min-accuracy", "101", "--data", writeCorpus(t, "ok.yaml", labelledYAML))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--min-accuracy")
}

func TestEvaluate_SeedCorpusIsWellFormed(t *testing.T) {
	cases, err := loadCorpus(filepath.Join("..", "..", "..", defaultEvaluationFile))
	require.NoError(t, err)
	assert.GreaterOrEqual(t, len(cases), 30)

	seen := map[string]bool{}
	for _, lc := range cases {
		assert.False(t, seen[lc.Utterance], "duplicate utterance %q", lc.Utterance)
		seen[lc.Utterance] = true
	}
}
