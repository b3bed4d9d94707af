package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/triggerNode/BuxTax/src/config"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "buxtax version "+Version+" (build: "+BuildTime+")\n", out)
}

func TestCalcJSON(t *testing.T) {
	out, err := execute(t, "calc", "--gross", "10000", "--ad-spend", "1000", "--json")
	require.NoError(t, err)

	var got struct {
		NetAmount float64 `json:"net_amount"`
		USDPayout float64 `json:"usd_payout"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, 6000.0, got.NetAmount)
	assert.Equal(t, 22.79, got.USDPayout)
}

func TestCalcText(t *testing.T) {
	out, err := execute(t, "calc", "--gross", "10000", "--ad-spend", "1000")
	require.NoError(t, err)
	assert.Contains(t, out, "Net:             6,000 R$")
	assert.Contains(t, out, "USD payout:      $22.79")
	assert.Contains(t, out, "Take rate:       40.0%")
}

func TestCalcWhatIf(t *testing.T) {
	out, err := execute(t, "calc", "--gross", "10000", "--ad-spend", "1000", "--what-if-gross", "1.5")
	require.NoError(t, err)
	assert.Contains(t, out, "Adjusted")
	assert.Contains(t, out, "Payout change:    58.3%")
}

func TestCalcErrors(t *testing.T) {
	_, err := execute(t, "calc", "--gross", "100", "--category", "tycoon")
	assert.Error(t, err)

	_, err = execute(t, "calc")
	assert.Error(t, err)

	_, err = execute(t, "calc", "--gross", "100", "--rates", filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestGoal(t *testing.T) {
	out, err := execute(t, "goal", "--target", "100", "--json")
	require.NoError(t, err)

	var got struct {
		RequiredGross float64 `json:"required_gross"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, 37619.0, got.RequiredGross)

	out, err = execute(t, "goal", "--target", "100")
	require.NoError(t, err)
	assert.Contains(t, out, "Required gross: 37,619 R$")
}

func TestGoalWithCustomRates(t *testing.T) {
	ratesPath := writeFile(t, "rates.json", `{"exchange_rate_usd_per_unit": 0.01}`)
	out, err := execute(t, "goal", "--target", "70", "--rates", ratesPath, "--json")
	require.NoError(t, err)

	var got struct {
		RequiredGross float64 `json:"required_gross"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, 10000.0, got.RequiredGross)
}

func TestParse(t *testing.T) {
	csvPath := writeFile(t, "payouts.csv", `Date,Gross Robux,Marketplace Fee,Ad Spend
2025-01-01,1000,300,100
2025-01-02,2000,600,
oops,10,,
`)
	exportPath := filepath.Join(t.TempDir(), "out.csv")

	out, err := execute(t, "parse", csvPath, "--export", exportPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Format:     summary")
	assert.Contains(t, out, "Rows:       3 total, 2 valid")
	assert.Contains(t, out, "Date range: 2025-01-01 to 2025-01-02")
	assert.Contains(t, out, "Gross:      3,000 R$")
	assert.Contains(t, out, "1 rows had issues, 2 processed successfully")
	assert.Contains(t, out, "Row 3: Invalid date 'oops'")

	exported, err := os.ReadFile(exportPath)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(exported)), "\n")
	assert.Len(t, lines, 3)
}

func TestParseTransactionsWithCategories(t *testing.T) {
	csvPath := writeFile(t, "tx.csv", `Date,Description,Amount
2025-01-01,Game pass sale,1000
2025-01-01,Sponsored boost,-200
`)
	categories := writeFile(t, "categories.yaml", `categories:
  - name: adSpend
    keywords: ["sponsored"]
`)

	out, err := execute(t, "parse", csvPath, "--categories", categories, "--json")
	require.NoError(t, err)

	var got struct {
		Result struct {
			Format string `json:"format"`
			Data   []struct {
				GrossAmount float64 `json:"gross_amount"`
				AdSpend     float64 `json:"ad_spend"`
				NetAmount   float64 `json:"net_amount"`
			} `json:"data"`
		} `json:"result"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "transaction", got.Result.Format)
	require.Len(t, got.Result.Data, 1)
	assert.Equal(t, 1000.0, got.Result.Data[0].GrossAmount)
	assert.Equal(t, 200.0, got.Result.Data[0].AdSpend)
	assert.Equal(t, 800.0, got.Result.Data[0].NetAmount)
}

func TestParseMissingFile(t *testing.T) {
	_, err := execute(t, "parse", filepath.Join(t.TempDir(), "nope.csv"))
	assert.Error(t, err)

	_, err = execute(t, "parse")
	assert.Error(t, err)
}

func TestRatesFlagOverridesServeConfig(t *testing.T) {
	cmd := NewRootCmd()
	serve, _, err := cmd.Find([]string{"serve"})
	require.NoError(t, err)
	assert.NotNil(t, serve.InheritedFlags().Lookup("rates"))

	opts := &rootOptions{ratesPath: "custom.json"}
	cfg := &config.AppConfig{RatesPath: "env.json"}
	opts.applyTo(cfg)
	assert.Equal(t, "custom.json", cfg.RatesPath)

	cfg = &config.AppConfig{RatesPath: "env.json"}
	(&rootOptions{}).applyTo(cfg)
	assert.Equal(t, "env.json", cfg.RatesPath)
}

func TestParseReportsMappingProblemsSeparately(t *testing.T) {
	csvPath := writeFile(t, "payouts.csv", `Date,Gross Robux
2025-01-01,1000
`)
	mappingPath := writeFile(t, "mapping.json", `{"date": "Date", "gross_amount": "Gross Robux", "ad_spend": "Ads"}`)

	out, err := execute(t, "parse", csvPath, "--mapping", mappingPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Mapping problems:\n  Column 'Ads' mapped to adSpend does not exist in the file")
	assert.Contains(t, out, "Processed 1 rows of payout data")
	assert.NotContains(t, out, "rows had issues")
}
