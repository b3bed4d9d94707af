package rates

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/triggerNode/BuxTax/src/models"
)

func TestDefault(t *testing.T) {
	r := Default()
	require.NoError(t, r.Validate())

	assert.Equal(t, 0.0037975, r.ExchangeRateUSDPerUnit)
	primary, err := r.FeeRate(models.PrimaryCreator)
	require.NoError(t, err)
	assert.Equal(t, 0.30, primary)
	secondary, err := r.FeeRate(models.SecondaryCreator)
	require.NoError(t, err)
	assert.Equal(t, 0.70, secondary)
	assert.Equal(t, "2025-01-28", r.LastUpdated)
}

func TestDefault_ReturnsIndependentCopies(t *testing.T) {
	a := Default()
	a.MarketplaceFeeRates[models.PrimaryCreator] = 0.5

	b := Default()
	assert.Equal(t, 0.30, b.MarketplaceFeeRates[models.PrimaryCreator])
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*RateConstants)
	}{
		{name: "zero exchange rate", modify: func(r *RateConstants) { r.ExchangeRateUSDPerUnit = 0 }},
		{name: "negative exchange rate", modify: func(r *RateConstants) { r.ExchangeRateUSDPerUnit = -1 }},
		{name: "fee rate of one", modify: func(r *RateConstants) { r.MarketplaceFeeRates[models.SecondaryCreator] = 1 }},
		{name: "negative fee rate", modify: func(r *RateConstants) { r.MarketplaceFeeRates[models.PrimaryCreator] = -0.1 }},
		{name: "missing category", modify: func(r *RateConstants) { delete(r.MarketplaceFeeRates, models.PrimaryCreator) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Default()
			tt.modify(&r)
			assert.ErrorIs(t, r.Validate(), ErrInvalidRates)
		})
	}
}

func TestFeeRate_UnknownCategory(t *testing.T) {
	_, err := Default().FeeRate(models.UserCategory("publisher"))
	assert.Error(t, err)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rates.json")
	content := `{"exchange_rate_usd_per_unit": 0.0035, "marketplace_fee_rates": {"ugcCreator": 0.6}, "last_updated": "2024-06-01"}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	r, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, 0.0035, r.ExchangeRateUSDPerUnit)
	assert.Equal(t, 0.30, r.MarketplaceFeeRates[models.PrimaryCreator], "unspecified categories keep defaults")
	assert.Equal(t, 0.6, r.MarketplaceFeeRates[models.SecondaryCreator])
	assert.Equal(t, "2024-06-01", r.LastUpdated)
	assert.Equal(t, DefaultSourceURL, r.SourceURL)
}

func TestLoadFromFile_RejectsInvalid(t *testing.T) {
	dir := t.TempDir()

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"marketplace_fee_rates": {"gameDev": 1.2}}`), 0o600))
	_, err := LoadFromFile(bad)
	assert.ErrorIs(t, err, ErrInvalidRates)

	garbage := filepath.Join(dir, "garbage.json")
	require.NoError(t, os.WriteFile(garbage, []byte(`not json`), 0o600))
	_, err = LoadFromFile(garbage)
	assert.Error(t, err)

	_, err = LoadFromFile(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)
}

func TestLoad_EmptyPathUsesDefaults(t *testing.T) {
	r, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), r)
}
