// Package rates holds the DevEx exchange rate and marketplace fee schedule used by every
// calculation. Values are passed around explicitly; nothing here is mutable global state.
package rates

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"

	"github.com/triggerNode/BuxTax/src/logger"
	"github.com/triggerNode/BuxTax/src/models"
)

const (
	// DefaultExchangeRateUSDPerUnit is $3.7975 per 1,000 Robux.
	DefaultExchangeRateUSDPerUnit = 0.0037975
	DefaultPrimaryFeeRate         = 0.30
	DefaultSecondaryFeeRate       = 0.70
	DefaultLastUpdated            = "2025-01-28"
	DefaultSourceURL              = "https://en.help.roblox.com/hc/en-us/articles/13061189551124"
)

var ErrInvalidRates = errors.New("invalid rate constants")

// RateConstants is an immutable snapshot of the business constants.
type RateConstants struct {
	ExchangeRateUSDPerUnit float64                         `json:"exchange_rate_usd_per_unit"`
	MarketplaceFeeRates    map[models.UserCategory]float64 `json:"marketplace_fee_rates"`
	LastUpdated            string                          `json:"last_updated"`
	SourceURL              string                          `json:"source_url"`
}

// Default returns the built-in constants.
func Default() RateConstants {
	return RateConstants{
		ExchangeRateUSDPerUnit: DefaultExchangeRateUSDPerUnit,
		MarketplaceFeeRates: map[models.UserCategory]float64{
			models.PrimaryCreator:   DefaultPrimaryFeeRate,
			models.SecondaryCreator: DefaultSecondaryFeeRate,
		},
		LastUpdated: DefaultLastUpdated,
		SourceURL:   DefaultSourceURL,
	}
}

// Validate enforces a strictly positive exchange rate and fee rates in [0, 1) for every category.
func (r RateConstants) Validate() error {
	if math.IsNaN(r.ExchangeRateUSDPerUnit) || math.IsInf(r.ExchangeRateUSDPerUnit, 0) || r.ExchangeRateUSDPerUnit <= 0 {
		return fmt.Errorf("%w: exchange rate must be positive, got %v", ErrInvalidRates, r.ExchangeRateUSDPerUnit)
	}
	for _, category := range models.UserCategories {
		rate, ok := r.MarketplaceFeeRates[category]
		if !ok {
			return fmt.Errorf("%w: missing fee rate for %s", ErrInvalidRates, category)
		}
		if math.IsNaN(rate) || rate < 0 || rate >= 1 {
			return fmt.Errorf("%w: fee rate for %s must be in [0,1), got %v", ErrInvalidRates, category, rate)
		}
	}
	return nil
}

// FeeRate returns the marketplace fee fraction for category.
func (r RateConstants) FeeRate(category models.UserCategory) (float64, error) {
	rate, ok := r.MarketplaceFeeRates[category]
	if !ok {
		return 0, fmt.Errorf("no fee rate configured for category %q", category)
	}
	return rate, nil
}

// ToUSD converts an amount of in-game currency to USD without rounding.
func (r RateConstants) ToUSD(units float64) float64 {
	return units * r.ExchangeRateUSDPerUnit
}

// LoadFromFile overlays the JSON document at filePath on top of the defaults.
// Fields missing from the file keep their default values.
func LoadFromFile(filePath string) (RateConstants, error) {
	logger.L.Info("Loading rate constants", "path", filePath)
	file, err := os.ReadFile(filePath)
	if err != nil {
		return RateConstants{}, fmt.Errorf("error reading rates file '%s': %w", filePath, err)
	}

	var overlay struct {
		ExchangeRateUSDPerUnit *float64                        `json:"exchange_rate_usd_per_unit"`
		MarketplaceFeeRates    map[models.UserCategory]float64 `json:"marketplace_fee_rates"`
		LastUpdated            string                          `json:"last_updated"`
		SourceURL              string                          `json:"source_url"`
	}
	if err := json.Unmarshal(file, &overlay); err != nil {
		return RateConstants{}, fmt.Errorf("error unmarshalling rates from '%s': %w", filePath, err)
	}

	r := Default()
	if overlay.ExchangeRateUSDPerUnit != nil {
		r.ExchangeRateUSDPerUnit = *overlay.ExchangeRateUSDPerUnit
	}
	for category, rate := range overlay.MarketplaceFeeRates {
		r.MarketplaceFeeRates[category] = rate
	}
	if overlay.LastUpdated != "" {
		r.LastUpdated = overlay.LastUpdated
	}
	if overlay.SourceURL != "" {
		r.SourceURL = overlay.SourceURL
	}

	if err := r.Validate(); err != nil {
		return RateConstants{}, fmt.Errorf("rates file '%s': %w", filePath, err)
	}
	logger.L.Info("Rate constants loaded", "path", filePath, "exchangeRate", r.ExchangeRateUSDPerUnit, "lastUpdated", r.LastUpdated)
	return r, nil
}

// Load returns the defaults when filePath is empty, otherwise LoadFromFile.
func Load(filePath string) (RateConstants, error) {
	if filePath == "" {
		return Default(), nil
	}
	return LoadFromFile(filePath)
}
