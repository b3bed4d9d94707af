package processors

import (
	"errors"
	"math"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/triggerNode/BuxTax/src/models"
	"github.com/triggerNode/BuxTax/src/utils"
)

var ErrInvalidTarget = errors.New("goal target must be a positive amount")

// trendRecords is how many of the most recent records feed the daily average.
const trendRecords = 7

type goalProcessorImpl struct{}

func NewGoalProcessor() GoalProcessor {
	return &goalProcessorImpl{}
}

// Track compares the USD value of records with targetUSD. A projection to deadline is made
// only when there are at least a week of records and the deadline is in the future; a zero
// deadline means none was set.
func (p *goalProcessorImpl) Track(records []models.PayoutRecord, targetUSD float64, deadline, now time.Time) (models.GoalProgress, error) {
	if math.IsNaN(targetUSD) || math.IsInf(targetUSD, 0) || targetUSD <= 0 {
		return models.GoalProgress{}, ErrInvalidTarget
	}

	sorted := make([]models.PayoutRecord, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Date < sorted[j].Date })

	earned := decimal.Zero
	for _, rec := range sorted {
		earned = earned.Add(decimal.NewFromFloat(rec.USDValue))
	}
	target := decimal.NewFromFloat(targetUSD)

	progress := models.GoalProgress{
		TargetUSD:      targetUSD,
		EarnedUSD:      earned.Round(2).InexactFloat64(),
		RemainingUSD:   decimal.Max(decimal.Zero, target.Sub(earned)).Round(2).InexactFloat64(),
		CurrentPercent: cappedPercent(earned, target),
	}

	if !deadline.IsZero() {
		progress.DaysRemaining = utils.DaysBetween(now, deadline)
	}
	if progress.DaysRemaining > 0 && progress.RemainingUSD > 0 {
		progress.RequiredDailyUSD = utils.RoundFloat(progress.RemainingUSD/float64(progress.DaysRemaining), 2)
	}

	if len(sorted) >= trendRecords {
		recent := decimal.Zero
		for _, rec := range sorted[len(sorted)-trendRecords:] {
			recent = recent.Add(decimal.NewFromFloat(rec.USDValue))
		}
		average := recent.Div(decimal.NewFromInt(trendRecords))
		progress.DailyAverageUSD = average.Round(2).InexactFloat64()

		if progress.DaysRemaining > 0 {
			projected := earned.Add(average.Mul(decimal.NewFromInt(int64(progress.DaysRemaining))))
			progress.ProjectedPercent = cappedPercent(projected, target)
			progress.HasProjection = true
		}
	}

	progress.OnTrack = progress.CurrentPercent >= 100 || (progress.HasProjection && progress.ProjectedPercent >= 100)
	return progress, nil
}

// cappedPercent returns value/target*100 rounded to one decimal and capped at 100.
func cappedPercent(value, target decimal.Decimal) float64 {
	pct := value.Div(target).Mul(decimal.NewFromInt(100))
	return math.Min(100, pct.Round(1).InexactFloat64())
}
