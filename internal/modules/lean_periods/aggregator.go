package lean_periods

import (
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/finpulse/finpulse/internal/domain"
)

// TransactionSource supplies the raw history the aggregator buckets
type TransactionSource interface {
	GetByUserAndDateRange(userID int64, start, end time.Time) ([]domain.Transaction, error)
}

// Aggregator groups a user's transactions into cash-flow periods
type Aggregator struct {
	source TransactionSource
	log    zerolog.Logger
}

// NewAggregator creates a new period aggregator
func NewAggregator(source TransactionSource, log zerolog.Logger) *Aggregator {
	return &Aggregator{
		source: source,
		log:    log.With().Str("service", "lean_periods_aggregator").Logger(),
	}
}

// CashFlowPeriods buckets the last `lookback` months of a user's history.
// Monthly keys look like "2025-01", weekly keys like "2025-W03" (ISO week).
// Only buckets that contain at least one transaction are returned, oldest
// first.
func (a *Aggregator) CashFlowPeriods(userID int64, granularity Granularity, lookbackMonths int, now time.Time) ([]CashFlowPeriod, error) {
	if lookbackMonths < 1 {
		return nil, domain.InvalidInputf("lookback months must be at least 1")
	}

	start := now.AddDate(0, -lookbackMonths, 0)
	transactions, err := a.source.GetByUserAndDateRange(userID, start, now)
	if err != nil {
		return nil, err
	}

	buckets := make(map[string]*CashFlowPeriod)
	sources := make(map[string]map[string]struct{})

	for _, tx := range transactions {
		key, bucketStart, bucketEnd := bucketFor(tx.Timestamp, granularity)
		period, ok := buckets[key]
		if !ok {
			period = &CashFlowPeriod{
				PeriodKey: key,
				Start:     bucketStart,
				End:       bucketEnd,
			}
			buckets[key] = period
			sources[key] = make(map[string]struct{})
		}

		if tx.IsCredit() {
			period.Income += tx.Amount
			sources[key][tx.Category] = struct{}{}
		} else {
			period.Expenses += tx.Amount
		}
		period.TransactionCount++
	}

	periods := make([]CashFlowPeriod, 0, len(buckets))
	for key, period := range buckets {
		period.NetFlow = period.Income - period.Expenses
		period.IncomeSources = len(sources[key])
		periods = append(periods, *period)
	}
	sort.Slice(periods, func(i, j int) bool {
		return periods[i].Start.Before(periods[j].Start)
	})

	a.log.Debug().
		Int64("user_id", userID).
		Str("granularity", string(granularity)).
		Int("periods", len(periods)).
		Msg("Aggregated cash flow periods")

	return periods, nil
}

// bucketFor resolves a timestamp to its period key and boundaries
func bucketFor(ts time.Time, granularity Granularity) (string, time.Time, time.Time) {
	ts = ts.UTC()
	if granularity == GranularityWeekly {
		year, week := ts.ISOWeek()
		// Walk back to Monday of the ISO week.
		weekday := int(ts.Weekday())
		if weekday == 0 {
			weekday = 7
		}
		start := time.Date(ts.Year(), ts.Month(), ts.Day(), 0, 0, 0, 0, time.UTC).
			AddDate(0, 0, -(weekday - 1))
		return fmt.Sprintf("%d-W%02d", year, week), start, start.AddDate(0, 0, 7)
	}

	start := time.Date(ts.Year(), ts.Month(), 1, 0, 0, 0, 0, time.UTC)
	return start.Format("2006-01"), start, start.AddDate(0, 1, 0)
}
