package yahoo

import (
	"context"
	"fmt"
	"time"

	"github.com/piquette/finance-go/chart"
	"github.com/piquette/finance-go/datetime"
	"github.com/piquette/finance-go/quote"
	"github.com/shopspring/decimal"

	"github.com/bobmcallan/fathom/internal/models"
)

// defaultLookbackYears bounds the history window when the caller does not
// pick one.
const defaultLookbackYears = 5

// quoteData is the subset of the live quote feed a snapshot uses.
type quoteData struct {
	price    float64
	name     string
	currency string
}

// fetchQuote reads the live quote feed. finance-go manages its own
// transport, so no context threads through.
func (c *Client) fetchQuote(ticker string) (*quoteData, error) {
	q, err := quote.Get(ticker)
	if err != nil {
		return nil, fmt.Errorf("quote for %s: %w", ticker, err)
	}
	if q == nil {
		return nil, fmt.Errorf("quote for %s: empty result", ticker)
	}
	return &quoteData{
		price:    q.RegularMarketPrice,
		name:     q.ShortName,
		currency: q.CurrencyID,
	}, nil
}

// FetchDailyCloses returns adjusted daily closes over the lookback window,
// oldest first.
func (c *Client) FetchDailyCloses(ctx context.Context, ticker string, lookbackYears int) ([]models.PricePoint, error) {
	if lookbackYears < 1 || lookbackYears > 10 {
		lookbackYears = defaultLookbackYears
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	end := time.Now()
	start := end.AddDate(-lookbackYears, 0, 0)

	iter := chart.Get(&chart.Params{
		Symbol:   ticker,
		Start:    datetime.New(&start),
		End:      datetime.New(&end),
		Interval: datetime.OneDay,
	})

	var points []models.PricePoint
	for iter.Next() {
		bar := iter.Bar()
		close, ok := barClose(bar.AdjClose, bar.Close)
		if !ok {
			continue
		}
		points = append(points, models.PricePoint{
			Date:  time.Unix(int64(bar.Timestamp), 0).UTC(),
			Close: close,
		})
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("price history for %s: %w", ticker, err)
	}

	c.logger.Debug().Str("ticker", ticker).Int("points", len(points)).Msg("Price history fetched")
	return points, nil
}

// barClose picks the adjusted close, falling back to the raw close. Yahoo
// returns zero adjusted closes on some halted and illiquid days; a bar with
// no positive close at all is dropped.
func barClose(adj, raw decimal.Decimal) (float64, bool) {
	if adj.IsPositive() {
		return adj.InexactFloat64(), true
	}
	if raw.IsPositive() {
		return raw.InexactFloat64(), true
	}
	return 0, false
}
