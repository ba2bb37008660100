package yahoo

import (
	"context"
	"net/url"
	"strconv"
	"time"

	"github.com/bobmcallan/fathom/internal/models"
)

type searchResponse struct {
	Quotes []struct {
		Symbol    string `json:"symbol"`
		ShortName string `json:"shortname"`
		LongName  string `json:"longname"`
		ExchDisp  string `json:"exchDisp"`
		QuoteType string `json:"quoteType"`
	} `json:"quotes"`
	News []struct {
		Title               string `json:"title"`
		Publisher           string `json:"publisher"`
		Link                string `json:"link"`
		ProviderPublishTime int64  `json:"providerPublishTime"`
	} `json:"news"`
}

// FetchHeadlines returns up to models.MaxHeadlines recent news items for a
// ticker, oldest first.
func (c *Client) FetchHeadlines(ctx context.Context, ticker string) ([]models.Headline, error) {
	params := url.Values{}
	params.Set("q", ticker)
	params.Set("quotesCount", "0")
	params.Set("newsCount", strconv.Itoa(models.MaxHeadlines))

	var resp searchResponse
	if err := c.get(ctx, ticker, "/v1/finance/search", params, &resp); err != nil {
		return nil, err
	}

	items := resp.News
	if len(items) > models.MaxHeadlines {
		items = items[:models.MaxHeadlines]
	}

	// Yahoo lists newest first; flip to the snapshot's oldest-first order.
	headlines := make([]models.Headline, 0, len(items))
	for i := len(items) - 1; i >= 0; i-- {
		n := items[i]
		if n.Title == "" {
			continue
		}
		h := models.Headline{
			Title:     n.Title,
			Publisher: n.Publisher,
			Link:      n.Link,
		}
		if n.ProviderPublishTime > 0 {
			h.PublishedAt = time.Unix(n.ProviderPublishTime, 0).UTC()
		}
		headlines = append(headlines, h)
	}

	return headlines, nil
}

// Resolve searches for symbols matching a company name or ticker fragment.
func (c *Client) Resolve(ctx context.Context, query string) ([]models.SymbolMatch, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("quotesCount", "10")
	params.Set("newsCount", "0")

	var resp searchResponse
	if err := c.get(ctx, query, "/v1/finance/search", params, &resp); err != nil {
		return nil, err
	}

	matches := make([]models.SymbolMatch, 0, len(resp.Quotes))
	for _, q := range resp.Quotes {
		if q.Symbol == "" {
			continue
		}
		name := q.LongName
		if name == "" {
			name = q.ShortName
		}
		matches = append(matches, models.SymbolMatch{
			Symbol:   q.Symbol,
			Name:     name,
			Exchange: q.ExchDisp,
			Type:     q.QuoteType,
		})
	}
	return matches, nil
}
