package yahoo

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"time"

	"github.com/guregu/null/v6"

	"github.com/bobmcallan/fathom/internal/models"
)

// quoteSummaryModules lists every module one analysis needs; a single
// request returns them all.
const quoteSummaryModules = "price,summaryDetail,defaultKeyStatistics,financialData," +
	"incomeStatementHistory,balanceSheetHistory,cashflowStatementHistory"

// rawValue is Yahoo's number envelope: {"raw": 1.23, "fmt": "1.23"}.
// Both the envelope and its raw field can be absent.
type rawValue struct {
	Raw *flexFloat64 `json:"raw"`
}

// nullFloat converts an envelope to the explicit-absence carrier.
func (v *rawValue) nullFloat() null.Float {
	if v == nil || v.Raw == nil {
		return null.Float{}
	}
	return null.FloatFrom(float64(*v.Raw))
}

// epochDate reads an envelope holding epoch seconds.
func (v *rawValue) epochDate() (time.Time, bool) {
	if v == nil || v.Raw == nil {
		return time.Time{}, false
	}
	return time.Unix(int64(*v.Raw), 0).UTC(), true
}

type quoteSummaryResponse struct {
	QuoteSummary struct {
		Result []quoteSummaryResult `json:"result"`
		Error  *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"quoteSummary"`
}

type quoteSummaryResult struct {
	Price struct {
		ShortName          string    `json:"shortName"`
		LongName           string    `json:"longName"`
		Currency           string    `json:"currency"`
		RegularMarketPrice *rawValue `json:"regularMarketPrice"`
	} `json:"price"`
	SummaryDetail struct {
		TrailingPE *rawValue `json:"trailingPE"`
		MarketCap  *rawValue `json:"marketCap"`
	} `json:"summaryDetail"`
	DefaultKeyStatistics struct {
		PegRatio                *rawValue `json:"pegRatio"`
		EnterpriseValue         *rawValue `json:"enterpriseValue"`
		HeldPercentInstitutions *rawValue `json:"heldPercentInstitutions"`
	} `json:"defaultKeyStatistics"`
	FinancialData struct {
		CurrentPrice    *rawValue `json:"currentPrice"`
		ReturnOnEquity  *rawValue `json:"returnOnEquity"`
		ReturnOnAssets  *rawValue `json:"returnOnAssets"`
		DebtToEquity    *rawValue `json:"debtToEquity"`
		QuickRatio      *rawValue `json:"quickRatio"`
		CurrentRatio    *rawValue `json:"currentRatio"`
		GrossMargins    *rawValue `json:"grossMargins"`
		FreeCashflow    *rawValue `json:"freeCashflow"`
		EBITDA          *rawValue `json:"ebitda"`
		TargetMeanPrice *rawValue `json:"targetMeanPrice"`
	} `json:"financialData"`
	IncomeStatementHistory struct {
		Statements []incomeStatement `json:"incomeStatementHistory"`
	} `json:"incomeStatementHistory"`
	BalanceSheetHistory struct {
		Statements []balanceSheet `json:"balanceSheetStatements"`
	} `json:"balanceSheetHistory"`
	CashflowStatementHistory struct {
		Statements []cashflowStatement `json:"cashflowStatements"`
	} `json:"cashflowStatementHistory"`
}

type incomeStatement struct {
	EndDate       *rawValue `json:"endDate"`
	TotalRevenue  *rawValue `json:"totalRevenue"`
	NetIncome     *rawValue `json:"netIncome"`
	CostOfRevenue *rawValue `json:"costOfRevenue"`
}

type balanceSheet struct {
	EndDate                *rawValue `json:"endDate"`
	TotalStockholderEquity *rawValue `json:"totalStockholderEquity"`
	NetReceivables         *rawValue `json:"netReceivables"`
	Inventory              *rawValue `json:"inventory"`
}

type cashflowStatement struct {
	EndDate                          *rawValue `json:"endDate"`
	TotalCashFromOperatingActivities *rawValue `json:"totalCashFromOperatingActivities"`
	CapitalExpenditures              *rawValue `json:"capitalExpenditures"`
}

// fundamentalsData is the unpacked quoteSummary payload.
type fundamentalsData struct {
	name         string
	currency     string
	currentPrice float64
	quote        models.QuoteScalars
	statements   []models.StatementPeriod
	balanceSheet []models.BalancePeriod
}

// fetchFundamentals retrieves and unpacks the quoteSummary modules.
func (c *Client) fetchFundamentals(ctx context.Context, ticker string) (*fundamentalsData, error) {
	path := fmt.Sprintf("/v10/finance/quoteSummary/%s", url.PathEscape(ticker))
	params := url.Values{}
	params.Set("modules", quoteSummaryModules)

	var resp quoteSummaryResponse
	if err := c.get(ctx, ticker, path, params, &resp); err != nil {
		return nil, err
	}
	if e := resp.QuoteSummary.Error; e != nil && e.Description != "" {
		return nil, &ProviderError{Ticker: ticker, Endpoint: path, Message: e.Description}
	}
	if len(resp.QuoteSummary.Result) == 0 {
		return nil, &ProviderError{Ticker: ticker, Endpoint: path, Message: "empty quoteSummary result"}
	}

	r := resp.QuoteSummary.Result[0]

	data := &fundamentalsData{
		name:     r.Price.LongName,
		currency: r.Price.Currency,
		quote: models.QuoteScalars{
			TrailingPE:                r.SummaryDetail.TrailingPE.nullFloat(),
			MarketCap:                 r.SummaryDetail.MarketCap.nullFloat(),
			PEGRatio:                  r.DefaultKeyStatistics.PegRatio.nullFloat(),
			EnterpriseValue:           r.DefaultKeyStatistics.EnterpriseValue.nullFloat(),
			InstitutionalHoldingShare: r.DefaultKeyStatistics.HeldPercentInstitutions.nullFloat(),
			ReturnOnEquity:            r.FinancialData.ReturnOnEquity.nullFloat(),
			ReturnOnAssets:            r.FinancialData.ReturnOnAssets.nullFloat(),
			DebtToEquity:              r.FinancialData.DebtToEquity.nullFloat(),
			QuickRatio:                r.FinancialData.QuickRatio.nullFloat(),
			CurrentRatio:              r.FinancialData.CurrentRatio.nullFloat(),
			GrossMargins:              r.FinancialData.GrossMargins.nullFloat(),
			FreeCashflow:              r.FinancialData.FreeCashflow.nullFloat(),
			EBITDA:                    r.FinancialData.EBITDA.nullFloat(),
			TargetMeanPrice:           r.FinancialData.TargetMeanPrice.nullFloat(),
		},
		statements:   buildStatements(r.IncomeStatementHistory.Statements, r.CashflowStatementHistory.Statements),
		balanceSheet: buildBalanceSheet(r.BalanceSheetHistory.Statements),
	}
	if data.name == "" {
		data.name = r.Price.ShortName
	}
	if p := r.FinancialData.CurrentPrice.nullFloat(); p.Valid {
		data.currentPrice = p.Float64
	} else if p := r.Price.RegularMarketPrice.nullFloat(); p.Valid {
		data.currentPrice = p.Float64
	}

	return data, nil
}

// buildStatements merges the income and cashflow histories into one period
// series, matched by fiscal year end. Yahoo delivers newest first; the
// result is oldest first.
func buildStatements(income []incomeStatement, cashflow []cashflowStatement) []models.StatementPeriod {
	byYear := make(map[int]*models.StatementPeriod)
	for _, st := range income {
		end, ok := st.EndDate.epochDate()
		if !ok {
			continue
		}
		byYear[end.Year()] = &models.StatementPeriod{
			EndDate:       end,
			TotalRevenue:  st.TotalRevenue.nullFloat(),
			NetIncome:     st.NetIncome.nullFloat(),
			CostOfRevenue: st.CostOfRevenue.nullFloat(),
		}
	}
	for _, cf := range cashflow {
		end, ok := cf.EndDate.epochDate()
		if !ok {
			continue
		}
		period, exists := byYear[end.Year()]
		if !exists {
			period = &models.StatementPeriod{EndDate: end}
			byYear[end.Year()] = period
		}
		period.OperatingCashFlow = cf.TotalCashFromOperatingActivities.nullFloat()
		period.CapitalExpenditure = cf.CapitalExpenditures.nullFloat()
	}

	periods := make([]models.StatementPeriod, 0, len(byYear))
	for _, p := range byYear {
		periods = append(periods, *p)
	}
	sort.Slice(periods, func(i, j int) bool {
		return periods[i].EndDate.Before(periods[j].EndDate)
	})
	return periods
}

// buildBalanceSheet converts the balance history, oldest first.
func buildBalanceSheet(sheets []balanceSheet) []models.BalancePeriod {
	periods := make([]models.BalancePeriod, 0, len(sheets))
	for _, bs := range sheets {
		end, ok := bs.EndDate.epochDate()
		if !ok {
			continue
		}
		periods = append(periods, models.BalancePeriod{
			EndDate:            end,
			StockholdersEquity: bs.TotalStockholderEquity.nullFloat(),
			Receivables:        bs.NetReceivables.nullFloat(),
			Inventory:          bs.Inventory.nullFloat(),
		})
	}
	sort.Slice(periods, func(i, j int) bool {
		return periods[i].EndDate.Before(periods[j].EndDate)
	})
	return periods
}
