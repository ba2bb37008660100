// Package models defines data structures for Fathom
package models

import (
	"time"

	"github.com/guregu/null/v6"
)

// MaxHeadlines caps how many recent headlines a snapshot carries.
const MaxHeadlines = 7

// StatementPeriod is one fiscal period of the income and cashflow statements.
// Absent figures stay null; they are never coerced to zero.
type StatementPeriod struct {
	EndDate            time.Time  `json:"end_date"`
	TotalRevenue       null.Float `json:"total_revenue"`
	NetIncome          null.Float `json:"net_income"`
	CostOfRevenue      null.Float `json:"cost_of_revenue"`
	OperatingCashFlow  null.Float `json:"operating_cash_flow"`
	CapitalExpenditure null.Float `json:"capital_expenditure"` // signed negative as delivered
	FreeCashFlow       null.Float `json:"free_cash_flow"`
}

// BalancePeriod is one fiscal period of the balance sheet.
type BalancePeriod struct {
	EndDate            time.Time  `json:"end_date"`
	StockholdersEquity null.Float `json:"stockholders_equity"`
	Receivables        null.Float `json:"receivables"`
	Inventory          null.Float `json:"inventory"`
}

// QuoteScalars holds the per-ticker scalar fields delivered with a quote.
// DebtToEquity arrives pre-multiplied by 100 and is normalized downstream.
type QuoteScalars struct {
	TrailingPE                null.Float `json:"trailing_pe"`
	PEGRatio                  null.Float `json:"peg_ratio"`
	ReturnOnEquity            null.Float `json:"return_on_equity"`
	ReturnOnAssets            null.Float `json:"return_on_assets"`
	DebtToEquity              null.Float `json:"debt_to_equity"`
	FreeCashflow              null.Float `json:"free_cashflow"`
	MarketCap                 null.Float `json:"market_cap"`
	EnterpriseValue           null.Float `json:"enterprise_value"`
	EBITDA                    null.Float `json:"ebitda"`
	GrossMargins              null.Float `json:"gross_margins"`
	InstitutionalHoldingShare null.Float `json:"institutional_holding_share"`
	CurrentRatio              null.Float `json:"current_ratio"`
	QuickRatio                null.Float `json:"quick_ratio"`
	TargetMeanPrice           null.Float `json:"target_mean_price"`
}

// Headline is one recent news item for a ticker.
type Headline struct {
	Title       string    `json:"title"`
	Publisher   string    `json:"publisher,omitempty"`
	Link        string    `json:"link,omitempty"`
	PublishedAt time.Time `json:"published_at,omitempty"`
}

// PricePoint is one daily close.
type PricePoint struct {
	Date  time.Time `json:"date"`
	Close float64   `json:"close"`
}

// SymbolMatch is one result from a free-text symbol search.
type SymbolMatch struct {
	Symbol   string `json:"symbol"`
	Name     string `json:"name"`
	Exchange string `json:"exchange,omitempty"`
	Type     string `json:"type,omitempty"`
}

// FinancialSnapshot bundles everything an analysis request consumes.
// All series are ordered oldest to newest; providers deliver newest first
// and must reverse before handing the snapshot over.
type FinancialSnapshot struct {
	Ticker       string            `json:"ticker"`
	Name         string            `json:"name"`
	Currency     string            `json:"currency"`
	CurrentPrice float64           `json:"current_price"`
	Statements   []StatementPeriod `json:"statements"`
	BalanceSheet []BalancePeriod   `json:"balance_sheet"`
	Quote        QuoteScalars      `json:"quote"`
	Headlines    []Headline        `json:"headlines,omitempty"`
	PriceHistory []PricePoint      `json:"price_history,omitempty"`
	FetchedAt    time.Time         `json:"fetched_at"`
}
