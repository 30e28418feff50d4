package models

// RiskLevel is the categorical risk classification shown on listing cards
type RiskLevel string

const (
	RiskLevelLow      RiskLevel = "Low"
	RiskLevelModerate RiskLevel = "Moderate"
	RiskLevelHigh     RiskLevel = "High"
)

// ListingStatus is the lifecycle state of an IPO, derived from its dates
type ListingStatus string

const (
	StatusUpcoming ListingStatus = "Upcoming"
	StatusLive     ListingStatus = "Live"
	StatusClosed   ListingStatus = "Closed"
)

// ListingType distinguishes mainboard issues from SME issues
type ListingType string

const (
	ListingTypeMainboard ListingType = "Mainboard"
	ListingTypeSME       ListingType = "SME"
)

// GroundingSource is a citation (title + URI) attached to AI-generated content
// by a web-search-augmented call
type GroundingSource struct {
	Title string `json:"title"`
	URI   string `json:"uri"`
}

// FinancialMetric is a single label/value row in a listing's financials or
// valuation tables
type FinancialMetric struct {
	Label string `json:"label"`
	Value string `json:"value"`
	Trend string `json:"trend,omitempty"` // up, down, neutral
}

// SubscriptionData is a snapshot of subscription multiples per investor category
type SubscriptionData struct {
	QIB       float64 `json:"qib"`
	NII       float64 `json:"nii"`
	Retail    float64 `json:"retail"`
	Total     float64 `json:"total"`
	UpdatedAt string  `json:"updated_at"`
}

// Listing represents one IPO tracked by the dashboard.
//
// Status and RiskLevel are never stored independently of their inputs; the
// reconciler recomputes them from the lifecycle dates and RiskScore on every
// pass. Symbol is the dedup key within a reconciled collection.
type Listing struct {
	ID          string `json:"id"`
	CompanyName string `json:"company_name"`
	Symbol      string `json:"symbol"`

	Status      ListingStatus `json:"status"`
	ListingType ListingType   `json:"listing_type"`
	Sector      string        `json:"sector"`

	// Lifecycle dates, YYYY-MM-DD display strings; empty when unknown
	OpenDate    string `json:"open_date"`
	CloseDate   string `json:"close_date"`
	ListingDate string `json:"listing_date"`

	IssueSize           string `json:"issue_size"`
	PriceBand           string `json:"price_band"`
	LotSize             int    `json:"lot_size"`
	GreyMarketPremium   string `json:"gmp"`
	ListingGainEstimate string `json:"listing_gain_estimate,omitempty"`
	Description         string `json:"description"`

	RiskScore float64   `json:"risk_score"`
	RiskLevel RiskLevel `json:"risk_level"`

	Subscription *SubscriptionData `json:"subscription,omitempty"`
	Financials   []FinancialMetric `json:"financials"`
	Valuation    []FinancialMetric `json:"valuation"`

	Registrar   string `json:"registrar"`
	LeadManager string `json:"lead_manager"`

	Sources []GroundingSource `json:"sources,omitempty"`
}
