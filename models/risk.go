package models

// WeightPreferences is the user-adjustable weighting triple passed to a risk
// analysis request. Percentages are taken as-is; no sum-to-100 constraint is
// enforced.
type WeightPreferences struct {
	Fundamentals int `json:"fundamentals"`
	Valuation    int `json:"valuation"`
	Sentiment    int `json:"sentiment"`
}

// RiskAnalysis is one on-demand AI risk assessment for a single listing.
// Created fresh per request, never mutated after creation, superseded (not
// merged) by the next request for the same listing. Every field carries a
// named default so the result is always fully renderable.
type RiskAnalysis struct {
	Fundamentals RiskLevel `json:"fundamentals"`
	Stability    RiskLevel `json:"stability"`
	Pricing      RiskLevel `json:"pricing"`
	Sentiment    RiskLevel `json:"sentiment"`

	Summary   string   `json:"summary"`
	RedFlags  []string `json:"red_flags"`
	Strengths []string `json:"strengths"`

	SuitabilityScore int    `json:"suitability_score"`
	InvestorPersona  string `json:"investor_persona"`
	SectorOutlook    string `json:"sector_outlook"`
	ListingStrategy  string `json:"listing_strategy"`

	Sources []GroundingSource `json:"sources,omitempty"`
}
