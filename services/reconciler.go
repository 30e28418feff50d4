package services

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/niveshipo/backend/models"
	"github.com/sirupsen/logrus"
)

// Reconciler merges AI-sourced raw items with the static fallback dataset
// into one de-duplicated, fully-populated listing collection. Every field of
// every output record is resolved through an explicit coalescing chain: raw
// item value if present and coercible, else the fallback template record,
// else a hardcoded default. Status and risk level are always recomputed from
// the coalesced dates and score, never trusted from the source.
//
// The only non-pure input is the clock, injectable for tests.
type Reconciler struct {
	now func() time.Time
}

// NewReconciler creates a reconciler using the wall clock
func NewReconciler() *Reconciler {
	return &Reconciler{now: time.Now}
}

// NewReconcilerWithClock creates a reconciler with a fixed clock for tests
func NewReconcilerWithClock(now func() time.Time) *Reconciler {
	return &Reconciler{now: now}
}

// Reconcile produces the consolidated listing collection from AI-derived raw
// items plus the fallback dataset. AI records precede fallback records;
// symbols are unique in the output with the first occurrence winning. A nil
// or empty aiItems slice yields exactly the annotated fallback set.
func (r *Reconciler) Reconcile(aiItems []json.RawMessage, fallback []models.Listing) []models.Listing {
	var template models.Listing
	if len(fallback) > 0 {
		template = fallback[0]
	}

	today := truncateToMidnight(r.now())

	merged := make([]models.Listing, 0, len(aiItems)+len(fallback))
	for _, raw := range aiItems {
		listing, ok := r.coalesceItem(raw, template)
		if !ok {
			continue
		}
		merged = append(merged, r.annotate(listing, today))
	}
	for _, listing := range fallback {
		merged = append(merged, r.annotate(listing, today))
	}

	return dedupeBySymbol(merged)
}

// annotate recomputes the derived fields of a listing: synthesized id when
// absent, lifecycle status from dates, risk level from score
func (r *Reconciler) annotate(listing models.Listing, today time.Time) models.Listing {
	if listing.ID == "" {
		listing.ID = uuid.NewString()
	}
	if listing.RiskScore <= 0 {
		listing.RiskScore = defaultRiskScore
	}
	listing.Status = deriveStatus(listing.OpenDate, listing.CloseDate, today)
	listing.RiskLevel = RiskLevelFromScore(listing.RiskScore)
	return listing
}

// defaultRiskScore substitutes for an absent or non-numeric risk score
const defaultRiskScore = 50

// RiskLevelFromScore maps a 0-100 risk score to its categorical level:
// below 40 is Low, 40 to 69 is Moderate, 70 and above is High.
func RiskLevelFromScore(score float64) models.RiskLevel {
	switch {
	case score < 40:
		return models.RiskLevelLow
	case score < 70:
		return models.RiskLevelModerate
	default:
		return models.RiskLevelHigh
	}
}

// deriveStatus computes the lifecycle state from the listing dates relative
// to today (midnight-truncated). A missing date never triggers the Closed or
// Upcoming branches, so a record with no dates is Live.
func deriveStatus(openDate, closeDate string, today time.Time) models.ListingStatus {
	if close, ok := parseListingDate(closeDate); ok && today.After(close) {
		return models.StatusClosed
	}
	if open, ok := parseListingDate(openDate); ok && today.Before(open) {
		return models.StatusUpcoming
	}
	return models.StatusLive
}

// listingDateFormats covers the date spellings seen in IPO data feeds
var listingDateFormats = []string{
	"2006-01-02",
	"02-01-2006",
	"02/01/2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"02-Jan-06",
}

func parseListingDate(dateStr string) (time.Time, bool) {
	dateStr = strings.TrimSpace(dateStr)
	if dateStr == "" {
		return time.Time{}, false
	}

	for _, format := range listingDateFormats {
		if t, err := time.Parse(format, dateStr); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func truncateToMidnight(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}

// dedupeBySymbol keeps the first occurrence of each symbol, preserving
// first-occurrence order
func dedupeBySymbol(listings []models.Listing) []models.Listing {
	seen := make(map[string]bool, len(listings))
	result := make([]models.Listing, 0, len(listings))
	for _, listing := range listings {
		key := strings.ToUpper(strings.TrimSpace(listing.Symbol))
		if seen[key] {
			continue
		}
		seen[key] = true
		result = append(result, listing)
	}
	return result
}

// coalesceItem resolves one raw AI item into a complete listing using the
// fallback template for missing or mistyped fields. Returns false when the
// raw item is not a JSON object at all.
func (r *Reconciler) coalesceItem(raw json.RawMessage, template models.Listing) (models.Listing, bool) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		logrus.WithField("component", "reconciler").
			Debug("Skipping non-object item from AI response")
		return models.Listing{}, false
	}

	listing := models.Listing{
		ID:                  stringField(fields, "id", ""),
		CompanyName:         stringField(fields, "companyName", template.CompanyName),
		Symbol:              stringField(fields, "symbol", template.Symbol),
		Sector:              stringField(fields, "sector", template.Sector),
		OpenDate:            stringField(fields, "openDate", template.OpenDate),
		CloseDate:           stringField(fields, "closeDate", template.CloseDate),
		ListingDate:         stringField(fields, "listingDate", template.ListingDate),
		IssueSize:           stringField(fields, "issueSize", template.IssueSize),
		PriceBand:           stringField(fields, "priceBand", template.PriceBand),
		LotSize:             intField(fields, "lotSize", template.LotSize),
		GreyMarketPremium:   stringField(fields, "gmp", template.GreyMarketPremium),
		ListingGainEstimate: stringField(fields, "listingGainEstimate", template.ListingGainEstimate),
		Description:         stringField(fields, "description", template.Description),
		RiskScore:           floatField(fields, "riskScore", template.RiskScore),
		Registrar:           stringField(fields, "registrar", template.Registrar),
		LeadManager:         stringField(fields, "leadManager", template.LeadManager),
		Subscription:        subscriptionField(fields, "subscription", template.Subscription),
		Financials:          metricsField(fields, "financials", template.Financials),
		Valuation:           metricsField(fields, "valuation", template.Valuation),
	}

	listingType := models.ListingType(stringField(fields, "ipoType", string(template.ListingType)))
	if listingType != models.ListingTypeMainboard && listingType != models.ListingTypeSME {
		listingType = models.ListingTypeMainboard
	}
	listing.ListingType = listingType

	return listing, true
}

// stringField coalesces one string field: raw value if coercible, else fallback.
// Numbers and booleans coerce to their literal text since upstream routinely
// mixes types for display fields like lot size and GMP.
func stringField(fields map[string]json.RawMessage, key, fallback string) string {
	raw, present := fields[key]
	if !present {
		return fallback
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}

	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" || strings.HasPrefix(trimmed, "{") || strings.HasPrefix(trimmed, "[") {
		return fallback
	}
	return trimmed
}

// floatField coalesces one numeric field, accepting numeric strings
func floatField(fields map[string]json.RawMessage, key string, fallback float64) float64 {
	raw, present := fields[key]
	if !present {
		return fallback
	}

	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return f
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if parsed, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			return parsed
		}
	}
	return fallback
}

// intField coalesces one integer field, accepting floats and numeric strings
func intField(fields map[string]json.RawMessage, key string, fallback int) int {
	value := floatField(fields, key, float64(fallback))
	return int(value)
}

// subscriptionField coalesces the optional subscription snapshot
func subscriptionField(fields map[string]json.RawMessage, key string, fallback *models.SubscriptionData) *models.SubscriptionData {
	raw, present := fields[key]
	if !present {
		return fallback
	}

	var sub map[string]json.RawMessage
	if err := json.Unmarshal(raw, &sub); err != nil {
		return fallback
	}

	return &models.SubscriptionData{
		QIB:       floatField(sub, "qib", 0),
		NII:       floatField(sub, "nii", 0),
		Retail:    floatField(sub, "retail", 0),
		Total:     floatField(sub, "total", 0),
		UpdatedAt: stringField(sub, "updatedAt", ""),
	}
}

// metricsField coalesces an ordered metric table (financials or valuation)
func metricsField(fields map[string]json.RawMessage, key string, fallback []models.FinancialMetric) []models.FinancialMetric {
	raw, present := fields[key]
	if !present {
		return fallback
	}

	var rows []map[string]json.RawMessage
	if err := json.Unmarshal(raw, &rows); err != nil {
		return fallback
	}

	metrics := make([]models.FinancialMetric, 0, len(rows))
	for _, row := range rows {
		metric := models.FinancialMetric{
			Label: stringField(row, "label", ""),
			Value: stringField(row, "value", ""),
			Trend: stringField(row, "trend", ""),
		}
		if metric.Label == "" && metric.Value == "" {
			continue
		}
		metrics = append(metrics, metric)
	}
	if len(metrics) == 0 {
		return fallback
	}
	return metrics
}
