package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/niveshipo/backend/models"
	"github.com/niveshipo/backend/shared"
	"github.com/sirupsen/logrus"
)

// Named defaults for every risk analysis field. The result object is always
// fully populated: any field the model omits or mistypes resolves to these.
const (
	defaultSuitabilityScore = 50
	defaultInvestorPersona  = "Diversified Retail Investor"
	defaultSummary          = "Formulating detailed market assessment based on real-time volatility indices and sector specific fundamentals..."
	defaultSectorOutlook    = "The sector shows long-term resilience with emerging tailwinds in digital adoption and infrastructure spend."
	defaultListingStrategy  = "Wait for listing day volume assessment before making final allocation moves."
)

var (
	defaultRedFlags  = []string{"Potential market volatility impact", "Evaluating sector-specific liquidity risks"}
	defaultStrengths = []string{"Strong sector tailwinds observed", "Healthy subscription interest indicators"}
)

// RiskService produces on-demand AI risk assessments for single listings.
// Results are created fresh per request and superseded, never merged: a
// per-symbol request sequence guards the stored result so an older in-flight
// response cannot overwrite a newer one.
type RiskService struct {
	generator TextGenerator
	proModel  string
	Metrics   *shared.ServiceMetrics

	mutex  sync.Mutex
	seq    map[string]uint64
	latest map[string]*models.RiskAnalysis
}

// NewRiskService creates the risk analysis service
func NewRiskService(generator TextGenerator, proModel string) *RiskService {
	return &RiskService{
		generator: generator,
		proModel:  proModel,
		Metrics:   shared.NewServiceMetrics("Risk_Service"),
		seq:       make(map[string]uint64),
		latest:    make(map[string]*models.RiskAnalysis),
	}
}

// Analyze runs one risk assessment for the listing with the given weighting
// triple. The contract is total: transport failures and unparseable responses
// both yield a fully-populated (degraded) result, never an error.
func (s *RiskService) Analyze(ctx context.Context, listing *models.Listing, weights models.WeightPreferences) *models.RiskAnalysis {
	symbol := strings.ToUpper(listing.Symbol)
	requestSeq := s.nextSeq(symbol)
	startTime := time.Now()

	result, err := s.generator.GenerateGrounded(ctx, s.proModel, buildRiskPrompt(listing, weights))
	if err != nil {
		shared.NewServiceError(
			shared.ErrorCategoryNetwork,
			"ANALYSIS_CALL_FAILED",
			"risk analysis call failed, serving static assessment",
			"Risk_Service",
			"analyze",
			true,
			err,
		).LogError()
		s.Metrics.RecordRequest(false, time.Since(startTime))
		analysis := unavailableAnalysis()
		s.storeIfCurrent(symbol, requestSeq, analysis)
		return analysis
	}

	parsed := NormalizeResponse(result.Text)
	if parsed == nil {
		s.Metrics.RecordParseFailure()
	}

	analysis := coalesceAnalysis(parsed, result.Sources)
	s.Metrics.RecordRequest(true, time.Since(startTime))
	s.storeIfCurrent(symbol, requestSeq, analysis)

	logrus.WithFields(logrus.Fields{
		"symbol":            symbol,
		"suitability_score": analysis.SuitabilityScore,
		"duration":          time.Since(startTime),
	}).Info("Risk analysis completed")

	return analysis
}

// Latest returns the most recent stored analysis for a symbol, or nil
func (s *RiskService) Latest(symbol string) *models.RiskAnalysis {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.latest[strings.ToUpper(symbol)]
}

func (s *RiskService) nextSeq(symbol string) uint64 {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.seq[symbol]++
	return s.seq[symbol]
}

// storeIfCurrent records the analysis only when no newer request for the same
// symbol has started since this one
func (s *RiskService) storeIfCurrent(symbol string, requestSeq uint64, analysis *models.RiskAnalysis) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.seq[symbol] != requestSeq {
		logrus.WithFields(logrus.Fields{
			"symbol":      symbol,
			"request_seq": requestSeq,
			"current_seq": s.seq[symbol],
		}).Debug("Discarding superseded risk analysis result")
		return
	}
	s.latest[symbol] = analysis
}

func buildRiskPrompt(listing *models.Listing, weights models.WeightPreferences) string {
	return fmt.Sprintf(`Perform an ultra-detailed AI risk analysis for the Indian IPO: %s (%s).
User Weightings: Fundamentals %d%%, Valuation %d%%, Sentiment %d%%.

Please look for recent news, GMP trends, and subscription status.
Provide:
1. Risk Levels (Low/Moderate/High) for: fundamentals, stability, pricing, sentiment.
2. A sharp, narrative 'summary' verdict (50 words).
3. Professional 'redFlags' list and 'strengths' list.
4. 'suitabilityScore' (0-100) specifically for retail investors.
5. 'investorPersona' (e.g., 'Risk-Averse Value Seeker').
6. 'sectorOutlook' (2-sentence view on the industry vertical).
7. 'listingStrategy' (Hold/Sell/Partial exit advice).

Return ONLY clean JSON.`,
		listing.CompanyName, listing.Symbol,
		weights.Fundamentals, weights.Valuation, weights.Sentiment)
}

// coalesceAnalysis applies the per-field default chain to a normalized (and
// possibly nil) response value
func coalesceAnalysis(parsed json.RawMessage, sources []models.GroundingSource) *models.RiskAnalysis {
	var fields map[string]json.RawMessage
	if parsed != nil {
		if err := json.Unmarshal(parsed, &fields); err != nil {
			fields = nil
		}
	}

	analysis := &models.RiskAnalysis{
		Fundamentals:     levelField(fields, "fundamentals"),
		Stability:        levelField(fields, "stability"),
		Pricing:          levelField(fields, "pricing"),
		Sentiment:        levelField(fields, "sentiment"),
		Summary:          textField(fields, "summary", defaultSummary),
		RedFlags:         listField(fields, "redFlags", defaultRedFlags),
		Strengths:        listField(fields, "strengths", defaultStrengths),
		SuitabilityScore: scoreField(fields, "suitabilityScore"),
		InvestorPersona:  textField(fields, "investorPersona", defaultInvestorPersona),
		SectorOutlook:    textField(fields, "sectorOutlook", defaultSectorOutlook),
		ListingStrategy:  textField(fields, "listingStrategy", defaultListingStrategy),
		Sources:          sources,
	}
	return analysis
}

// unavailableAnalysis is the static result served when the analysis call
// itself fails
func unavailableAnalysis() *models.RiskAnalysis {
	return &models.RiskAnalysis{
		Fundamentals:     models.RiskLevelModerate,
		Stability:        models.RiskLevelModerate,
		Pricing:          models.RiskLevelModerate,
		Sentiment:        models.RiskLevelModerate,
		Summary:          "Automated assessment in progress. Currently aggregating secondary market signals and fundamental metrics...",
		RedFlags:         []string{"System processing real-time signals..."},
		Strengths:        []string{"Historical sector performance is supportive"},
		SuitabilityScore: defaultSuitabilityScore,
		InvestorPersona:  "General Portfolio Builder",
		SectorOutlook:    "Neutral to Positive outlook pending final subscription tally.",
		ListingStrategy:  "Dynamic entry/exit strategy based on listing day GMP variance.",
	}
}

func levelField(fields map[string]json.RawMessage, key string) models.RiskLevel {
	value := textField(fields, key, string(models.RiskLevelModerate))
	switch models.RiskLevel(value) {
	case models.RiskLevelLow, models.RiskLevelModerate, models.RiskLevelHigh:
		return models.RiskLevel(value)
	default:
		return models.RiskLevelModerate
	}
}

func textField(fields map[string]json.RawMessage, key, fallback string) string {
	if fields == nil {
		return fallback
	}
	value := stringField(fields, key, fallback)
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}

func listField(fields map[string]json.RawMessage, key string, fallback []string) []string {
	raw, present := fields[key]
	if !present {
		return fallback
	}

	var items []string
	if err := json.Unmarshal(raw, &items); err != nil || len(items) == 0 {
		return fallback
	}
	return items
}

func scoreField(fields map[string]json.RawMessage, key string) int {
	score := int(floatField(fields, key, 0))
	if score <= 0 || score > 100 {
		return defaultSuitabilityScore
	}
	return score
}
