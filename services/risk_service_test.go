package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/niveshipo/backend/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeGenerator is a scriptable TextGenerator for service tests
type fakeGenerator struct {
	mutex sync.Mutex
	calls int

	grounded   func(call int, prompt string) (*GenerationResult, error)
	chat       func(message string, history []ChatMessage) (*GenerationResult, error)
	transcribe func(audioBase64 string) (string, error)
}

func (f *fakeGenerator) GenerateGrounded(_ context.Context, _ string, prompt string) (*GenerationResult, error) {
	f.mutex.Lock()
	f.calls++
	call := f.calls
	f.mutex.Unlock()

	if f.grounded == nil {
		return &GenerationResult{}, nil
	}
	return f.grounded(call, prompt)
}

func (f *fakeGenerator) GenerateChat(_ context.Context, _, _ string, message string, history []ChatMessage) (*GenerationResult, error) {
	if f.chat == nil {
		return &GenerationResult{}, nil
	}
	return f.chat(message, history)
}

func (f *fakeGenerator) Transcribe(_ context.Context, audioBase64 string) (string, error) {
	if f.transcribe == nil {
		return "", nil
	}
	return f.transcribe(audioBase64)
}

func testListing() *models.Listing {
	return &models.Listing{
		ID:          "l-1",
		CompanyName: "TechVeda Solutions Ltd",
		Symbol:      "TECHVEDA",
	}
}

func defaultWeights() models.WeightPreferences {
	return models.WeightPreferences{Fundamentals: 40, Valuation: 30, Sentiment: 30}
}

func TestAnalyzeEmptyObjectYieldsAllDefaults(t *testing.T) {
	generator := &fakeGenerator{
		grounded: func(_ int, _ string) (*GenerationResult, error) {
			return &GenerationResult{Text: "{}"}, nil
		},
	}
	service := NewRiskService(generator, "pro-model")

	analysis := service.Analyze(context.Background(), testListing(), defaultWeights())

	require.NotNil(t, analysis)
	assert.Equal(t, models.RiskLevelModerate, analysis.Fundamentals)
	assert.Equal(t, models.RiskLevelModerate, analysis.Stability)
	assert.Equal(t, models.RiskLevelModerate, analysis.Pricing)
	assert.Equal(t, models.RiskLevelModerate, analysis.Sentiment)
	assert.Equal(t, defaultSummary, analysis.Summary)
	assert.Equal(t, defaultRedFlags, analysis.RedFlags)
	assert.Equal(t, defaultStrengths, analysis.Strengths)
	assert.Equal(t, defaultSuitabilityScore, analysis.SuitabilityScore)
	assert.Equal(t, defaultInvestorPersona, analysis.InvestorPersona)
	assert.Equal(t, defaultSectorOutlook, analysis.SectorOutlook)
	assert.Equal(t, defaultListingStrategy, analysis.ListingStrategy)
}

func TestAnalyzeWellFormedResponse(t *testing.T) {
	generator := &fakeGenerator{
		grounded: func(_ int, prompt string) (*GenerationResult, error) {
			assert.Contains(t, prompt, "TechVeda Solutions Ltd")
			assert.Contains(t, prompt, "Fundamentals 40%")
			return &GenerationResult{
				Text: "```json\n" + `{
					"fundamentals": "Low",
					"stability": "Moderate",
					"pricing": "High",
					"sentiment": "Low",
					"summary": "Solid book, stretched pricing.",
					"redFlags": ["Aggressive valuation"],
					"strengths": ["Revenue growth", "Order book"],
					"suitabilityScore": 72,
					"investorPersona": "Growth Seeker",
					"sectorOutlook": "Positive medium term.",
					"listingStrategy": "Partial exit on listing pop."
				}` + "\n```",
				Sources: []models.GroundingSource{{URI: "https://nse.example/tv", Title: "NSE"}},
			}, nil
		},
	}
	service := NewRiskService(generator, "pro-model")

	analysis := service.Analyze(context.Background(), testListing(), defaultWeights())

	assert.Equal(t, models.RiskLevelLow, analysis.Fundamentals)
	assert.Equal(t, models.RiskLevelHigh, analysis.Pricing)
	assert.Equal(t, "Solid book, stretched pricing.", analysis.Summary)
	assert.Equal(t, []string{"Aggressive valuation"}, analysis.RedFlags)
	assert.Equal(t, 72, analysis.SuitabilityScore)
	assert.Equal(t, "Growth Seeker", analysis.InvestorPersona)
	require.Len(t, analysis.Sources, 1)
	assert.Equal(t, "https://nse.example/tv", analysis.Sources[0].URI)
}

func TestAnalyzeMistypedFieldsFallToDefaults(t *testing.T) {
	generator := &fakeGenerator{
		grounded: func(_ int, _ string) (*GenerationResult, error) {
			return &GenerationResult{
				Text: `{"fundamentals": "Extreme", "suitabilityScore": 250, "redFlags": "not a list", "summary": 7}`,
			}, nil
		},
	}
	service := NewRiskService(generator, "pro-model")

	analysis := service.Analyze(context.Background(), testListing(), defaultWeights())

	assert.Equal(t, models.RiskLevelModerate, analysis.Fundamentals)
	assert.Equal(t, defaultSuitabilityScore, analysis.SuitabilityScore)
	assert.Equal(t, defaultRedFlags, analysis.RedFlags)
	// bare numbers coerce to their literal text for display fields
	assert.Equal(t, "7", analysis.Summary)
}

func TestAnalyzeCallFailureServesStaticAssessment(t *testing.T) {
	generator := &fakeGenerator{
		grounded: func(_ int, _ string) (*GenerationResult, error) {
			return nil, errors.New("upstream unavailable")
		},
	}
	service := NewRiskService(generator, "pro-model")

	analysis := service.Analyze(context.Background(), testListing(), defaultWeights())

	require.NotNil(t, analysis)
	assert.Equal(t, models.RiskLevelModerate, analysis.Fundamentals)
	assert.Equal(t, defaultSuitabilityScore, analysis.SuitabilityScore)
	assert.NotEmpty(t, analysis.Summary)
	assert.NotEmpty(t, analysis.RedFlags)
	assert.Equal(t, int64(1), service.Metrics.FailedRequests)
}

func TestAnalyzeUnparseableResponseStillYieldsFullResult(t *testing.T) {
	generator := &fakeGenerator{
		grounded: func(_ int, _ string) (*GenerationResult, error) {
			return &GenerationResult{Text: "I could not find structured data, sorry."}, nil
		},
	}
	service := NewRiskService(generator, "pro-model")

	analysis := service.Analyze(context.Background(), testListing(), defaultWeights())

	require.NotNil(t, analysis)
	assert.Equal(t, defaultSummary, analysis.Summary)
	assert.Equal(t, defaultSuitabilityScore, analysis.SuitabilityScore)
	assert.Equal(t, int64(1), service.Metrics.ParseFailures)
}

func TestAnalyzeStaleResultDoesNotOverwriteNewer(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})

	generator := &fakeGenerator{
		grounded: func(call int, _ string) (*GenerationResult, error) {
			if call == 1 {
				close(started)
				<-release
				return &GenerationResult{Text: `{"suitabilityScore": 10}`}, nil
			}
			return &GenerationResult{Text: `{"suitabilityScore": 90}`}, nil
		},
	}
	service := NewRiskService(generator, "pro-model")
	listing := testListing()

	done := make(chan struct{})
	go func() {
		defer close(done)
		service.Analyze(context.Background(), listing, defaultWeights())
	}()

	<-started
	newer := service.Analyze(context.Background(), listing, defaultWeights())
	assert.Equal(t, 90, newer.SuitabilityScore)

	close(release)
	<-done

	latest := service.Latest(listing.Symbol)
	require.NotNil(t, latest)
	assert.Equal(t, 90, latest.SuitabilityScore, "stale first response must not win")
}

func TestLatestIsNilBeforeFirstAnalysis(t *testing.T) {
	service := NewRiskService(&fakeGenerator{}, "pro-model")
	assert.Nil(t, service.Latest("UNSEEN"))
}
