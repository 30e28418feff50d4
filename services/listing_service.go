package services

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/niveshipo/backend/models"
	"github.com/niveshipo/backend/shared"
	"github.com/sirupsen/logrus"
)

// ipoDataPrompt describes the desired listing schema to the model. The
// response is untrusted; the normalizer and reconciler absorb whatever shape
// comes back.
const ipoDataPrompt = `Fetch the latest real-time Indian IPO data (Mainboard & SME) from NSE and BSE as of today. I need exactly 8 current, upcoming, or recently closed IPOs. For each, include: companyName, symbol, status (Live/Upcoming/Closed), ipoType (Mainboard/SME), issueSize, priceBand, lotSize, openDate, closeDate, listingDate, gmp, listingGainEstimate (AI prediction string like '+20-25% expected'), description, sector, riskScore (0-100), registrar, leadManager. Also include subscription data (qib, nii, retail, total). Return only a clean JSON array.`

// marketNewsPrompt requests the ticker items refreshed alongside each sync
const marketNewsPrompt = `List the 6 most important Indian IPO and primary-market news headlines right now. For each, include: title, url, source (publisher name), time (relative label like '2h ago'). Return only a clean JSON array.`

// ListingService orchestrates the periodic market sync: it prompts the
// external model, normalizes and reconciles the response against the fallback
// dataset, and holds the consolidated state the API serves. Every failure
// path degrades to fallback data; Sync never returns an error.
type ListingService struct {
	generator  TextGenerator
	reconciler *Reconciler
	flashModel string
	Metrics    *shared.ServiceMetrics

	mutex         sync.RWMutex
	listings      []models.Listing
	sources       []models.GroundingSource
	news          []models.MarketNews
	lastRefreshed string
}

// NewListingService creates the service pre-populated with annotated fallback
// data so the API has content before the first sync completes
func NewListingService(generator TextGenerator, flashModel string) *ListingService {
	s := &ListingService{
		generator:  generator,
		reconciler: NewReconciler(),
		flashModel: flashModel,
		Metrics:    shared.NewServiceMetrics("Listing_Service"),
	}
	s.listings = s.reconciler.Reconcile(nil, FallbackListings())
	s.news = FallbackNews()
	return s
}

// Sync runs one full refresh cycle: listings first, then the news ticker
func (s *ListingService) Sync(ctx context.Context) {
	s.syncListings(ctx)
	s.syncNews(ctx)
}

func (s *ListingService) syncListings(ctx context.Context) {
	startTime := time.Now()

	result, err := s.generator.GenerateGrounded(ctx, s.flashModel, ipoDataPrompt)
	if err != nil {
		shared.NewServiceError(
			shared.ErrorCategoryNetwork,
			"SYNC_CALL_FAILED",
			"IPO data call failed, serving fallback dataset",
			"Listing_Service",
			"sync",
			true,
			err,
		).LogError()
		s.Metrics.RecordFallbackActivation()
		s.store(s.reconciler.Reconcile(nil, FallbackListings()), nil)
		return
	}

	parsed := NormalizeResponse(result.Text)
	if parsed == nil {
		s.Metrics.RecordParseFailure()
	}
	items := AsItemList(parsed)
	if len(items) == 0 {
		s.Metrics.RecordFallbackActivation()
	}

	listings := s.reconciler.Reconcile(items, FallbackListings())
	s.store(listings, result.Sources)

	logrus.WithFields(logrus.Fields{
		"listings": len(listings),
		"ai_items": len(items),
		"sources":  len(result.Sources),
		"duration": time.Since(startTime),
	}).Info("Market sync completed")
}

func (s *ListingService) syncNews(ctx context.Context) {
	result, err := s.generator.GenerateGrounded(ctx, s.flashModel, marketNewsPrompt)
	if err != nil {
		logrus.Warnf("News call failed, keeping previous ticker items: %v", err)
		return
	}

	items := AsItemList(NormalizeResponse(result.Text))
	news := make([]models.MarketNews, 0, len(items))
	for _, raw := range items {
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(raw, &fields); err != nil {
			continue
		}
		item := models.MarketNews{
			ID:     stringField(fields, "id", uuid.NewString()),
			Title:  stringField(fields, "title", ""),
			URL:    stringField(fields, "url", ""),
			Source: stringField(fields, "source", "Market Desk"),
			Time:   stringField(fields, "time", "now"),
		}
		if item.Title == "" {
			continue
		}
		news = append(news, item)
	}

	if len(news) == 0 {
		return
	}

	s.mutex.Lock()
	s.news = news
	s.mutex.Unlock()
}

func (s *ListingService) store(listings []models.Listing, sources []models.GroundingSource) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.listings = listings
	s.sources = sources
	s.lastRefreshed = time.Now().Format("3:04 PM")
}

// Listings returns the reconciled collection filtered by status, listing type
// and a free-text query over company name, symbol and sector. Empty or "All"
// filters match everything. The Closed status filter additionally hides
// listings that closed more than 30 days ago.
func (s *ListingService) Listings(status, listingType, query string) []models.Listing {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	today := truncateToMidnight(time.Now())
	query = strings.ToLower(strings.TrimSpace(query))

	result := make([]models.Listing, 0, len(s.listings))
	for _, listing := range s.listings {
		if query != "" &&
			!strings.Contains(strings.ToLower(listing.CompanyName), query) &&
			!strings.Contains(strings.ToLower(listing.Symbol), query) &&
			!strings.Contains(strings.ToLower(listing.Sector), query) {
			continue
		}

		if status != "" && status != "All" {
			if string(listing.Status) != status {
				continue
			}
			if listing.Status == models.StatusClosed {
				if close, ok := parseListingDate(listing.CloseDate); ok && today.Sub(close) > 30*24*time.Hour {
					continue
				}
			}
		}

		if listingType != "" && listingType != "All" && string(listing.ListingType) != listingType {
			continue
		}

		result = append(result, listing)
	}
	return result
}

// BySymbol returns the listing with the given symbol, or nil
func (s *ListingService) BySymbol(symbol string) *models.Listing {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	for i := range s.listings {
		if strings.EqualFold(s.listings[i].Symbol, symbol) {
			listing := s.listings[i]
			return &listing
		}
	}
	return nil
}

// Sources returns the grounding citations from the last successful sync
func (s *ListingService) Sources() []models.GroundingSource {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.sources
}

// News returns the current ticker items
func (s *ListingService) News() []models.MarketNews {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.news
}

// LastRefreshed returns the human-readable stamp of the last sync attempt
func (s *ListingService) LastRefreshed() string {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.lastRefreshed
}
