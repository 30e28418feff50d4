package services

import (
	"time"

	"github.com/niveshipo/backend/models"
)

// FallbackListings returns the static reference dataset served when the AI
// sync is unavailable and used as the field-level fallback source during
// reconciliation. Dates are relative to the current day so the demo data
// always exercises all three lifecycle states.
func FallbackListings() []models.Listing {
	return []models.Listing{
		{
			ID:                "1",
			CompanyName:       "TechVeda Solutions Ltd",
			Symbol:            "TECHVEDA",
			ListingType:       models.ListingTypeMainboard,
			IssueSize:         "₹1,250 Cr",
			PriceBand:         "₹420 - ₹441",
			LotSize:           34,
			OpenDate:          daysFromNow(-25),
			CloseDate:         daysFromNow(-22),
			ListingDate:       daysFromNow(-15),
			GreyMarketPremium: "+₹85 (19%)",
			Description:       "Leading provider of enterprise digital transformation services with a focus on AI and Cloud infrastructure.",
			RiskScore:         35,
			Sector:            "Technology",
			Subscription: &models.SubscriptionData{
				QIB:       12.5,
				NII:       4.2,
				Retail:    2.1,
				Total:     6.8,
				UpdatedAt: daysFromNow(-22),
			},
			Financials: []models.FinancialMetric{
				{Label: "Revenue Growth", Value: "28% YoY", Trend: "up"},
				{Label: "EBITDA Margin", Value: "18.5%", Trend: "up"},
				{Label: "Debt/Equity", Value: "0.12", Trend: "neutral"},
			},
			Valuation: []models.FinancialMetric{
				{Label: "P/E Ratio", Value: "24.5"},
				{Label: "Market Cap", Value: "₹5,400 Cr"},
			},
			Registrar:   "Link Intime India Pvt Ltd",
			LeadManager: "ICICI Securities",
		},
		{
			ID:                "2",
			CompanyName:       "NexGen FinTech",
			Symbol:            "NXGN",
			ListingType:       models.ListingTypeSME,
			IssueSize:         "₹850 Cr",
			PriceBand:         "₹180 - ₹195",
			LotSize:           75,
			OpenDate:          daysFromNow(-1),
			CloseDate:         daysFromNow(2),
			ListingDate:       daysFromNow(8),
			GreyMarketPremium: "+₹42 (22%)",
			Description:       "Digital-first banking platform revolutionizing micro-lending for small businesses.",
			RiskScore:         45,
			Sector:            "Finance",
			Subscription: &models.SubscriptionData{
				QIB:       5.2,
				NII:       2.1,
				Retail:    8.5,
				Total:     4.8,
				UpdatedAt: "Today, 10:00 AM",
			},
			Financials: []models.FinancialMetric{
				{Label: "CASA Ratio", Value: "42%", Trend: "up"},
				{Label: "NPA", Value: "1.2%", Trend: "down"},
			},
			Valuation: []models.FinancialMetric{
				{Label: "P/B Ratio", Value: "3.2"},
			},
			Registrar:   "KFin Technologies Ltd",
			LeadManager: "HDFC Bank",
		},
		{
			ID:                "3",
			CompanyName:       "GreenGrid Renewables",
			Symbol:            "GGRID",
			ListingType:       models.ListingTypeMainboard,
			IssueSize:         "₹2,100 Cr",
			PriceBand:         "₹550 - ₹575",
			LotSize:           26,
			OpenDate:          daysFromNow(15),
			CloseDate:         daysFromNow(18),
			ListingDate:       daysFromNow(25),
			GreyMarketPremium: "N/A",
			Description:       "Sustainable energy infrastructure focusing on solar-wind hybrid projects.",
			RiskScore:         25,
			Sector:            "Energy",
			Financials: []models.FinancialMetric{
				{Label: "Capacity", Value: "2.5 GW", Trend: "up"},
				{Label: "Debt", Value: "₹400 Cr", Trend: "neutral"},
			},
			Valuation: []models.FinancialMetric{
				{Label: "EV/EBITDA", Value: "12.4"},
			},
			Registrar:   "Link Intime India Pvt Ltd",
			LeadManager: "Kotak Mahindra Capital",
		},
	}
}

// FallbackNews returns the static ticker items used until the first
// successful news sync
func FallbackNews() []models.MarketNews {
	return []models.MarketNews{
		{ID: "n1", Title: "SEBI tightens disclosure norms for SME listings", URL: "https://www.sebi.gov.in", Source: "SEBI", Time: "2h ago"},
		{ID: "n2", Title: "Mainboard IPO pipeline crosses ₹80,000 Cr for the fiscal", URL: "https://www.nseindia.com", Source: "NSE", Time: "4h ago"},
		{ID: "n3", Title: "Retail participation in primary market hits record high", URL: "https://www.bseindia.com", Source: "BSE", Time: "6h ago"},
	}
}

func daysFromNow(days int) string {
	return time.Now().AddDate(0, 0, days).Format("2006-01-02")
}
