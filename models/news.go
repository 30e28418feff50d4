package models

// MarketNews is one item on the news ticker. The list is ephemeral and
// replaced wholesale on each sync cycle; no identity persists across syncs.
type MarketNews struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	URL    string `json:"url"`
	Source string `json:"source"`
	Time   string `json:"time"` // relative label, e.g. "2h ago"
}
