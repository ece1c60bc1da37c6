package model

// NewsArticle is one company-news item with its timestamp already formatted
// as 'YYYY-MM-DD HH:MM:SS'.
type NewsArticle struct {
	Headline string `json:"headline"`
	URL      string `json:"url"`
	Datetime string `json:"datetime"`
}
