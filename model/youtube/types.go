// Package youtube contains YouTube-specific data models
package youtube

// VideoCandidate is one raw search result as reported by a search provider.
// Fields the provider did not report keep their zero value.
type VideoCandidate struct {
	ID              string
	ChannelName     string
	ChannelID       string
	Title           string
	ViewCount       int64
	DurationSeconds float64
	// UploadDate is a zero-padded YYYYMMDD string, empty when unknown.
	UploadDate  string
	UploaderURL string
	ChannelURL  string
}

// SearchResult is the answer of a single provider query.
// A nil Entries slice means the provider returned no results collection at all.
type SearchResult struct {
	Query   string
	Entries []*VideoCandidate
}
