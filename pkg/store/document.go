package store

// Document is one result from the managed document search index.
type Document struct {
	Title          string   `json:"title"`
	Link           string   `json:"link"`
	LinkWithPage   string   `json:"link_with_page"`
	Snippets       []string `json:"snippets"`
	SegmentContent string   `json:"segment_content"`
	PageNumber     int      `json:"page_number"`
}
