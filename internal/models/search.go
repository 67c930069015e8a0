package models

// SearchResults groups tenant-scoped matches across the content tree.
type SearchResults struct {
	Courses      []*Course      `json:"courses"`
	Modules      []*Module      `json:"modules"`
	ContentItems []*ContentItem `json:"content_items"`
}
