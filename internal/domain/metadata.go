package domain

// BookMetadata is the bibliographic record resolved for an ISBN: display
// title and author plus a deterministic cover image URL.
type BookMetadata struct {
	Title    string `json:"title"`
	Author   string `json:"author"`
	CoverURL string `json:"cover_url"`
}
