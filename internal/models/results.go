package models

// FilterRequest is the body of a library filter query. Page and limit travel in the query string.
type FilterRequest struct {
	Search string   `json:"search"`
	Genre  string   `json:"genre"`
	Status string   `json:"status"`
	Sort   string   `json:"sort"`
	Tags   []string `json:"tags"`
	Page   int      `json:"-"`
	Limit  int      `json:"-"`
}

// StatusCounts are per-status totals across the whole library.
type StatusCounts struct {
	Unread    int `json:"unread"`
	Reading   int `json:"reading"`
	Completed int `json:"completed"`
}

// FilterResult is one page of a filtered library query.
type FilterResult struct {
	Books         []Book       `json:"books"`
	TotalPages    int          `json:"totalPages"`
	OverallTotal  int          `json:"overallTotal"`
	FilteredTotal int          `json:"filteredTotal"`
	Stats         StatusCounts `json:"stats"`
}

// ExploreResult is one page of external catalog results.
type ExploreResult struct {
	Books   []Volume `json:"books"`
	HasMore bool     `json:"hasMore"`
}

// Explore tabs.
const (
	TabBestSellers = iota
	TabCommunity
	TabNewReleases
)

// GenreAll is the explore view's "no genre filter" value.
const GenreAll = "All"

// Volume is a normalized explore item. Catalog items carry the external id in ID; community items carry
// the backend id in ID and the external id, if any, in GoogleID.
type Volume struct {
	ID          string `json:"id"`
	GoogleID    string `json:"googleId,omitempty"`
	Title       string `json:"title"`
	Author      string `json:"author"`
	Description string `json:"description,omitempty"`
	CoverURL    string `json:"coverUrl"`
	Genre       string `json:"genre"`
	Year        Year   `json:"year,omitempty"`
	Pages       int    `json:"pageCount,omitempty"`
}

// CatalogID is the identifier used for library membership checks.
func (v Volume) CatalogID() string {
	if v.GoogleID != "" {
		return v.GoogleID
	}
	return v.ID
}

// BookInput converts v into a new unread library entry that remembers its catalog id.
func (v Volume) BookInput() BookInput {
	return BookInput{
		Title:       v.Title,
		Author:      v.Author,
		Description: v.Description,
		CoverURL:    v.CoverURL,
		Year:        v.Year,
		Genre:       v.Genre,
		Status:      StatusUnread,
		Tags:        []string{},
		GoogleID:    v.CatalogID(),
	}
}

// GenreStat counts books in one genre.
type GenreStat struct {
	Genre string `json:"genre"`
	Count int    `json:"count"`
}

// MonthlyStat counts books added in one month.
type MonthlyStat struct {
	Month      string `json:"month"`
	BooksAdded int    `json:"booksAdded"`
}

// Stats is the analytics summary.
type Stats struct {
	TotalBooks     int           `json:"totalBooks"`
	CompletionRate float64       `json:"completionRate"`
	TopGenre       string        `json:"topGenre"`
	GenreStats     []GenreStat   `json:"genreStats"`
	MonthlyStats   []MonthlyStat `json:"monthlyStats"`
}
