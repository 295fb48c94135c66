package services

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/desertthunder/shelf/internal/models"
	"github.com/desertthunder/shelf/internal/shared"
)

// PlaceholderCover is shown for catalog items without a thumbnail.
const PlaceholderCover = "https://via.placeholder.com/300x400?text=No+Cover"

// DefaultExplorePageSize is the catalog page size used when none is given.
const DefaultExplorePageSize = 15

// volumeList is the catalog search/lookup response proxied by the backend.
type volumeList struct {
	TotalItems int          `json:"totalItems"`
	Items      []volumeItem `json:"items"`
}

type volumeItem struct {
	ID         string     `json:"id"`
	VolumeInfo volumeInfo `json:"volumeInfo"`
}

type volumeInfo struct {
	Title         string   `json:"title"`
	Authors       []string `json:"authors"`
	Description   string   `json:"description"`
	Categories    []string `json:"categories"`
	PublishedDate string   `json:"publishedDate"`
	PageCount     int      `json:"pageCount"`
	ImageLinks    struct {
		Thumbnail string `json:"thumbnail"`
	} `json:"imageLinks"`
}

func (v volumeInfo) year() models.Year {
	if v.PublishedDate == "" {
		return ""
	}
	y, _, _ := strings.Cut(v.PublishedDate, "-")
	return models.Year(y)
}

// normalizeVolume fills the defaults the explore view relies on.
func normalizeVolume(item volumeItem) models.Volume {
	info := item.VolumeInfo
	v := models.Volume{
		ID:          item.ID,
		Title:       info.Title,
		Author:      strings.Join(info.Authors, ", "),
		Description: info.Description,
		CoverURL:    strings.Replace(info.ImageLinks.Thumbnail, "http:", "https:", 1),
		Year:        info.year(),
		Pages:       info.PageCount,
	}
	if len(info.Categories) > 0 {
		v.Genre = info.Categories[0]
	}

	if v.ID == "" {
		v.ID = "temp-" + shared.GenerateID()
	}
	if v.Title == "" {
		v.Title = "Untitled"
	}
	if v.Author == "" {
		v.Author = "Unknown Author"
	}
	if v.CoverURL == "" {
		v.CoverURL = PlaceholderCover
	}
	if v.Genre == "" {
		v.Genre = "General"
	}
	return v
}

// SearchCatalog queries the external catalog through the backend proxy.
func (s *LibraryService) SearchCatalog(ctx context.Context, q string, startIndex int) ([]models.Volume, error) {
	params := url.Values{}
	params.Set("q", q)
	params.Set("startIndex", strconv.Itoa(startIndex))

	var res volumeList
	if err := s.doJSON(ctx, http.MethodGet, "/google-books/search?"+params.Encode(), nil, &res); err != nil {
		return nil, err
	}

	volumes := make([]models.Volume, 0, len(res.Items))
	for _, item := range res.Items {
		volumes = append(volumes, normalizeVolume(item))
	}
	return volumes, nil
}

// ExploreQuery selects one page of the explore view.
type ExploreQuery struct {
	Tab      int
	Genre    string
	Query    string
	Page     int
	PageSize int
}

// catalogQuery builds the external search string for the catalog tabs.
func (q ExploreQuery) catalogQuery() string {
	search := strings.TrimSpace(q.Query)
	if search == "" {
		if q.Tab == models.TabNewReleases {
			search = "new releases 2025"
		} else {
			search = "best sellers 2025"
		}
	}
	if q.Genre != "" && q.Genre != models.GenreAll {
		search += " subject:" + q.Genre
	}
	return search
}

// Explore returns one page of discovery results. The community tab lists books other readers added; the other
// tabs search the external catalog.
func (s *LibraryService) Explore(ctx context.Context, q ExploreQuery) (*models.ExploreResult, error) {
	if q.PageSize <= 0 {
		q.PageSize = DefaultExplorePageSize
	}
	if q.Genre == "" {
		q.Genre = models.GenreAll
	}

	if q.Tab == models.TabCommunity {
		return s.community(ctx, q)
	}

	volumes, err := s.SearchCatalog(ctx, q.catalogQuery(), q.Page*q.PageSize)
	if err != nil {
		return nil, err
	}
	return &models.ExploreResult{Books: volumes, HasMore: len(volumes) == q.PageSize}, nil
}

func (s *LibraryService) community(ctx context.Context, q ExploreQuery) (*models.ExploreResult, error) {
	params := url.Values{}
	params.Set("genre", q.Genre)
	params.Set("q", q.Query)
	params.Set("page", strconv.Itoa(q.Page))

	var res struct {
		Books   []models.Book `json:"books"`
		HasMore bool          `json:"hasMore"`
	}
	if err := s.doJSON(ctx, http.MethodGet, "/books/explore?"+params.Encode(), nil, &res); err != nil {
		return nil, err
	}

	volumes := make([]models.Volume, 0, len(res.Books))
	for _, b := range res.Books {
		volumes = append(volumes, models.Volume{
			ID:          b.ID,
			GoogleID:    b.GoogleID,
			Title:       b.Title,
			Author:      b.Author,
			Description: b.Description,
			CoverURL:    b.CoverURL,
			Genre:       b.Genre,
			Year:        b.Year,
		})
	}
	return &models.ExploreResult{Books: volumes, HasMore: res.HasMore}, nil
}

// FillFromISBN looks up isbn and overlays the result onto in. Title and author are always replaced; the other
// fields keep their previous value when the catalog has none.
func (s *LibraryService) FillFromISBN(ctx context.Context, isbn string, in *models.BookInput) error {
	isbn = strings.ReplaceAll(strings.TrimSpace(isbn), "-", "")
	if isbn == "" {
		return fmt.Errorf("%w: isbn", shared.ErrMissingArgument)
	}

	var res volumeList
	if err := s.doJSON(ctx, http.MethodGet, "/google-books/isbn/"+url.PathEscape(isbn), nil, &res); err != nil {
		return err
	}
	if res.TotalItems == 0 || len(res.Items) == 0 {
		return fmt.Errorf("%w: isbn %s", shared.ErrBookNotFound, isbn)
	}

	info := res.Items[0].VolumeInfo
	in.Title = info.Title
	if in.Title == "" {
		in.Title = "Untitled"
	}
	in.Author = strings.Join(info.Authors, ", ")
	if in.Author == "" {
		in.Author = "Unknown"
	}
	if info.Description != "" {
		in.Description = info.Description
	}
	if info.ImageLinks.Thumbnail != "" {
		in.CoverURL = info.ImageLinks.Thumbnail
	}
	if y := info.year(); y != "" {
		in.Year = y
	}
	if len(info.Categories) > 0 {
		in.Genre = info.Categories[0]
	}
	if in.GoogleID == "" {
		in.GoogleID = res.Items[0].ID
	}
	return nil
}
