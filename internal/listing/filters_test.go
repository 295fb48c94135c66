package listing

import (
	"net/url"
	"testing"
	"time"

	"github.com/desertthunder/shelf/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestEncodeDecode(t *testing.T) {
	lib := LibraryConfig(500*time.Millisecond, 12)
	explore := ExploreConfig(500*time.Millisecond, 15)

	t.Run("defaults encode to an empty query", func(t *testing.T) {
		assert.Empty(t, lib.Encode(lib.Defaults))
		assert.Empty(t, explore.Encode(explore.Defaults))
	})

	t.Run("only non-default fields are emitted", func(t *testing.T) {
		f := lib.Defaults
		f.Genre = "Fiction"
		f.Page = 3
		q := lib.Encode(f)

		assert.Equal(t, url.Values{"genre": {"Fiction"}, "page": {"3"}}, q)
	})

	t.Run("tags use repeated keys", func(t *testing.T) {
		f := lib.Defaults
		f.Tags = []string{"classic", "loaned"}
		q := lib.Encode(f)

		assert.Equal(t, []string{"classic", "loaned"}, q["tags"])
		assert.Equal(t, "tags=classic&tags=loaned", q.Encode())
	})

	t.Run("fields without a key stay out of the url", func(t *testing.T) {
		f := lib.Defaults
		f.Limit = 50
		assert.Empty(t, lib.Encode(f))

		e := explore.Defaults
		e.Page = 4
		assert.Empty(t, explore.Encode(e))
	})

	t.Run("decode ignores junk", func(t *testing.T) {
		q := url.Values{
			"page":    {"abc"},
			"genre":   {""},
			"unknown": {"x"},
			"status":  {"reading"},
		}
		f := lib.Decode(q)

		assert.Equal(t, 1, f.Page)
		assert.Equal(t, "all", f.Genre)
		assert.Equal(t, "reading", f.Status)
	})

	t.Run("decode clamps page below the first page", func(t *testing.T) {
		assert.Equal(t, 1, lib.Decode(url.Values{"page": {"0"}}).Page)
		assert.Equal(t, 1, lib.Decode(url.Values{"page": {"-5"}}).Page)
	})

	t.Run("explore keys", func(t *testing.T) {
		f := explore.Decode(url.Values{"q": {"dune"}, "genre": {"Fiction"}, "tab": {"2"}})

		assert.Equal(t, "dune", f.Query)
		assert.Equal(t, "Fiction", f.Genre)
		assert.Equal(t, models.TabNewReleases, f.Tab)
		assert.Equal(t, 0, f.Page)
		assert.Equal(t, 15, f.Limit)
	})

	t.Run("round trip is idempotent", func(t *testing.T) {
		queries := []string{"", "dune", "war and peace"}
		genres := []string{"all", "Fiction", "sci-fi"}
		statuses := []string{"all", "unread", "reading", "completed"}
		sorts := []string{SortCreatedDesc, SortTitleAsc}
		tagSets := [][]string{nil, {"a"}, {"a", "b"}}
		pages := []int{1, 2, 7}
		views := []string{ViewGrid, ViewList}

		for _, query := range queries {
			for _, genre := range genres {
				for _, status := range statuses {
					for _, sort := range sorts {
						for _, tags := range tagSets {
							for _, page := range pages {
								for _, view := range views {
									f := lib.Normalize(Filters{
										Query: query, Genre: genre, Status: status, Sort: sort,
										Tags: tags, Page: page, View: view,
									})
									q := lib.Encode(f)
									got := lib.Decode(q)
									if !got.Equal(f) {
										t.Fatalf("round trip mismatch: %+v -> %s -> %+v", f, q.Encode(), got)
									}
									assert.Equal(t, q, lib.Encode(got))
								}
							}
						}
					}
				}
			}
		}
	})

	t.Run("round trip through the query string", func(t *testing.T) {
		f := lib.Normalize(Filters{Query: "a&b=c", Genre: "Sci Fi", Tags: []string{"x y"}, Page: 2})
		parsed, err := url.ParseQuery(lib.Encode(f).Encode())
		assert.NoError(t, err)
		assert.True(t, lib.Decode(parsed).Equal(f))
	})
}

func TestNormalize(t *testing.T) {
	lib := LibraryConfig(0, 12)

	f := lib.Normalize(Filters{Tags: []string{" a ", "", "a", "b"}, Limit: -1, Tab: -2})
	assert.Equal(t, []string{"a", "b"}, f.Tags)
	assert.Equal(t, 12, f.Limit)
	assert.Equal(t, 0, f.Tab)
	assert.Equal(t, "all", f.Genre)
	assert.Equal(t, SortCreatedDesc, f.Sort)
	assert.Equal(t, ViewGrid, f.View)
}

func TestFiltersRequest(t *testing.T) {
	lib := LibraryConfig(0, 12)
	req := lib.Defaults.Request()

	assert.Equal(t, "all", req.Genre)
	assert.NotNil(t, req.Tags)
	assert.Equal(t, 1, req.Page)
	assert.Equal(t, 12, req.Limit)
}
