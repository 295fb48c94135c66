// Package listing keeps a list view's filter, sort, pagination and search state in lockstep with its
// URL query string and with the server request that backs the view.
//
// A [Config] describes one view: which query keys it recognizes, their defaults, which changes reset
// pagination, and whether pages replace or append. [Synchronizer] applies a Config to a fetch function.
package listing

import (
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/desertthunder/shelf/internal/models"
)

// Param identifies a field of [Filters].
type Param int

const (
	ParamQuery Param = iota
	ParamGenre
	ParamStatus
	ParamSort
	ParamTags
	ParamPage
	ParamLimit
	ParamView
	ParamTab
)

var paramNames = [...]string{"query", "genre", "status", "sort", "tags", "page", "limit", "view", "tab"}

func (p Param) String() string {
	if int(p) < len(paramNames) {
		return paramNames[p]
	}
	return "param(" + strconv.Itoa(int(p)) + ")"
}

// Filters is the complete state of a list view's query.
type Filters struct {
	Query  string
	Genre  string
	Status string
	Sort   string
	Tags   []string
	Page   int
	Limit  int
	View   string
	Tab    int
}

// Equal compares every field.
func (f Filters) Equal(o Filters) bool {
	return f.Query == o.Query &&
		f.Genre == o.Genre &&
		f.Status == o.Status &&
		f.Sort == o.Sort &&
		slices.Equal(f.Tags, o.Tags) &&
		f.Page == o.Page &&
		f.Limit == o.Limit &&
		f.View == o.View &&
		f.Tab == o.Tab
}

// Request converts f into a library filter request.
func (f Filters) Request() models.FilterRequest {
	tags := f.Tags
	if tags == nil {
		tags = []string{}
	}
	return models.FilterRequest{
		Search: f.Query,
		Genre:  f.Genre,
		Status: f.Status,
		Sort:   f.Sort,
		Tags:   tags,
		Page:   f.Page,
		Limit:  f.Limit,
	}
}

func (f Filters) values(p Param) []string {
	switch p {
	case ParamQuery:
		return []string{f.Query}
	case ParamGenre:
		return []string{f.Genre}
	case ParamStatus:
		return []string{f.Status}
	case ParamSort:
		return []string{f.Sort}
	case ParamTags:
		return slices.Clone(f.Tags)
	case ParamPage:
		return []string{strconv.Itoa(f.Page)}
	case ParamLimit:
		return []string{strconv.Itoa(f.Limit)}
	case ParamView:
		return []string{f.View}
	case ParamTab:
		return []string{strconv.Itoa(f.Tab)}
	}
	return nil
}

// set parses vals into field p. Unparseable numbers are ignored.
func (f *Filters) set(p Param, vals []string) {
	first := vals[0]
	atoi := func(dst *int) {
		if n, err := strconv.Atoi(strings.TrimSpace(first)); err == nil {
			*dst = n
		}
	}

	switch p {
	case ParamQuery:
		f.Query = first
	case ParamGenre:
		f.Genre = first
	case ParamStatus:
		f.Status = first
	case ParamSort:
		f.Sort = first
	case ParamTags:
		f.Tags = slices.Clone(vals)
	case ParamPage:
		atoi(&f.Page)
	case ParamLimit:
		atoi(&f.Limit)
	case ParamView:
		f.View = first
	case ParamTab:
		atoi(&f.Tab)
	}
}

// Mode selects how a new page combines with the displayed data.
type Mode int

const (
	// Replace swaps the displayed page for the new one.
	Replace Mode = iota
	// Append adds pages after the first to the displayed data.
	Append
)

// Config describes one list view.
type Config struct {
	// Keys maps each recognized field to its query key. Fields without a key never appear in the URL.
	Keys     map[Param]string
	Defaults Filters
	Debounce time.Duration
	Mode     Mode
	// Reset lists the fields whose change returns to the first page and clears displayed data.
	Reset []Param
	// Passive lists the fields that rewrite the URL without fetching.
	Passive []Param
}

// FirstPage is the default page number.
func (c Config) FirstPage() int { return c.Defaults.Page }

func (c Config) resets(p Param) bool  { return slices.Contains(c.Reset, p) }
func (c Config) passive(p Param) bool { return slices.Contains(c.Passive, p) }

// Normalize replaces empty strings with defaults, clamps numbers and cleans the tag list.
func (c Config) Normalize(f Filters) Filters {
	d := c.Defaults
	if f.Genre == "" {
		f.Genre = d.Genre
	}
	if f.Status == "" {
		f.Status = d.Status
	}
	if f.Sort == "" {
		f.Sort = d.Sort
	}
	if f.View == "" {
		f.View = d.View
	}
	if f.Page < c.FirstPage() {
		f.Page = c.FirstPage()
	}
	if f.Limit <= 0 {
		f.Limit = d.Limit
	}
	if f.Tab < 0 {
		f.Tab = d.Tab
	}

	var tags []string
	for _, t := range f.Tags {
		if t = strings.TrimSpace(t); t != "" && !slices.Contains(tags, t) {
			tags = append(tags, t)
		}
	}
	if len(tags) == 0 {
		tags = slices.Clone(d.Tags)
	}
	f.Tags = tags
	return f
}

// Encode returns the query string for f, emitting only recognized fields that differ from their default.
func (c Config) Encode(f Filters) url.Values {
	f = c.Normalize(f)
	q := url.Values{}
	for p, key := range c.Keys {
		vals := f.values(p)
		if slices.Equal(vals, c.Defaults.values(p)) || len(vals) == 0 || (len(vals) == 1 && vals[0] == "") {
			continue
		}
		q[key] = vals
	}
	return q
}

// Decode seeds filters from q. Absent, empty or unparseable parameters keep their default.
func (c Config) Decode(q url.Values) Filters {
	f := c.Defaults
	f.Tags = slices.Clone(c.Defaults.Tags)
	for p, key := range c.Keys {
		var vals []string
		for _, v := range q[key] {
			if v != "" {
				vals = append(vals, v)
			}
		}
		if len(vals) == 0 {
			continue
		}
		f.set(p, vals)
	}
	return c.Normalize(f)
}

// LibraryConfig configures the personal library list.
func LibraryConfig(debounce time.Duration, pageSize int) Config {
	if pageSize <= 0 {
		pageSize = 12
	}
	return Config{
		Keys: map[Param]string{
			ParamQuery:  "search",
			ParamGenre:  "genre",
			ParamStatus: "status",
			ParamSort:   "sort",
			ParamTags:   "tags",
			ParamPage:   "page",
			ParamView:   "view",
		},
		Defaults: Filters{
			Genre:  "all",
			Status: "all",
			Sort:   SortCreatedDesc,
			Page:   1,
			Limit:  pageSize,
			View:   ViewGrid,
		},
		Debounce: debounce,
		Mode:     Replace,
		Reset:    []Param{ParamQuery, ParamGenre, ParamStatus, ParamSort, ParamTags},
		Passive:  []Param{ParamView},
	}
}

// ExploreConfig configures the catalog discovery list, which pages from zero and appends.
func ExploreConfig(debounce time.Duration, pageSize int) Config {
	if pageSize <= 0 {
		pageSize = 15
	}
	return Config{
		Keys: map[Param]string{
			ParamQuery: "q",
			ParamGenre: "genre",
			ParamTab:   "tab",
		},
		Defaults: Filters{
			Genre: models.GenreAll,
			Page:  0,
			Limit: pageSize,
		},
		Debounce: debounce,
		Mode:     Append,
		Reset:    []Param{ParamQuery, ParamGenre, ParamTab},
	}
}

const (
	SortCreatedDesc = "created_desc"
	SortTitleAsc    = "title_asc"

	ViewGrid = "grid"
	ViewList = "list"
)
