package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/shelf/internal/listing"
	"github.com/desertthunder/shelf/internal/models"
	"github.com/desertthunder/shelf/internal/nav"
	"github.com/desertthunder/shelf/internal/services"
	"github.com/desertthunder/shelf/internal/shared"
)

// exploreScreen is catalog discovery: best sellers, community books and new releases, loaded a page at a time.
type exploreScreen struct {
	base
	sync      *listing.Synchronizer[*models.ExploreResult]
	snap      listing.Snapshot[*models.ExploreResult]
	start     nav.Location
	searching bool
	search    textinput.Model
	cursor    int
	adding    map[string]bool
}

func mergeExplore(prev, next *models.ExploreResult) *models.ExploreResult {
	if prev == nil {
		return next
	}
	if next == nil {
		return prev
	}
	books := make([]models.Volume, 0, len(prev.Books)+len(next.Books))
	books = append(books, prev.Books...)
	books = append(books, next.Books...)
	return &models.ExploreResult{Books: books, HasMore: next.HasMore}
}

func newExploreScreen(e *env, sc scope, loc nav.Location) *exploreScreen {
	s := &exploreScreen{
		base:   newBase(e, sc),
		start:  loc,
		search: textinput.New(),
		adding: map[string]bool{},
	}
	s.search.Prompt = "/ "
	s.search.Placeholder = "search the catalog"

	s.sync = listing.New(listing.Options[*models.ExploreResult]{
		Config: listing.ExploreConfig(e.cfg.Listing.Debounce(), e.cfg.Listing.ExplorePageSize),
		Fetch: func(ctx context.Context, f listing.Filters) (*models.ExploreResult, error) {
			return e.lib.Explore(ctx, services.ExploreQuery{
				Tab:      f.Tab,
				Genre:    f.Genre,
				Query:    f.Query,
				Page:     f.Page,
				PageSize: f.Limit,
			})
		},
		Merge:   mergeExplore,
		URL:     e.history,
		Clock:   e.sess.Clock(),
		Logger:  e.logger,
		Context: s.ctx,
	})
	return s
}

func (s *exploreScreen) init() tea.Cmd {
	if err := s.sync.Hydrate(s.start.Query); err != nil {
		return failed("Discover unavailable", err)
	}
	s.search.SetValue(s.sync.Snapshot().Draft)
	return waitSnapshot(s.base, s.sync)
}

func (s *exploreScreen) close() {
	s.base.close()
	s.sync.Close()
}

func (s *exploreScreen) capturing() bool { return s.searching }

func (s *exploreScreen) volumes() []models.Volume {
	if !s.snap.HasData || s.snap.Data == nil {
		return nil
	}
	return s.snap.Data.Books
}

func (s *exploreScreen) update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case snapshotMsg[*models.ExploreResult]:
		s.snap = msg.snap
		s.cursor = clamp(s.cursor, len(s.volumes()))
		return waitSnapshot(s.base, s.sync)
	case addVolumeMsg:
		return s.save(msg.v)
	case addedMsg:
		delete(s.adding, msg.id)
		if msg.err != nil {
			return failed("Could not add book", msg.err)
		}
		return succeeded(fmt.Sprintf("%q is now in your library", msg.title))
	case tea.KeyMsg:
		if s.searching {
			return s.updateSearch(msg)
		}
		return s.handleKey(msg)
	}
	if s.searching {
		return s.updateSearch(msg)
	}
	return nil
}

func (s *exploreScreen) updateSearch(msg tea.Msg) tea.Cmd {
	if km, ok := msg.(tea.KeyMsg); ok {
		switch km.String() {
		case "enter":
			s.searching = false
			s.search.Blur()
			s.sync.CommitSearch()
			return nil
		case "esc":
			s.searching = false
			s.search.Blur()
			return nil
		}
	}

	var cmd tea.Cmd
	before := s.search.Value()
	s.search, cmd = s.search.Update(msg)
	if s.search.Value() != before {
		s.sync.Type(s.search.Value())
	}
	return cmd
}

func (s *exploreScreen) handleKey(msg tea.KeyMsg) tea.Cmd {
	k := s.keys
	f := s.snap.Filters
	vols := s.volumes()

	switch {
	case key.Matches(msg, k.up), key.Matches(msg, k.down):
		s.cursor = moveCursor(msg, k, s.cursor, len(vols))
	case key.Matches(msg, k.tab):
		next := (f.Tab + 1) % len(exploreTabs)
		if msg.String() == "shift+tab" {
			next = (f.Tab + len(exploreTabs) - 1) % len(exploreTabs)
		}
		s.cursor = 0
		s.sync.SetTab(next)
	case key.Matches(msg, k.genre):
		s.cursor = 0
		s.sync.SetGenre(cycle(exploreGenres, f.Genre))
	case key.Matches(msg, k.search):
		s.searching = true
		return s.search.Focus()
	case key.Matches(msg, k.more):
		if s.snap.HasData && s.snap.Data.HasMore {
			s.sync.LoadMore()
		}
	case key.Matches(msg, k.refresh):
		s.cursor = 0
		s.sync.Refresh()
	case key.Matches(msg, k.add):
		if len(vols) > 0 {
			return s.add(vols[clamp(s.cursor, len(vols))])
		}
	case key.Matches(msg, k.open):
		if len(vols) > 0 {
			v := vols[clamp(s.cursor, len(vols))]
			if err := s.open(shared.CatalogURL(v.CatalogID())); err != nil {
				return failed("Could not open browser", err)
			}
		}
	}
	return nil
}

// addedMsg reports a catalog volume saved to the library.
type addedMsg struct {
	id    string
	title string
	err   error
}

// addVolumeMsg asks the screen to save v after the duplicate prompt was accepted.
type addVolumeMsg struct{ v models.Volume }

func (s *exploreScreen) add(v models.Volume) tea.Cmd {
	if s.cache.InLibrary(v.CatalogID()) {
		return confirm(fmt.Sprintf("%q is already in your library. Add another copy?", v.Title), s.scope.do(func() tea.Msg {
			return addVolumeMsg{v: v}
		}))
	}
	return s.save(v)
}

func (s *exploreScreen) save(v models.Volume) tea.Cmd {
	id := v.CatalogID()
	if s.adding[id] {
		return nil
	}
	s.adding[id] = true
	return s.scope.do(func() tea.Msg {
		_, err := s.lib.AddBook(s.ctx, v.BookInput())
		if err == nil {
			if ferr := s.cache.FetchLibraryIDs(s.ctx); ferr != nil {
				s.logger.Warn("library ids refresh failed", "error", ferr)
			}
		}
		return addedMsg{id: id, title: v.Title, err: err}
	})
}

func (s *exploreScreen) view() string {
	f := s.snap.Filters
	var b strings.Builder
	b.WriteString(heading("Discover"))

	tabs := make([]string, len(exploreTabs))
	for i, t := range exploreTabs {
		if i == f.Tab {
			tabs[i] = styles.bar.Render(t)
		} else {
			tabs[i] = styles.muted.Render(t)
		}
	}
	b.WriteString(strings.Join(tabs, " ") + "\n")

	search := styles.muted.Render("/ to search")
	switch {
	case s.searching:
		search = s.search.View()
	case f.Query != "":
		search = fmt.Sprintf("search:%q", f.Query)
	}
	fmt.Fprintf(&b, "%s  genre:%s\n\n", search, f.Genre)

	if s.snap.Err != nil {
		b.WriteString(inlineError(s.snap.Err) + "\n")
	}

	vols := s.volumes()
	if len(vols) == 0 && s.snap.HasData {
		b.WriteString(styles.muted.Render("Nothing found.") + "\n")
	}
	for i, v := range vols {
		mark := " "
		switch id := v.CatalogID(); {
		case s.adding[id]:
			mark = styles.warn.Render("…")
		case s.cache.InLibrary(id):
			mark = styles.ok.Render("✓")
		case s.cache.InWishlist(id):
			mark = styles.err.Render("♥")
		}
		line := fmt.Sprintf("%s %s %s  %s", pointer(i == s.cursor), mark, truncate(v.Title, 44), styles.muted.Render(truncate(v.Author, 24)))
		if v.Year != "" {
			line += styles.muted.Render(" (" + string(v.Year) + ")")
		}
		b.WriteString(line + "\n")
	}

	switch {
	case s.snap.Loading():
		b.WriteString(loadingLine("more books") + "\n")
	case s.snap.HasData && s.snap.Data.HasMore:
		b.WriteString(styles.muted.Render("m to load more") + "\n")
	}
	return b.String()
}

func (s *exploreScreen) help() []key.Binding {
	if s.searching {
		return []key.Binding{
			key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "search")),
			key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "close")),
		}
	}
	k := s.keys
	return []key.Binding{k.tab, k.genre, k.search, k.more, k.add, k.open, k.refresh}
}
