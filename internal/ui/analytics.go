package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/shelf/internal/models"
)

const barWidth = 30

type analyticsScreen struct {
	base
	stats *models.Stats
	err   error
}

func newAnalyticsScreen(e *env, sc scope) *analyticsScreen {
	return &analyticsScreen{base: newBase(e, sc)}
}

func (s *analyticsScreen) init() tea.Cmd { return load(s.base, s.lib.Stats) }

func (s *analyticsScreen) update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case loadedMsg[*models.Stats]:
		s.stats, s.err = msg.data, msg.err
	case tea.KeyMsg:
		if key.Matches(msg, s.keys.refresh) {
			s.stats, s.err = nil, nil
			return load(s.base, s.lib.Stats)
		}
	}
	return nil
}

// bar renders n relative to peak as a fixed-width horizontal bar.
func bar(n, peak int) string {
	if peak <= 0 {
		return ""
	}
	w := n * barWidth / peak
	if n > 0 && w == 0 {
		w = 1
	}
	return styles.chart.Render(strings.Repeat("█", w)) + styles.muted.Render(strings.Repeat("░", barWidth-w))
}

func (s *analyticsScreen) view() string {
	switch {
	case s.err != nil:
		return heading("Library Intelligence") + inlineError(s.err)
	case s.stats == nil:
		return loadingLine("insights")
	}

	st := s.stats
	var b strings.Builder
	b.WriteString(heading("Library Intelligence"))

	topGenre := st.TopGenre
	if topGenre == "" {
		topGenre = "N/A"
	}
	fmt.Fprintf(&b, "Completion rate  %s %.0f%%\n", bar(int(st.CompletionRate), 100), st.CompletionRate)
	fmt.Fprintf(&b, "Total volume     %d\n", st.TotalBooks)
	fmt.Fprintf(&b, "Dominant genre   %s\n\n", topGenre)

	if len(st.GenreStats) > 0 {
		b.WriteString(styles.ok.Render("Genres") + "\n")
		peak := 0
		for _, g := range st.GenreStats {
			peak = max(peak, g.Count)
		}
		for _, g := range st.GenreStats {
			fmt.Fprintf(&b, "%-16s %s %d\n", truncate(g.Genre, 16), bar(g.Count, peak), g.Count)
		}
		b.WriteString("\n")
	}

	if len(st.MonthlyStats) > 0 {
		b.WriteString(styles.ok.Render("Reading velocity") + "\n")
		peak := 0
		for _, m := range st.MonthlyStats {
			peak = max(peak, m.BooksAdded)
		}
		for _, m := range st.MonthlyStats {
			fmt.Fprintf(&b, "%-16s %s %d\n", m.Month, bar(m.BooksAdded, peak), m.BooksAdded)
		}
	}
	return b.String()
}

func (s *analyticsScreen) help() []key.Binding { return []key.Binding{s.keys.refresh} }
