package ui

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/shelf/internal/models"
)

const (
	bfTitle = iota
	bfAuthor
	bfGenre
	bfYear
	bfStatus
	bfTags
	bfDescription
	bfCover
	bfCoverFile
	bfISBN
)

// bookForm adds or edits a book. It is embedded by the screens that open it.
type bookForm struct {
	b      base
	form   *form
	editID string
	keep   models.BookInput
	busy   bool
}

// isbnMsg carries the result of an ISBN lookup.
type isbnMsg struct {
	in  models.BookInput
	err error
}

// savedMsg reports a saved book.
type savedMsg struct {
	book *models.Book
	err  error
}

func newBookForm(b base, book *models.Book) *bookForm {
	var in models.BookInput
	editID := ""
	if book != nil {
		in = book.Input()
		editID = book.ID
	}
	if in.Status == "" {
		in.Status = models.StatusUnread
	}

	return &bookForm{
		b:      b,
		editID: editID,
		keep:   in,
		form: newForm(
			field{label: "Title", value: in.Title},
			field{label: "Author", value: in.Author},
			field{label: "Genre", value: in.Genre},
			field{label: "Year", value: string(in.Year)},
			field{label: "Status", value: string(in.Status), placeholder: "unread, reading or completed"},
			field{label: "Tags", value: strings.Join(in.Tags, ", "), placeholder: "comma separated"},
			field{label: "Description", value: in.Description},
			field{label: "Cover URL", value: in.CoverURL},
			field{label: "Cover file", placeholder: "path to an image to upload"},
			field{label: "ISBN", placeholder: "ctrl+f to fill from the catalog"},
		),
	}
}

func (f *bookForm) input() (models.BookInput, error) {
	in := f.keep
	in.Title = f.form.value(bfTitle)
	in.Author = f.form.value(bfAuthor)
	in.Genre = f.form.value(bfGenre)
	in.Year = models.Year(f.form.value(bfYear))
	in.Description = f.form.value(bfDescription)
	in.CoverURL = f.form.value(bfCover)
	in.Tags = splitTags(f.form.value(bfTags))

	status, err := models.ParseStatus(f.form.value(bfStatus))
	if err != nil {
		return in, err
	}
	in.Status = status
	return in, in.Validate()
}

func splitTags(s string) []string {
	tags := []string{}
	for _, t := range strings.Split(s, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

// update returns done=true once the form should close.
func (f *bookForm) update(msg tea.Msg) (tea.Cmd, bool) {
	switch msg := msg.(type) {
	case isbnMsg:
		f.busy = false
		if msg.err != nil {
			return failed("ISBN lookup failed", msg.err), false
		}
		f.keep.GoogleID = msg.in.GoogleID
		f.form.set(bfTitle, msg.in.Title)
		f.form.set(bfAuthor, msg.in.Author)
		f.form.set(bfGenre, msg.in.Genre)
		f.form.set(bfYear, string(msg.in.Year))
		f.form.set(bfDescription, msg.in.Description)
		f.form.set(bfCover, msg.in.CoverURL)
		return succeeded("Details filled from the catalog"), false
	case savedMsg:
		f.busy = false
		if msg.err != nil {
			return failed("Saving book failed", msg.err), false
		}
		if f.editID != "" {
			return succeeded("Book updated"), true
		}
		return succeeded(fmt.Sprintf("Added %q to your library", msg.book.Title)), true
	case tea.KeyMsg:
		switch {
		case msg.String() == "esc":
			return nil, true
		case key.Matches(msg, f.b.keys.isbn):
			return f.lookup(), false
		case msg.String() == "enter":
			return f.submit(), false
		}
	}
	return f.form.update(msg), false
}

func (f *bookForm) lookup() tea.Cmd {
	isbn := f.form.value(bfISBN)
	if isbn == "" || f.busy {
		return nil
	}
	in, _ := f.input()
	f.busy = true
	return f.b.scope.do(func() tea.Msg {
		err := f.b.lib.FillFromISBN(f.b.ctx, isbn, &in)
		return isbnMsg{in: in, err: err}
	})
}

func (f *bookForm) submit() tea.Cmd {
	if f.busy {
		return nil
	}
	in, err := f.input()
	if err != nil {
		return failed("Invalid book", err)
	}
	coverFile := f.form.value(bfCoverFile)

	f.busy = true
	editID := f.editID
	b := f.b
	return b.scope.do(func() tea.Msg {
		book, err := saveBook(b.ctx, b, editID, in, coverFile)
		return savedMsg{book: book, err: err}
	})
}

// saveBook uploads the cover file, if any, then creates or updates the book.
func saveBook(ctx context.Context, b base, editID string, in models.BookInput, coverFile string) (*models.Book, error) {
	if coverFile != "" {
		fh, err := os.Open(coverFile)
		if err != nil {
			return nil, fmt.Errorf("failed to open cover: %w", err)
		}
		defer fh.Close()

		url, err := b.lib.UploadCover(ctx, coverFile, fh)
		if err != nil {
			return nil, err
		}
		in.CoverURL = url
	}

	if editID != "" {
		return b.lib.UpdateBook(ctx, editID, in)
	}
	book, err := b.lib.AddBook(ctx, in)
	if err == nil {
		if err := b.cache.FetchLibraryIDs(ctx); err != nil {
			b.logger.Warn("library ids refresh failed", "error", err)
		}
	}
	return book, err
}

func (f *bookForm) view() string {
	t := "Add a book"
	if f.editID != "" {
		t = "Edit book"
	}
	out := heading(t) + f.form.view()
	if f.busy {
		out += "\n" + loadingLine("book")
	}
	return out
}

func (f *bookForm) help() []key.Binding {
	return []key.Binding{
		f.b.keys.tab,
		f.b.keys.isbn,
		key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "save")),
		key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
	}
}
