package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/shelf/internal/models"
)

var (
	_ list.Item = bookItem{}
	_ list.Item = userItem{}
)

// bookItem wraps [models.Book] to implement [list.Item].
type bookItem struct {
	book     models.Book
	selected bool
}

func (i bookItem) FilterValue() string { return i.book.Title + " " + i.book.Author }
func (i bookItem) Title() string       { return check(i.selected) + " " + i.book.Title }
func (i bookItem) Description() string {
	desc := i.book.Author
	if i.book.Genre != "" {
		desc = fmt.Sprintf("%s • %s", desc, i.book.Genre)
	}
	if i.book.Year != "" {
		desc = fmt.Sprintf("%s • %s", desc, i.book.Year)
	}
	return desc
}

// userItem wraps [models.User] to implement [list.Item].
type userItem struct {
	user models.User
}

func (i userItem) FilterValue() string { return i.user.Username + " " + i.user.Email }
func (i userItem) Title() string       { return i.user.Username }
func (i userItem) Description() string {
	return fmt.Sprintf("%s • %s", i.user.Email, i.user.Role)
}
