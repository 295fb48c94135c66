package models

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Status is the reading status of a [Book].
type Status string

const (
	StatusUnread    Status = "unread"
	StatusReading   Status = "reading"
	StatusCompleted Status = "completed"
)

// Statuses lists every valid [Status] in display order.
var Statuses = []Status{StatusUnread, StatusReading, StatusCompleted}

// ParseStatus validates s against the known statuses.
func ParseStatus(s string) (Status, error) {
	for _, st := range Statuses {
		if strings.EqualFold(s, string(st)) {
			return st, nil
		}
	}
	return "", fmt.Errorf("unknown status %q", s)
}

// Year is a publication year. The backend returns it as either a number or a string.
type Year string

// UnmarshalJSON accepts numbers, strings and null.
func (y *Year) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*y = ""
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*y = Year(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("invalid year %s: %w", data, err)
	}
	*y = Year(n.String())
	return nil
}

// Int returns the year as an integer, or 0 when it is empty or not numeric.
func (y Year) Int() int {
	n, err := strconv.Atoi(string(y))
	if err != nil {
		return 0
	}
	return n
}

// Book is a record in the user's library.
type Book struct {
	ID          string    `json:"_id"`
	Title       string    `json:"title"`
	Author      string    `json:"author"`
	Description string    `json:"description,omitempty"`
	CoverURL    string    `json:"coverUrl,omitempty"`
	Year        Year      `json:"year,omitempty"`
	Genre       string    `json:"genre,omitempty"`
	Status      Status    `json:"status"`
	Tags        []string  `json:"tags,omitempty"`
	GoogleID    string    `json:"googleId,omitempty"`
	Rating      float64   `json:"rating,omitempty"`
	Progress    int       `json:"progress,omitempty"`
	CreatedAt   time.Time `json:"createdAt,omitzero"`
}

// Identifiers returns the ids a book can be matched by: the external catalog id, when present, then the internal id.
func (b Book) Identifiers() []string {
	ids := make([]string, 0, 2)
	if b.GoogleID != "" {
		ids = append(ids, b.GoogleID)
	}
	if b.ID != "" {
		ids = append(ids, b.ID)
	}
	return ids
}

// Input returns the writable fields of b.
func (b Book) Input() BookInput {
	return BookInput{
		Title:       b.Title,
		Author:      b.Author,
		Description: b.Description,
		CoverURL:    b.CoverURL,
		Year:        b.Year,
		Genre:       b.Genre,
		Status:      b.Status,
		Tags:        b.Tags,
		GoogleID:    b.GoogleID,
	}
}

// BookInput is the payload for creating or updating a book.
type BookInput struct {
	Title       string   `json:"title"`
	Author      string   `json:"author"`
	Description string   `json:"description"`
	CoverURL    string   `json:"coverUrl"`
	Year        Year     `json:"year"`
	Genre       string   `json:"genre"`
	Status      Status   `json:"status"`
	Tags        []string `json:"tags"`
	GoogleID    string   `json:"googleId,omitempty"`
}

// Validate checks the fields the backend requires.
func (in BookInput) Validate() error {
	if strings.TrimSpace(in.Title) == "" {
		return fmt.Errorf("title is required")
	}
	if strings.TrimSpace(in.Author) == "" {
		return fmt.Errorf("author is required")
	}
	if in.Status != "" {
		if _, err := ParseStatus(string(in.Status)); err != nil {
			return err
		}
	}
	return nil
}

// User is the profile of an account.
type User struct {
	ID       string   `json:"_id"`
	Username string   `json:"username"`
	Email    string   `json:"email"`
	Role     Role     `json:"role"`
	Wishlist Wishlist `json:"wishlist,omitempty"`
}

// UnmarshalJSON accepts both "_id" and "id" since the backend uses either depending on the endpoint.
func (u *User) UnmarshalJSON(data []byte) error {
	type alias User
	aux := struct {
		*alias
		AltID string `json:"id"`
	}{alias: (*alias)(u)}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if u.ID == "" {
		u.ID = aux.AltID
	}
	return nil
}

// WishlistIDs returns the external catalog ids of wishlist entries, skipping entries without one.
func (u User) WishlistIDs() []string {
	ids := make([]string, 0, len(u.Wishlist))
	for _, b := range u.Wishlist {
		if b.GoogleID != "" {
			ids = append(ids, b.GoogleID)
		}
	}
	return ids
}

// Wishlist is the list of books referenced by a profile.
//
// Entries may arrive populated (objects), as bare ids, or as null; null entries are dropped.
type Wishlist []Book

// UnmarshalJSON decodes a mix of book objects, id strings and nulls.
func (w *Wishlist) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	out := make(Wishlist, 0, len(raw))
	for _, item := range raw {
		switch {
		case string(item) == "null":
			continue
		case len(item) > 0 && item[0] == '"':
			var id string
			if err := json.Unmarshal(item, &id); err != nil {
				return err
			}
			out = append(out, Book{ID: id})
		default:
			var b Book
			if err := json.Unmarshal(item, &b); err != nil {
				return err
			}
			out = append(out, b)
		}
	}
	*w = out
	return nil
}

// ProfileUpdate is the payload for updating the current profile.
type ProfileUpdate struct {
	Username string `json:"username,omitempty"`
	Email    string `json:"email,omitempty"`
	Role     Role   `json:"role,omitempty"`
}

// Credentials are used to log in.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Registration is the signup payload.
type Registration struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     Role   `json:"role"`
}

// AuthResult is returned by a successful login.
type AuthResult struct {
	Token string `json:"token"`
	Role  Role   `json:"role"`
}
