package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path/filepath"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/shelf/internal/models"
	"github.com/desertthunder/shelf/internal/shared"
)

// LibraryService implements [Library] on top of an [APIService].
type LibraryService struct {
	api    *APIService
	logger *log.Logger
}

// NewLibraryService creates a LibraryService. A nil logger falls back to the default logger.
func NewLibraryService(api *APIService, logger *log.Logger) *LibraryService {
	if logger == nil {
		logger = log.Default()
	}
	return &LibraryService{api: api, logger: logger}
}

// API returns the underlying raw client.
func (s *LibraryService) API() *APIService { return s.api }

// doJSON sends v (if non-nil) as JSON and decodes a 2xx response into out (if non-nil).
func (s *LibraryService) doJSON(ctx context.Context, method, path string, v, out any) error {
	var body []byte
	if v != nil {
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		body = data
	}

	var (
		resp *APIResponse
		err  error
	)
	switch method {
	case http.MethodGet:
		resp, err = s.api.Get(ctx, path)
	case http.MethodPost:
		if body == nil {
			body = []byte("{}")
		}
		resp, err = s.api.Post(ctx, path, body)
	case http.MethodPut:
		resp, err = s.api.Put(ctx, path, body)
	case http.MethodDelete:
		resp, err = s.api.Delete(ctx, path, body)
	default:
		return fmt.Errorf("%w: method %s", shared.ErrInvalidArgument, method)
	}
	if err != nil {
		return err
	}

	s.logger.Debug("api response", "method", method, "path", path, "status", resp.StatusCode, "request_id", resp.RequestID)

	if err := resp.Err(); err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	return resp.Decode(out)
}

// Login exchanges credentials for a token and role.
func (s *LibraryService) Login(ctx context.Context, creds models.Credentials) (*models.AuthResult, error) {
	var res models.AuthResult
	if err := s.doJSON(ctx, http.MethodPost, "/auth/login", creds, &res); err != nil {
		return nil, fmt.Errorf("%w: %w", shared.ErrAuthFailed, err)
	}
	if res.Token == "" {
		return nil, fmt.Errorf("%w: no token in response", shared.ErrAuthFailed)
	}
	return &res, nil
}

// Signup registers a new account.
func (s *LibraryService) Signup(ctx context.Context, reg models.Registration) error {
	return s.doJSON(ctx, http.MethodPost, "/auth/signup", reg, nil)
}

// Profile returns the current user's profile.
func (s *LibraryService) Profile(ctx context.Context) (*models.User, error) {
	var u models.User
	if err := s.doJSON(ctx, http.MethodGet, "/users/profile", nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// UpdateProfile saves profile changes and returns the updated user.
func (s *LibraryService) UpdateProfile(ctx context.Context, update models.ProfileUpdate) (*models.User, error) {
	var u models.User
	if err := s.doJSON(ctx, http.MethodPut, "/users/profile", update, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// Books returns the whole library.
func (s *LibraryService) Books(ctx context.Context) ([]models.Book, error) {
	var books []models.Book
	if err := s.doJSON(ctx, http.MethodGet, "/books", nil, &books); err != nil {
		return nil, err
	}
	return books, nil
}

// FilterBooks returns one page of the library matching req.
func (s *LibraryService) FilterBooks(ctx context.Context, req models.FilterRequest) (*models.FilterResult, error) {
	q := url.Values{}
	if req.Page > 0 {
		q.Set("page", strconv.Itoa(req.Page))
	}
	if req.Limit > 0 {
		q.Set("limit", strconv.Itoa(req.Limit))
	}
	if req.Tags == nil {
		req.Tags = []string{}
	}

	path := "/books/filter"
	if enc := q.Encode(); enc != "" {
		path += "?" + enc
	}

	var res models.FilterResult
	if err := s.doJSON(ctx, http.MethodPost, path, req, &res); err != nil {
		return nil, err
	}
	if res.Books == nil {
		res.Books = []models.Book{}
	}
	return &res, nil
}

// Book returns a single book.
func (s *LibraryService) Book(ctx context.Context, id string) (*models.Book, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: book id", shared.ErrMissingArgument)
	}
	var b models.Book
	if err := s.doJSON(ctx, http.MethodGet, "/books/"+url.PathEscape(id), nil, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

// AddBook creates a book.
func (s *LibraryService) AddBook(ctx context.Context, in models.BookInput) (*models.Book, error) {
	if err := in.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}
	if in.Status == "" {
		in.Status = models.StatusUnread
	}
	if in.Tags == nil {
		in.Tags = []string{}
	}

	var b models.Book
	if err := s.doJSON(ctx, http.MethodPost, "/books/add", in, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

// UpdateBook saves changes to a book. The backend answers with either {"book": ...} or the bare book.
func (s *LibraryService) UpdateBook(ctx context.Context, id string, in models.BookInput) (*models.Book, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: book id", shared.ErrMissingArgument)
	}
	if err := in.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}
	return s.putBook(ctx, id, in)
}

// UpdateStatus changes only the reading status of a book.
func (s *LibraryService) UpdateStatus(ctx context.Context, id string, status models.Status) (*models.Book, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: book id", shared.ErrMissingArgument)
	}
	if _, err := models.ParseStatus(string(status)); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}
	return s.putBook(ctx, id, map[string]models.Status{"status": status})
}

func (s *LibraryService) putBook(ctx context.Context, id string, v any) (*models.Book, error) {
	var raw json.RawMessage
	if err := s.doJSON(ctx, http.MethodPut, "/books/"+url.PathEscape(id), v, &raw); err != nil {
		return nil, err
	}

	var wrapped struct {
		Book *models.Book `json:"book"`
	}
	if err := json.Unmarshal(raw, &wrapped); err == nil && wrapped.Book != nil {
		return wrapped.Book, nil
	}

	var b models.Book
	if err := json.Unmarshal(raw, &b); err != nil {
		return nil, fmt.Errorf("failed to decode book: %w", err)
	}
	return &b, nil
}

// DeleteBook removes a book.
func (s *LibraryService) DeleteBook(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("%w: book id", shared.ErrMissingArgument)
	}
	return s.doJSON(ctx, http.MethodDelete, "/books/"+url.PathEscape(id), nil, nil)
}

// BulkDelete removes every book in ids.
func (s *LibraryService) BulkDelete(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return fmt.Errorf("%w: no book ids", shared.ErrMissingArgument)
	}
	return s.doJSON(ctx, http.MethodDelete, "/books/bulk-delete", map[string][]string{"ids": ids}, nil)
}

// Export asks the backend for a CSV of the books matching req.
func (s *LibraryService) Export(ctx context.Context, req models.FilterRequest) ([]byte, error) {
	if req.Tags == nil {
		req.Tags = []string{}
	}
	data, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	resp, err := s.api.Post(ctx, "/books/export", data)
	if err != nil {
		return nil, err
	}
	if err := resp.Err(); err != nil {
		return nil, err
	}
	return resp.Body, nil
}

// ToggleWishlist adds or removes id from the wishlist and reports whether it is now present.
func (s *LibraryService) ToggleWishlist(ctx context.Context, id string) (bool, error) {
	if id == "" {
		return false, fmt.Errorf("%w: book id", shared.ErrMissingArgument)
	}

	var res struct {
		Wishlist models.Wishlist `json:"wishlist"`
	}
	if err := s.doJSON(ctx, http.MethodPost, "/users/wishlist/toggle/"+url.PathEscape(id), nil, &res); err != nil {
		return false, err
	}

	for _, b := range res.Wishlist {
		if b.ID == id || b.GoogleID == id {
			return true, nil
		}
	}
	return false, nil
}

// WishlistAdd adds every book in ids to the wishlist.
func (s *LibraryService) WishlistAdd(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return fmt.Errorf("%w: no book ids", shared.ErrMissingArgument)
	}
	return s.doJSON(ctx, http.MethodPost, "/users/wishlist/bulk", map[string][]string{"bookIds": ids}, nil)
}

// WishlistRemove removes every book in ids from the wishlist.
func (s *LibraryService) WishlistRemove(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return fmt.Errorf("%w: no book ids", shared.ErrMissingArgument)
	}
	return s.doJSON(ctx, http.MethodPost, "/users/wishlist/bulk-remove", map[string][]string{"bookIds": ids}, nil)
}

// Wishlist returns the populated wishlist.
func (s *LibraryService) Wishlist(ctx context.Context) ([]models.Book, error) {
	var w models.Wishlist
	if err := s.doJSON(ctx, http.MethodGet, "/users/wishlist/all", nil, &w); err != nil {
		return nil, err
	}
	return []models.Book(w), nil
}

// UploadCover uploads an image and returns its hosted URL.
func (s *LibraryService) UploadCover(ctx context.Context, filename string, r io.Reader) (string, error) {
	resp, err := s.api.Upload(ctx, "/books/upload-image", "cover", filepath.Base(filename), r)
	if err != nil {
		return "", err
	}
	if err := resp.Err(); err != nil {
		return "", err
	}

	var res struct {
		URL string `json:"url"`
	}
	if err := resp.Decode(&res); err != nil {
		return "", err
	}
	if res.URL == "" {
		return "", fmt.Errorf("%w: upload returned no url", shared.ErrAPIRequest)
	}
	return res.URL, nil
}

// Stats returns the analytics summary.
func (s *LibraryService) Stats(ctx context.Context) (*models.Stats, error) {
	var st models.Stats
	if err := s.doJSON(ctx, http.MethodGet, "/books/stats/details", nil, &st); err != nil {
		return nil, err
	}
	return &st, nil
}

// Users lists every account. Admin only.
func (s *LibraryService) Users(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := s.doJSON(ctx, http.MethodGet, "/users", nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// SetRole changes the role of the user identified by id.
func (s *LibraryService) SetRole(ctx context.Context, id string, role models.Role) error {
	if id == "" {
		return fmt.Errorf("%w: user id", shared.ErrMissingArgument)
	}
	if !role.Valid() {
		return fmt.Errorf("%w: unknown role %q", shared.ErrInvalidInput, role)
	}
	return s.doJSON(ctx, http.MethodPut, "/users/"+url.PathEscape(id)+"/role", map[string]models.Role{"role": role}, nil)
}
