package services

import (
	"context"
	"io"

	"github.com/desertthunder/shelf/internal/models"
)

// Library is the set of backend operations the CLI and TUI depend on.
type Library interface {
	Login(ctx context.Context, creds models.Credentials) (*models.AuthResult, error)
	Signup(ctx context.Context, reg models.Registration) error

	Profile(ctx context.Context) (*models.User, error)
	UpdateProfile(ctx context.Context, update models.ProfileUpdate) (*models.User, error)

	Books(ctx context.Context) ([]models.Book, error)
	FilterBooks(ctx context.Context, req models.FilterRequest) (*models.FilterResult, error)
	Book(ctx context.Context, id string) (*models.Book, error)
	AddBook(ctx context.Context, in models.BookInput) (*models.Book, error)
	UpdateBook(ctx context.Context, id string, in models.BookInput) (*models.Book, error)
	UpdateStatus(ctx context.Context, id string, status models.Status) (*models.Book, error)
	DeleteBook(ctx context.Context, id string) error
	BulkDelete(ctx context.Context, ids []string) error
	Export(ctx context.Context, req models.FilterRequest) ([]byte, error)
	UploadCover(ctx context.Context, filename string, r io.Reader) (string, error)

	// ToggleWishlist reports whether the book is in the wishlist after the call.
	ToggleWishlist(ctx context.Context, id string) (bool, error)
	WishlistAdd(ctx context.Context, ids []string) error
	WishlistRemove(ctx context.Context, ids []string) error
	Wishlist(ctx context.Context) ([]models.Book, error)

	Explore(ctx context.Context, q ExploreQuery) (*models.ExploreResult, error)
	SearchCatalog(ctx context.Context, q string, startIndex int) ([]models.Volume, error)
	FillFromISBN(ctx context.Context, isbn string, in *models.BookInput) error

	Stats(ctx context.Context) (*models.Stats, error)
	Users(ctx context.Context) ([]models.User, error)
	SetRole(ctx context.Context, id string, role models.Role) error
}

var _ Library = (*LibraryService)(nil)
