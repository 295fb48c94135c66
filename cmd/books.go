package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/desertthunder/shelf/internal/formatter"
	"github.com/desertthunder/shelf/internal/models"
	"github.com/desertthunder/shelf/internal/shared"
	"github.com/urfave/cli/v3"
)

func filterRequest(cmd *cli.Command) models.FilterRequest {
	tags := cmd.StringSlice("tag")
	if tags == nil {
		tags = []string{}
	}
	return models.FilterRequest{
		Search: cmd.String("search"),
		Genre:  cmd.String("genre"),
		Status: cmd.String("status"),
		Sort:   cmd.String("sort"),
		Tags:   tags,
		Page:   int(cmd.Int("page")),
		Limit:  int(cmd.Int("limit")),
	}
}

func (r *Runner) printBooks(books []models.Book) {
	for i, b := range books {
		r.writePlain("%2d. [%-9s] %s - %s", i+1, b.Status, b.Title, b.Author)
		if b.Genre != "" {
			r.writePlain(" (%s)", b.Genre)
		}
		r.writePlain("  %s\n", b.ID)
	}
}

// BooksList runs a library filter query and prints one page.
func (r *Runner) BooksList(ctx context.Context, cmd *cli.Command) error {
	if _, err := r.requireSession(); err != nil {
		return err
	}

	req := filterRequest(cmd)
	r.logger.Debug("filtering books", "search", req.Search, "genre", req.Genre, "status", req.Status, "page", req.Page)
	res, err := r.library.FilterBooks(ctx, req)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(res, cmd.Bool("pretty"))
	}

	r.writePlainHeader(fmt.Sprintf("Library: %d of %d books", res.FilteredTotal, res.OverallTotal))
	r.writePlain("unread %d • reading %d • completed %d\n\n", res.Stats.Unread, res.Stats.Reading, res.Stats.Completed)
	if len(res.Books) == 0 {
		return r.writePlain("No books match these filters.\n")
	}
	r.printBooks(res.Books)
	return r.writePlainln("Page %d of %d", req.Page, max(res.TotalPages, 1))
}

// BooksGet prints one book.
func (r *Runner) BooksGet(ctx context.Context, cmd *cli.Command) error {
	if _, err := r.requireSession(); err != nil {
		return err
	}

	b, err := r.library.Book(ctx, cmd.StringArg("id"))
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(b, cmd.Bool("pretty"))
	}
	r.printBook(b)
	return nil
}

func (r *Runner) printBook(b *models.Book) {
	r.writePlainHeader(b.Title)
	r.writePlain("Author: %s\n", b.Author)
	r.writePlain("Status: %s\n", b.Status)
	if b.Genre != "" {
		r.writePlain("Genre:  %s\n", b.Genre)
	}
	if b.Year != "" {
		r.writePlain("Year:   %s\n", b.Year)
	}
	if len(b.Tags) > 0 {
		r.writePlain("Tags:   %s\n", strings.Join(b.Tags, ", "))
	}
	if b.Description != "" {
		r.writePlainln("%s", b.Description)
	}
	r.writePlain("ID:     %s\n", b.ID)
}

// applyBookFlags overlays every book field flag that was set onto in.
func (r *Runner) applyBookFlags(ctx context.Context, cmd *cli.Command, in *models.BookInput) error {
	if isbn := cmd.String("isbn"); isbn != "" {
		r.logger.Info("looking up isbn", "isbn", isbn)
		if err := r.library.FillFromISBN(ctx, isbn, in); err != nil {
			return err
		}
	}

	for name, dst := range map[string]*string{
		"title":       &in.Title,
		"author":      &in.Author,
		"genre":       &in.Genre,
		"description": &in.Description,
		"cover-url":   &in.CoverURL,
	} {
		if cmd.IsSet(name) {
			*dst = cmd.String(name)
		}
	}
	if cmd.IsSet("year") {
		in.Year = models.Year(cmd.String("year"))
	}
	if cmd.IsSet("tag") {
		in.Tags = cmd.StringSlice("tag")
	}
	if cmd.IsSet("status") {
		st, err := models.ParseStatus(cmd.String("status"))
		if err != nil {
			return fmt.Errorf("%w: %v", shared.ErrInvalidArgument, err)
		}
		in.Status = st
	}

	if path := cmd.String("cover"); path != "" {
		url, err := r.uploadFile(ctx, path)
		if err != nil {
			return err
		}
		in.CoverURL = url
	}
	return nil
}

// BooksAdd creates a book from flags, optionally pre-filled by ISBN.
func (r *Runner) BooksAdd(ctx context.Context, cmd *cli.Command) error {
	if _, err := r.requireSession(); err != nil {
		return err
	}

	in := models.BookInput{Status: models.StatusUnread, Tags: []string{}}
	if err := r.applyBookFlags(ctx, cmd, &in); err != nil {
		return err
	}

	b, err := r.library.AddBook(ctx, in)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(b, cmd.Bool("pretty"))
	}
	return r.writePlain("✓ Added %q (%s)\n", b.Title, b.ID)
}

// BooksUpdate edits a book. Fields without a flag keep their stored value.
func (r *Runner) BooksUpdate(ctx context.Context, cmd *cli.Command) error {
	if _, err := r.requireSession(); err != nil {
		return err
	}

	id := cmd.StringArg("id")
	current, err := r.library.Book(ctx, id)
	if err != nil {
		return err
	}

	in := current.Input()
	if err := r.applyBookFlags(ctx, cmd, &in); err != nil {
		return err
	}

	b, err := r.library.UpdateBook(ctx, id, in)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(b, cmd.Bool("pretty"))
	}
	return r.writePlain("✓ Updated %q\n", b.Title)
}

// BooksStatus is the quick status change from the details view.
func (r *Runner) BooksStatus(ctx context.Context, cmd *cli.Command) error {
	if _, err := r.requireSession(); err != nil {
		return err
	}

	st, err := models.ParseStatus(cmd.StringArg("status"))
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidArgument, err)
	}

	b, err := r.library.UpdateStatus(ctx, cmd.StringArg("id"), st)
	if err != nil {
		return err
	}
	return r.writePlain("✓ Status: %s\n", b.Status)
}

// confirm asks a y/N question unless --yes was given.
func (r *Runner) confirm(cmd *cli.Command, question string) (bool, error) {
	if cmd.Bool("yes") {
		return true, nil
	}
	answer, err := r.prompt(question+" [y/N]", "")
	if err != nil {
		return false, err
	}
	answer = strings.ToLower(answer)
	return answer == "y" || answer == "yes", nil
}

// BooksDelete removes one book after confirmation.
func (r *Runner) BooksDelete(ctx context.Context, cmd *cli.Command) error {
	if _, err := r.requireSession(); err != nil {
		return err
	}

	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: id", shared.ErrMissingArgument)
	}
	ok, err := r.confirm(cmd, fmt.Sprintf("Permanently remove %s?", id))
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: delete", shared.ErrCancelled)
	}

	if err := r.library.DeleteBook(ctx, id); err != nil {
		return err
	}
	return r.writePlain("✓ Book deleted\n")
}

// BooksBulkDelete removes several books after confirmation.
func (r *Runner) BooksBulkDelete(ctx context.Context, cmd *cli.Command) error {
	if _, err := r.requireSession(); err != nil {
		return err
	}

	ids := cmd.StringArgs("ids")
	if len(ids) == 0 {
		return fmt.Errorf("%w: ids", shared.ErrMissingArgument)
	}
	ok, err := r.confirm(cmd, fmt.Sprintf("Delete %d books? This action cannot be undone!", len(ids)))
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: bulk delete", shared.ErrCancelled)
	}

	if err := r.library.BulkDelete(ctx, ids); err != nil {
		return err
	}
	return r.writePlain("✓ %d books deleted\n", len(ids))
}

// BooksExport writes the library in the requested format.
//
// "server" saves the backend's CSV for the filters. The other formats render the full library locally.
func (r *Runner) BooksExport(ctx context.Context, cmd *cli.Command) error {
	if _, err := r.requireSession(); err != nil {
		return err
	}

	format := strings.ToLower(cmd.String("format"))
	output := cmd.String("output")
	now := r.now()

	if format == "server" {
		req := filterRequest(cmd)
		req.Sort = "created_desc"
		data, err := r.library.Export(ctx, req)
		if err != nil {
			return err
		}
		path, err := formatter.WriteServerExport(data, output, now)
		if err != nil {
			return err
		}
		return r.writePlain("✓ Exported to %s\n", path)
	}

	books, err := r.library.Books(ctx)
	if err != nil {
		return err
	}
	export := &formatter.Export{Title: "Library", Books: books}

	switch format {
	case "csv":
		res, err := formatter.WriteCSVExport(export, output, now)
		if err != nil {
			return err
		}
		r.writePlain("✓ Exported %d books\n", len(books))
		r.writePlain("  %s\n  %s\n", res.BooksFile, res.MetadataFile)
	case "md", "markdown":
		res, err := formatter.WriteMarkdownExport(ctx, export, output, formatter.MarkdownOptions{
			Covers: cmd.Bool("covers"),
			Client: r.httpClient,
			Warn: func(id string, err error) {
				r.logger.Warn("cover download failed", "book", id, "error", err)
			},
		})
		if err != nil {
			return err
		}
		r.writePlain("✓ Exported %d books to %s (%d covers)\n", len(books), res.Directory, res.Covers)
	case "txt", "text":
		path, err := formatter.WriteTextExport(export, output)
		if err != nil {
			return err
		}
		r.writePlain("✓ Exported %d books to %s\n", len(books), path)
	default:
		return fmt.Errorf("%w: unknown format %q", shared.ErrInvalidArgument, format)
	}
	return nil
}

func (r *Runner) uploadFile(ctx context.Context, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("%w: %v", shared.ErrInvalidArgument, err)
	}
	defer f.Close()

	r.logger.Info("uploading cover", "file", filepath.Base(path))
	return r.library.UploadCover(ctx, path, f)
}

// Upload sends an image to the cover endpoint and prints the hosted URL.
func (r *Runner) Upload(ctx context.Context, cmd *cli.Command) error {
	if _, err := r.requireSession(); err != nil {
		return err
	}

	path := cmd.StringArg("file")
	if path == "" {
		return fmt.Errorf("%w: file", shared.ErrMissingArgument)
	}
	url, err := r.uploadFile(ctx, path)
	if err != nil {
		return err
	}
	return r.writePlain("%s\n", url)
}
