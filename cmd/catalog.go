package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/shelf/internal/models"
	"github.com/desertthunder/shelf/internal/services"
	"github.com/desertthunder/shelf/internal/shared"
	"github.com/urfave/cli/v3"
)

// WishlistList prints the wishlist, optionally filtered by a title or author substring.
func (r *Runner) WishlistList(ctx context.Context, cmd *cli.Command) error {
	if _, err := r.requireSession(); err != nil {
		return err
	}

	books, err := r.library.Wishlist(ctx)
	if err != nil {
		return err
	}
	if q := strings.ToLower(cmd.String("search")); q != "" {
		filtered := books[:0]
		for _, b := range books {
			if strings.Contains(strings.ToLower(b.Title), q) || strings.Contains(strings.ToLower(b.Author), q) {
				filtered = append(filtered, b)
			}
		}
		books = filtered
	}

	if cmd.Bool("json") {
		return r.writeJSON(books, cmd.Bool("pretty"))
	}
	if len(books) == 0 {
		return r.writePlain("Your wishlist is empty\n")
	}
	r.writePlainHeader(fmt.Sprintf("Wishlist: %d books", len(books)))
	r.printBooks(books)
	return nil
}

// WishlistToggle adds or removes one book and reports which happened.
func (r *Runner) WishlistToggle(ctx context.Context, cmd *cli.Command) error {
	if _, err := r.requireSession(); err != nil {
		return err
	}

	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: id", shared.ErrMissingArgument)
	}
	added, err := r.library.ToggleWishlist(ctx, id)
	if err != nil {
		return err
	}
	if added {
		return r.writePlain("✓ Added to wishlist\n")
	}
	return r.writePlain("✓ Removed from wishlist\n")
}

// WishlistAdd adds several books at once.
func (r *Runner) WishlistAdd(ctx context.Context, cmd *cli.Command) error {
	if _, err := r.requireSession(); err != nil {
		return err
	}

	ids := cmd.StringArgs("ids")
	if err := r.library.WishlistAdd(ctx, ids); err != nil {
		return err
	}
	return r.writePlain("✓ %d books added to wishlist\n", len(ids))
}

// WishlistRemove removes several books at once.
func (r *Runner) WishlistRemove(ctx context.Context, cmd *cli.Command) error {
	if _, err := r.requireSession(); err != nil {
		return err
	}

	ids := cmd.StringArgs("ids")
	if err := r.library.WishlistRemove(ctx, ids); err != nil {
		return err
	}
	return r.writePlain("✓ %d books removed\n", len(ids))
}

func parseTab(s string) (int, error) {
	switch strings.ToLower(strings.ReplaceAll(s, "_", "-")) {
	case "", "best-sellers", "bestsellers":
		return models.TabBestSellers, nil
	case "community":
		return models.TabCommunity, nil
	case "new-releases", "new":
		return models.TabNewReleases, nil
	}
	return 0, fmt.Errorf("%w: unknown tab %q", shared.ErrInvalidArgument, s)
}

// addVolume saves v as an unread book, skipping it when the catalog id is already in the library.
func (r *Runner) addVolume(ctx context.Context, v models.Volume) error {
	if err := r.cache.FetchLibraryIDs(ctx); err != nil {
		r.logger.Warn("could not check library", "error", err)
	}
	if r.cache.InLibrary(v.CatalogID()) {
		return r.writePlain("%q is already in your library\n", v.Title)
	}

	b, err := r.library.AddBook(ctx, v.BookInput())
	if err != nil {
		return err
	}
	return r.writePlain("✓ Added %q (%s)\n", b.Title, b.ID)
}

// ExploreSearch prints one page of a discovery tab.
func (r *Runner) ExploreSearch(ctx context.Context, cmd *cli.Command) error {
	if _, err := r.requireSession(); err != nil {
		return err
	}

	tab, err := parseTab(cmd.String("tab"))
	if err != nil {
		return err
	}

	res, err := r.library.Explore(ctx, services.ExploreQuery{
		Tab:      tab,
		Genre:    cmd.String("genre"),
		Query:    cmd.StringArg("query"),
		Page:     int(cmd.Int("page")),
		PageSize: r.config.Listing.ExplorePageSize,
	})
	if err != nil {
		return err
	}

	if cmd.Bool("add") {
		if len(res.Books) == 0 {
			return fmt.Errorf("%w: no results", shared.ErrBookNotFound)
		}
		return r.addVolume(ctx, res.Books[0])
	}

	if cmd.Bool("json") {
		return r.writeJSON(res, cmd.Bool("pretty"))
	}

	if err := r.cache.FetchLibraryIDs(ctx); err != nil {
		r.logger.Warn("could not check library", "error", err)
	}
	for i, v := range res.Books {
		mark := " "
		if r.cache.InLibrary(v.CatalogID()) {
			mark = "✓"
		}
		r.writePlain("%2d. %s %s - %s", i+1, mark, v.Title, v.Author)
		if v.Year != "" {
			r.writePlain(" (%s)", v.Year)
		}
		r.writePlain("  %s\n", v.CatalogID())
	}
	if res.HasMore {
		r.writePlainln("More results: --page %d", int(cmd.Int("page"))+1)
	}
	return nil
}

// ExploreISBN looks a book up by ISBN and optionally adds it.
func (r *Runner) ExploreISBN(ctx context.Context, cmd *cli.Command) error {
	if _, err := r.requireSession(); err != nil {
		return err
	}

	in := models.BookInput{Status: models.StatusUnread, Tags: []string{}}
	if err := r.library.FillFromISBN(ctx, cmd.StringArg("isbn"), &in); err != nil {
		return err
	}

	if cmd.Bool("add") {
		b, err := r.library.AddBook(ctx, in)
		if err != nil {
			return err
		}
		return r.writePlain("✓ Added %q (%s)\n", b.Title, b.ID)
	}
	if cmd.Bool("json") {
		return r.writeJSON(in, cmd.Bool("pretty"))
	}

	r.writePlainHeader(in.Title)
	r.writePlain("Author: %s\n", in.Author)
	if in.Year != "" {
		r.writePlain("Year:   %s\n", in.Year)
	}
	if in.Genre != "" {
		r.writePlain("Genre:  %s\n", in.Genre)
	}
	r.writePlain("ID:     %s\n", in.GoogleID)
	return nil
}

// ExploreOpen opens a volume's catalog page.
func (r *Runner) ExploreOpen(ctx context.Context, cmd *cli.Command) error {
	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: id", shared.ErrMissingArgument)
	}
	return shared.OpenBrowser(shared.CatalogURL(id))
}

// Stats prints the analytics summary.
func (r *Runner) Stats(ctx context.Context, cmd *cli.Command) error {
	if _, err := r.requireSession(); err != nil {
		return err
	}

	st, err := r.library.Stats(ctx)
	if err != nil {
		return err
	}
	if cmd.Bool("json") {
		return r.writeJSON(st, cmd.Bool("pretty"))
	}

	top := st.TopGenre
	if top == "" {
		top = "N/A"
	}
	r.writePlainHeader("Library Intelligence")
	r.writePlain("Completion rate: %.0f%%\n", st.CompletionRate)
	r.writePlain("Total books:     %d\n", st.TotalBooks)
	r.writePlain("Top genre:       %s\n", top)
	if len(st.GenreStats) > 0 {
		r.writePlainln("Genres")
		for _, g := range st.GenreStats {
			r.writePlain("  %-16s %d\n", g.Genre, g.Count)
		}
	}
	if len(st.MonthlyStats) > 0 {
		r.writePlainln("Books added per month")
		for _, m := range st.MonthlyStats {
			r.writePlain("  %-16s %d\n", m.Month, m.BooksAdded)
		}
	}
	return nil
}

// UsersList prints every account. Admin only.
func (r *Runner) UsersList(ctx context.Context, cmd *cli.Command) error {
	if _, err := r.requireRole(models.PermViewConsole); err != nil {
		return err
	}

	users, err := r.library.Users(ctx)
	if err != nil {
		return err
	}
	if cmd.Bool("json") {
		return r.writeJSON(users, cmd.Bool("pretty"))
	}
	for _, u := range users {
		r.writePlain("%-24s %-32s %-12s %s\n", u.Username, u.Email, u.Role, u.ID)
	}
	return nil
}

// UsersRole changes an account's role when the signed-in role may grant it.
func (r *Runner) UsersRole(ctx context.Context, cmd *cli.Command) error {
	claims, err := r.requireRole(models.PermManageUsers)
	if err != nil {
		return err
	}
	actor, err := r.session.Role()
	if err != nil {
		return err
	}

	id := cmd.StringArg("id")
	newRole, err := models.ParseRole(cmd.StringArg("role"))
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidArgument, err)
	}

	users, err := r.library.Users(ctx)
	if err != nil {
		return err
	}
	var target *models.User
	for i := range users {
		if users[i].ID == id {
			target = &users[i]
			break
		}
	}
	if target == nil {
		return fmt.Errorf("%w: user %s", shared.ErrNotFound, id)
	}

	if !actor.CanAssign(claims.Subject(), target.ID, target.Role, newRole) {
		return fmt.Errorf("%w: %s cannot change %s from %s to %s", shared.ErrForbidden, actor, target.Username, target.Role, newRole)
	}
	if err := r.library.SetRole(ctx, target.ID, newRole); err != nil {
		return err
	}
	return r.writePlain("✓ %s is now %s\n", target.Username, newRole)
}
