// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func jsonFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:  "json",
			Usage: "Output raw JSON",
		},
		&cli.BoolFlag{
			Name:  "pretty",
			Usage: "Pretty-print JSON output",
		},
	}
}

// bookFields are the flags shared by books add and books update.
func bookFields() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "title", Usage: "Book title"},
		&cli.StringFlag{Name: "author", Usage: "Book author"},
		&cli.StringFlag{Name: "genre", Usage: "Genre"},
		&cli.StringFlag{Name: "year", Usage: "Publication year"},
		&cli.StringFlag{Name: "status", Usage: "unread, reading or completed"},
		&cli.StringSliceFlag{Name: "tag", Usage: "Tag (repeatable)"},
		&cli.StringFlag{Name: "description", Usage: "Description"},
		&cli.StringFlag{Name: "cover-url", Usage: "Cover image URL"},
		&cli.StringFlag{Name: "cover", Usage: "Path to a cover image to upload"},
		&cli.StringFlag{Name: "isbn", Usage: "Fill missing details from the catalog by ISBN"},
	}
}

// authCommand handles sign in, sign up and the stored session
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Manage the stored session",
		Commands: []*cli.Command{
			{
				Name:  "login",
				Usage: "Sign in and store the session token",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "email", Aliases: []string{"e"}, Usage: "Account email"},
					&cli.StringFlag{Name: "password", Usage: "Account password (prompted when omitted)", Sources: cli.EnvVars("SHELF_PASSWORD")},
				},
				Action: r.AuthLogin,
			},
			{
				Name:  "signup",
				Usage: "Create an account",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "username", Aliases: []string{"u"}, Usage: "Username"},
					&cli.StringFlag{Name: "email", Aliases: []string{"e"}, Usage: "Account email"},
					&cli.StringFlag{Name: "password", Usage: "Account password (prompted when omitted)", Sources: cli.EnvVars("SHELF_PASSWORD")},
					&cli.StringFlag{Name: "role", Usage: "Account role", Value: "student"},
				},
				Action: r.AuthSignup,
			},
			{
				Name:  "logout",
				Usage: "Clear the stored session",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "yes", Aliases: []string{"y"}, Usage: "Skip the confirmation"},
				},
				Action: r.AuthLogout,
			},
			{
				Name:   "status",
				Usage:  "Inspect the stored token",
				Flags:  jsonFlags(),
				Action: r.AuthStatus,
			},
		},
	}
}

// profileCommand handles the signed-in account
func profileCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "profile",
		Usage: "Show or update your profile",
		Commands: []*cli.Command{
			{
				Name:   "show",
				Usage:  "Show your profile",
				Flags:  jsonFlags(),
				Action: r.ProfileShow,
			},
			{
				Name:  "update",
				Usage: "Change username or email",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "username", Aliases: []string{"u"}, Usage: "New username"},
					&cli.StringFlag{Name: "email", Aliases: []string{"e"}, Usage: "New email"},
				},
				Action: r.ProfileUpdate,
			},
		},
	}
}

// booksCommand handles library operations
func booksCommand(r *Runner) *cli.Command {
	idArg := []cli.Argument{&cli.StringArg{Name: "id"}}

	return &cli.Command{
		Name:    "books",
		Aliases: []string{"b"},
		Usage:   "Library operations",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List books with the library filters",
				Flags: append([]cli.Flag{
					&cli.StringFlag{Name: "search", Aliases: []string{"q"}, Usage: "Search title or author"},
					&cli.StringFlag{Name: "genre", Usage: "Genre filter", Value: "all"},
					&cli.StringFlag{Name: "status", Usage: "Status filter", Value: "all"},
					&cli.StringFlag{Name: "sort", Usage: "created_desc or title_asc", Value: "created_desc"},
					&cli.StringSliceFlag{Name: "tag", Usage: "Tag filter (repeatable)"},
					&cli.IntFlag{Name: "page", Usage: "Page number", Value: 1},
					&cli.IntFlag{Name: "limit", Usage: "Page size", Value: r.config.Listing.PageSize},
				}, jsonFlags()...),
				Action: r.BooksList,
			},
			{
				Name:      "get",
				Usage:     "Show one book",
				Arguments: idArg,
				Flags:     jsonFlags(),
				Action:    r.BooksGet,
			},
			{
				Name:   "add",
				Usage:  "Add a book",
				Flags:  append(bookFields(), jsonFlags()...),
				Action: r.BooksAdd,
			},
			{
				Name:      "update",
				Usage:     "Edit a book; omitted fields keep their value",
				Arguments: idArg,
				Flags:     append(bookFields(), jsonFlags()...),
				Action:    r.BooksUpdate,
			},
			{
				Name:  "status",
				Usage: "Change a book's reading status",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
					&cli.StringArg{Name: "status"},
				},
				Action: r.BooksStatus,
			},
			{
				Name:      "delete",
				Usage:     "Delete a book",
				Arguments: idArg,
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "yes", Aliases: []string{"y"}, Usage: "Skip the confirmation"},
				},
				Action: r.BooksDelete,
			},
			{
				Name:      "bulk-delete",
				Usage:     "Delete several books",
				Arguments: []cli.Argument{&cli.StringArgs{Name: "ids", Min: 1, Max: -1}},
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "yes", Aliases: []string{"y"}, Usage: "Skip the confirmation"},
				},
				Action: r.BooksBulkDelete,
			},
			{
				Name:  "export",
				Usage: "Export the library",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Usage: "server, csv, md or txt", Value: "server"},
					&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "Output directory, base name or file"},
					&cli.StringFlag{Name: "search", Aliases: []string{"q"}, Usage: "Search filter (server format)"},
					&cli.StringFlag{Name: "genre", Usage: "Genre filter (server format)", Value: "all"},
					&cli.StringFlag{Name: "status", Usage: "Status filter (server format)", Value: "all"},
					&cli.StringSliceFlag{Name: "tag", Usage: "Tag filter (server format, repeatable)"},
					&cli.BoolFlag{Name: "covers", Usage: "Download cover images (md format)"},
				},
				Action: r.BooksExport,
			},
		},
	}
}

// wishlistCommand handles the wishlist
func wishlistCommand(r *Runner) *cli.Command {
	idsArg := []cli.Argument{&cli.StringArgs{Name: "ids", Min: 1, Max: -1}}

	return &cli.Command{
		Name:    "wishlist",
		Aliases: []string{"w"},
		Usage:   "Wishlist operations",
		Commands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "List wishlist books",
				Flags:  append([]cli.Flag{&cli.StringFlag{Name: "search", Aliases: []string{"q"}, Usage: "Filter by title or author"}}, jsonFlags()...),
				Action: r.WishlistList,
			},
			{
				Name:      "toggle",
				Usage:     "Add a book to the wishlist, or remove it if present",
				Arguments: []cli.Argument{&cli.StringArg{Name: "id"}},
				Action:    r.WishlistToggle,
			},
			{
				Name:      "add",
				Usage:     "Add books to the wishlist",
				Arguments: idsArg,
				Action:    r.WishlistAdd,
			},
			{
				Name:      "remove",
				Usage:     "Remove books from the wishlist",
				Arguments: idsArg,
				Action:    r.WishlistRemove,
			},
		},
	}
}

// exploreCommand handles catalog discovery
func exploreCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "explore",
		Usage: "Discover books",
		Commands: []*cli.Command{
			{
				Name:      "search",
				Usage:     "Browse best sellers, community books or new releases",
				Arguments: []cli.Argument{&cli.StringArg{Name: "query"}},
				Flags: append([]cli.Flag{
					&cli.StringFlag{Name: "tab", Usage: "best-sellers, community or new-releases", Value: "best-sellers"},
					&cli.StringFlag{Name: "genre", Usage: "Genre", Value: "All"},
					&cli.IntFlag{Name: "page", Usage: "Page, from 0", Value: 0},
					&cli.BoolFlag{Name: "add", Usage: "Add the first result to your library"},
				}, jsonFlags()...),
				Action: r.ExploreSearch,
			},
			{
				Name:      "isbn",
				Usage:     "Look up a book by ISBN",
				Arguments: []cli.Argument{&cli.StringArg{Name: "isbn"}},
				Flags: append([]cli.Flag{
					&cli.BoolFlag{Name: "add", Usage: "Add the result to your library"},
				}, jsonFlags()...),
				Action: r.ExploreISBN,
			},
			{
				Name:      "open",
				Usage:     "Open a catalog volume in the browser",
				Arguments: []cli.Argument{&cli.StringArg{Name: "id"}},
				Action:    r.ExploreOpen,
			},
		},
	}
}

// uploadCommand uploads a cover image
func uploadCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "upload",
		Usage:     "Upload a cover image and print its URL",
		Arguments: []cli.Argument{&cli.StringArg{Name: "file"}},
		Action:    r.Upload,
	}
}

// statsCommand prints reading analytics
func statsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "stats",
		Usage:  "Show reading analytics",
		Flags:  jsonFlags(),
		Action: r.Stats,
	}
}

// usersCommand handles the management console
func usersCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "users",
		Usage: "Account management (admin)",
		Commands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "List accounts",
				Flags:  jsonFlags(),
				Action: r.UsersList,
			},
			{
				Name:  "role",
				Usage: "Change an account's role",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
					&cli.StringArg{Name: "role"},
				},
				Action: r.UsersRole,
			},
		},
	}
}

// tuiCommand launches the interactive UI
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "tui",
		Usage: "Launch the interactive terminal UI",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "url",
				Usage: "Start location, e.g. \"/MyBooks?status=reading\"",
				Value: "/",
			},
		},
		Action: r.TUI,
	}
}

func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Initialize configuration and the local database",
		Commands: []*cli.Command{
			{
				Name:  "database",
				Usage: "Create the session database and run migrations",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "Path to configuration file",
						Value:   "config.toml",
					},
					&cli.BoolFlag{
						Name:  "rollback",
						Usage: "Roll back the most recent migration instead",
					},
				},
				Action: r.SetupDatabase,
			},
		},
	}
}
