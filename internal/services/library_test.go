package services

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/desertthunder/shelf/internal/models"
	"github.com/desertthunder/shelf/internal/shared"
)

// route is a canned response for one method and path.
type route struct {
	status int
	body   string
	check  func(t *testing.T, r *http.Request, body []byte)
}

func newLibrary(t *testing.T, routes map[string]route) *LibraryService {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Method + " " + r.URL.Path
		rt, ok := routes[key]
		if !ok {
			t.Errorf("unexpected request %s", key)
			w.WriteHeader(http.StatusNotFound)
			return
		}
		body, _ := io.ReadAll(r.Body)
		if rt.check != nil {
			rt.check(t, r, body)
		}
		if rt.status == 0 {
			rt.status = http.StatusOK
		}
		w.WriteHeader(rt.status)
		w.Write([]byte(rt.body))
	}))
	t.Cleanup(server.Close)
	return NewLibraryService(NewAPIService(server.URL, server.Client()), nil)
}

func decodeBody(t *testing.T, body []byte) map[string]any {
	t.Helper()
	var m map[string]any
	if err := json.Unmarshal(body, &m); err != nil {
		t.Fatalf("request body is not JSON: %v (%s)", err, body)
	}
	return m
}

func TestLibraryAuth(t *testing.T) {
	t.Run("Login Returns Token And Role", func(t *testing.T) {
		lib := newLibrary(t, map[string]route{
			"POST /auth/login": {body: `{"token":"t.o.k","role":"admin"}`, check: func(t *testing.T, r *http.Request, body []byte) {
				m := decodeBody(t, body)
				if m["email"] != "a@b.c" || m["password"] != "pw" {
					t.Errorf("unexpected credentials %v", m)
				}
			}},
		})

		res, err := lib.Login(context.Background(), models.Credentials{Email: "a@b.c", Password: "pw"})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if res.Token != "t.o.k" || res.Role != models.RoleAdmin {
			t.Errorf("unexpected result %+v", res)
		}
	})

	t.Run("Login Without Token Fails", func(t *testing.T) {
		lib := newLibrary(t, map[string]route{"POST /auth/login": {body: `{"role":"student"}`}})

		_, err := lib.Login(context.Background(), models.Credentials{})
		if !errors.Is(err, shared.ErrAuthFailed) {
			t.Errorf("expected ErrAuthFailed, got %v", err)
		}
	})

	t.Run("Login Rejected", func(t *testing.T) {
		lib := newLibrary(t, map[string]route{
			"POST /auth/login": {status: http.StatusUnauthorized, body: `{"message":"Invalid credentials"}`},
		})

		_, err := lib.Login(context.Background(), models.Credentials{})
		if !errors.Is(err, shared.ErrAuthFailed) || !strings.Contains(err.Error(), "Invalid credentials") {
			t.Errorf("expected auth failure with server message, got %v", err)
		}
	})

	t.Run("Signup", func(t *testing.T) {
		lib := newLibrary(t, map[string]route{
			"POST /auth/signup": {status: http.StatusCreated, body: `{}`, check: func(t *testing.T, r *http.Request, body []byte) {
				if decodeBody(t, body)["role"] != "student" {
					t.Errorf("expected student role, got %s", body)
				}
			}},
		})

		err := lib.Signup(context.Background(), models.Registration{Username: "u", Email: "e", Password: "p", Role: models.RoleStudent})
		if err != nil {
			t.Errorf("expected no error, got %v", err)
		}
	})
}

func TestLibraryBooks(t *testing.T) {
	t.Run("FilterBooks Sends Body And Paging", func(t *testing.T) {
		lib := newLibrary(t, map[string]route{
			"POST /books/filter": {
				body: `{"books":[{"_id":"1","title":"Dune","author":"Herbert","status":"reading","year":1965}],"totalPages":3,"overallTotal":30,"filteredTotal":25,"stats":{"unread":10,"reading":5,"completed":10}}`,
				check: func(t *testing.T, r *http.Request, body []byte) {
					if r.URL.Query().Get("page") != "2" || r.URL.Query().Get("limit") != "12" {
						t.Errorf("unexpected query %s", r.URL.RawQuery)
					}
					m := decodeBody(t, body)
					if m["search"] != "dune" || m["genre"] != "all" {
						t.Errorf("unexpected body %v", m)
					}
					if tags, ok := m["tags"].([]any); !ok || len(tags) != 0 {
						t.Errorf("expected empty tags array, got %v", m["tags"])
					}
					if _, ok := m["page"]; ok {
						t.Error("page must not be in the body")
					}
				},
			},
		})

		res, err := lib.FilterBooks(context.Background(), models.FilterRequest{Search: "dune", Genre: "all", Status: "all", Page: 2, Limit: 12})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(res.Books) != 1 || res.Books[0].Year != "1965" {
			t.Errorf("unexpected books %+v", res.Books)
		}
		if res.TotalPages != 3 || res.FilteredTotal != 25 || res.Stats.Reading != 5 {
			t.Errorf("unexpected totals %+v", res)
		}
	})

	t.Run("FilterBooks Null Books", func(t *testing.T) {
		lib := newLibrary(t, map[string]route{"POST /books/filter": {body: `{"books":null}`}})

		res, err := lib.FilterBooks(context.Background(), models.FilterRequest{})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if res.Books == nil {
			t.Error("expected non-nil books")
		}
	})

	t.Run("AddBook Validates And Defaults", func(t *testing.T) {
		lib := newLibrary(t, map[string]route{
			"POST /books/add": {status: http.StatusCreated, body: `{"_id":"9","title":"Dune","author":"Herbert","status":"unread"}`,
				check: func(t *testing.T, r *http.Request, body []byte) {
					if decodeBody(t, body)["status"] != "unread" {
						t.Errorf("expected default status, got %s", body)
					}
				}},
		})

		if _, err := lib.AddBook(context.Background(), models.BookInput{Title: "Dune"}); !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput for missing author, got %v", err)
		}

		b, err := lib.AddBook(context.Background(), models.BookInput{Title: "Dune", Author: "Herbert"})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if b.ID != "9" {
			t.Errorf("unexpected book %+v", b)
		}
	})

	t.Run("UpdateBook Accepts Wrapped And Bare Responses", func(t *testing.T) {
		for name, body := range map[string]string{
			"wrapped": `{"book":{"_id":"1","title":"New","author":"A","status":"reading"}}`,
			"bare":    `{"_id":"1","title":"New","author":"A","status":"reading"}`,
		} {
			t.Run(name, func(t *testing.T) {
				lib := newLibrary(t, map[string]route{"PUT /books/1": {body: body}})

				b, err := lib.UpdateBook(context.Background(), "1", models.BookInput{Title: "New", Author: "A"})
				if err != nil {
					t.Fatalf("expected no error, got %v", err)
				}
				if b.Title != "New" || b.Status != models.StatusReading {
					t.Errorf("unexpected book %+v", b)
				}
			})
		}
	})

	t.Run("UpdateStatus", func(t *testing.T) {
		lib := newLibrary(t, map[string]route{
			"PUT /books/1": {body: `{"book":{"_id":"1","status":"completed"}}`, check: func(t *testing.T, r *http.Request, body []byte) {
				m := decodeBody(t, body)
				if len(m) != 1 || m["status"] != "completed" {
					t.Errorf("expected status-only body, got %v", m)
				}
			}},
		})

		if _, err := lib.UpdateStatus(context.Background(), "1", "lost"); !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
		b, err := lib.UpdateStatus(context.Background(), "1", models.StatusCompleted)
		if err != nil || b.Status != models.StatusCompleted {
			t.Errorf("unexpected result %+v, %v", b, err)
		}
	})

	t.Run("Book Not Found", func(t *testing.T) {
		lib := newLibrary(t, map[string]route{"GET /books/missing": {status: http.StatusNotFound, body: `{"message":"Book not found"}`}})

		_, err := lib.Book(context.Background(), "missing")
		if !errors.Is(err, shared.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("Delete And BulkDelete", func(t *testing.T) {
		lib := newLibrary(t, map[string]route{
			"DELETE /books/1": {body: `{}`},
			"DELETE /books/bulk-delete": {body: `{}`, check: func(t *testing.T, r *http.Request, body []byte) {
				if string(body) != `{"ids":["1","2"]}` {
					t.Errorf("unexpected body %s", body)
				}
			}},
		})

		if err := lib.DeleteBook(context.Background(), "1"); err != nil {
			t.Errorf("expected no error, got %v", err)
		}
		if err := lib.BulkDelete(context.Background(), []string{"1", "2"}); err != nil {
			t.Errorf("expected no error, got %v", err)
		}
		if err := lib.BulkDelete(context.Background(), nil); !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
	})

	t.Run("Export Returns Raw Bytes", func(t *testing.T) {
		csv := "Title,Author\nDune,Herbert\n"
		lib := newLibrary(t, map[string]route{"POST /books/export": {body: csv}})

		data, err := lib.Export(context.Background(), models.FilterRequest{Genre: "all"})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if string(data) != csv {
			t.Errorf("unexpected export %q", data)
		}
	})

	t.Run("UploadCover", func(t *testing.T) {
		lib := newLibrary(t, map[string]route{"POST /books/upload-image": {body: `{"url":"https://cdn/x.png"}`}})

		u, err := lib.UploadCover(context.Background(), "/tmp/covers/x.png", strings.NewReader("img"))
		if err != nil || u != "https://cdn/x.png" {
			t.Errorf("unexpected result %q, %v", u, err)
		}
	})
}

func TestLibraryWishlist(t *testing.T) {
	t.Run("Toggle Reports Membership", func(t *testing.T) {
		tests := []struct {
			name string
			body string
			want bool
		}{
			{"Added As Id", `{"wishlist":["b1","b2"]}`, true},
			{"Added As Object", `{"wishlist":[{"_id":"b1","title":"Dune"}]}`, true},
			{"Removed", `{"wishlist":["b2",null]}`, false},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				lib := newLibrary(t, map[string]route{"POST /users/wishlist/toggle/b1": {body: tt.body}})

				added, err := lib.ToggleWishlist(context.Background(), "b1")
				if err != nil {
					t.Fatalf("expected no error, got %v", err)
				}
				if added != tt.want {
					t.Errorf("expected %v, got %v", tt.want, added)
				}
			})
		}
	})

	t.Run("Bulk Add And Remove", func(t *testing.T) {
		check := func(t *testing.T, r *http.Request, body []byte) {
			if string(body) != `{"bookIds":["a","b"]}` {
				t.Errorf("unexpected body %s", body)
			}
		}
		lib := newLibrary(t, map[string]route{
			"POST /users/wishlist/bulk":        {body: `{}`, check: check},
			"POST /users/wishlist/bulk-remove": {body: `{}`, check: check},
		})

		if err := lib.WishlistAdd(context.Background(), []string{"a", "b"}); err != nil {
			t.Errorf("expected no error, got %v", err)
		}
		if err := lib.WishlistRemove(context.Background(), []string{"a", "b"}); err != nil {
			t.Errorf("expected no error, got %v", err)
		}
	})

	t.Run("List Drops Nulls", func(t *testing.T) {
		lib := newLibrary(t, map[string]route{
			"GET /users/wishlist/all": {body: `[{"_id":"1","title":"Dune","googleId":"g1"},null]`},
		})

		books, err := lib.Wishlist(context.Background())
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(books) != 1 || books[0].GoogleID != "g1" {
			t.Errorf("unexpected wishlist %+v", books)
		}
	})
}

func TestLibraryAccounts(t *testing.T) {
	t.Run("Profile Accepts Either Id Key", func(t *testing.T) {
		lib := newLibrary(t, map[string]route{
			"GET /users/profile": {body: `{"id":"u1","username":"reader","role":"student","wishlist":[{"googleId":"g1"}]}`},
		})

		u, err := lib.Profile(context.Background())
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if u.ID != "u1" || len(u.WishlistIDs()) != 1 {
			t.Errorf("unexpected user %+v", u)
		}
	})

	t.Run("Profile Unauthorized", func(t *testing.T) {
		lib := newLibrary(t, map[string]route{"GET /users/profile": {status: http.StatusUnauthorized, body: `{}`}})

		if _, err := lib.Profile(context.Background()); !errors.Is(err, shared.ErrNotAuthenticated) {
			t.Errorf("expected ErrNotAuthenticated, got %v", err)
		}
	})

	t.Run("UpdateProfile", func(t *testing.T) {
		lib := newLibrary(t, map[string]route{"PUT /users/profile": {body: `{"_id":"u1","username":"new"}`}})

		u, err := lib.UpdateProfile(context.Background(), models.ProfileUpdate{Username: "new"})
		if err != nil || u.Username != "new" {
			t.Errorf("unexpected result %+v, %v", u, err)
		}
	})

	t.Run("Stats", func(t *testing.T) {
		lib := newLibrary(t, map[string]route{
			"GET /books/stats/details": {body: `{"totalBooks":4,"completionRate":50,"topGenre":"Sci-Fi","genreStats":[{"genre":"Sci-Fi","count":3}],"monthlyStats":[{"month":"Jan","booksAdded":4}]}`},
		})

		st, err := lib.Stats(context.Background())
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if st.TotalBooks != 4 || st.TopGenre != "Sci-Fi" || len(st.MonthlyStats) != 1 {
			t.Errorf("unexpected stats %+v", st)
		}
	})

	t.Run("Users And SetRole", func(t *testing.T) {
		lib := newLibrary(t, map[string]route{
			"GET /users": {body: `[{"_id":"u1","role":"student"},{"_id":"u2","role":"admin"}]`},
			"PUT /users/u1/role": {body: `{}`, check: func(t *testing.T, r *http.Request, body []byte) {
				if string(body) != `{"role":"admin"}` {
					t.Errorf("unexpected body %s", body)
				}
			}},
		})

		users, err := lib.Users(context.Background())
		if err != nil || len(users) != 2 {
			t.Fatalf("unexpected users %+v, %v", users, err)
		}
		if err := lib.SetRole(context.Background(), "u1", models.RoleAdmin); err != nil {
			t.Errorf("expected no error, got %v", err)
		}
		if err := lib.SetRole(context.Background(), "u1", "owner"); !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
	})
}
