package formatter

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/shelf/internal/models"
	th "github.com/desertthunder/shelf/internal/testing"
)

var generatedAt = time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)

func sampleExport() *Export {
	return &Export{
		Title:       "My Library",
		Description: "Everything on the shelf",
		Books: []models.Book{
			{ID: "b1", Title: "Dune", Author: "Frank Herbert", Genre: "Sci-Fi", Year: "1965", Status: models.StatusReading, Tags: []string{"classic", "space"}, GoogleID: "g1"},
			{ID: "b2", Title: "Emma", Author: "Jane Austen", Year: "1815", Status: models.StatusCompleted},
			{ID: "b3", Title: "Piranesi, Again", Author: "Susanna Clarke", Status: models.StatusUnread},
		},
	}
}

func TestExporters(t *testing.T) {
	t.Run("ExportToCSV", func(t *testing.T) {
		data, err := ExportToCSV(sampleExport())
		if err != nil {
			t.Fatalf("ExportToCSV failed: %v", err)
		}

		output := string(data)
		if !strings.HasPrefix(output, "ID,Title,Author,Genre,Year,Status,Tags,GoogleID\n") {
			t.Errorf("CSV missing headers, got: %s", output)
		}
		if !strings.Contains(output, "b1,Dune,Frank Herbert,Sci-Fi,1965,reading,classic;space,g1") {
			t.Errorf("CSV missing first record, got: %s", output)
		}
		if !strings.Contains(output, `"Piranesi, Again"`) {
			t.Errorf("CSV should quote titles with commas, got: %s", output)
		}
	})

	t.Run("ExportToCSV Empty", func(t *testing.T) {
		data, err := ExportToCSV(&Export{})
		if err != nil {
			t.Fatalf("ExportToCSV failed: %v", err)
		}
		if strings.Count(string(data), "\n") != 1 {
			t.Errorf("expected header only, got %q", data)
		}
	})

	t.Run("ExportToMarkdown", func(t *testing.T) {
		data, err := ExportToMarkdown(sampleExport(), map[string]string{"b2": "covers/b2.jpg"})
		if err != nil {
			t.Fatalf("ExportToMarkdown failed: %v", err)
		}

		output := string(data)
		for _, want := range []string{
			"# My Library",
			"Everything on the shelf",
			"**Books**: 3",
			"## Reading",
			"1. **Dune** by Frank Herbert (1965) `classic` `space`",
			"## Completed",
			"![Emma](covers/b2.jpg)",
		} {
			if !strings.Contains(output, want) {
				t.Errorf("Markdown missing %q, got:\n%s", want, output)
			}
		}
		if strings.Index(output, "## Unread") > strings.Index(output, "## Reading") {
			t.Error("expected status sections in display order")
		}
	})

	t.Run("ExportToText", func(t *testing.T) {
		data, err := ExportToText(sampleExport())
		if err != nil {
			t.Fatalf("ExportToText failed: %v", err)
		}

		output := string(data)
		if !strings.Contains(output, "Books: 3") {
			t.Errorf("text missing count, got: %s", output)
		}
		if !strings.Contains(output, "2. Jane Austen - Emma [completed]") {
			t.Errorf("text missing entry, got: %s", output)
		}
	})

	t.Run("Summarize", func(t *testing.T) {
		s := sampleExport().Summarize(generatedAt)
		if s.Count != 3 || s.Statuses.Reading != 1 || s.Statuses.Completed != 1 || s.Statuses.Unread != 1 {
			t.Errorf("unexpected summary %+v", s)
		}
	})

	t.Run("ExportFilename", func(t *testing.T) {
		if got := ExportFilename(generatedAt); got != "Library_Export_2025-03-14.csv" {
			t.Errorf("unexpected filename %s", got)
		}
	})
}

func TestWriters(t *testing.T) {
	t.Run("WriteCSVExport", func(t *testing.T) {
		base := filepath.Join(t.TempDir(), "shelf")

		result, err := WriteCSVExport(sampleExport(), base, generatedAt)
		if err != nil {
			t.Fatalf("WriteCSVExport failed: %v", err)
		}
		if result.BooksFile != base+"_books.csv" || result.MetadataFile != base+"_metadata.json" {
			t.Errorf("unexpected paths %+v", result)
		}

		th.AssertFileExists(t, result.BooksFile)
		metadata := th.MustReadFile(t, result.MetadataFile)
		if !strings.Contains(metadata, `"count": 3`) || !strings.Contains(metadata, `"title": "My Library"`) {
			t.Errorf("metadata missing fields: %s", metadata)
		}
	})

	t.Run("WriteMarkdownExport", func(t *testing.T) {
		t.Run("Without Covers", func(t *testing.T) {
			dir := filepath.Join(t.TempDir(), "export")

			result, err := WriteMarkdownExport(context.Background(), sampleExport(), dir, MarkdownOptions{})
			if err != nil {
				t.Fatalf("WriteMarkdownExport failed: %v", err)
			}
			if len(result.Files) != 1 || result.Covers != 0 {
				t.Errorf("unexpected result %+v", result)
			}
			th.AssertFileExists(t, filepath.Join(dir, "README.md"))
		})

		t.Run("With Covers", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path == "/missing.jpg" {
					w.WriteHeader(http.StatusNotFound)
					return
				}
				w.Write([]byte("jpeg"))
			}))
			defer server.Close()

			export := sampleExport()
			export.Books[0].CoverURL = server.URL + "/dune.jpg"
			export.Books[1].CoverURL = server.URL + "/missing.jpg"

			var warned []string
			dir := t.TempDir()
			result, err := WriteMarkdownExport(context.Background(), export, dir, MarkdownOptions{
				Covers: true,
				Client: server.Client(),
				Warn:   func(id string, err error) { warned = append(warned, id) },
			})
			if err != nil {
				t.Fatalf("WriteMarkdownExport failed: %v", err)
			}

			if result.Covers != 1 {
				t.Errorf("expected 1 cover, got %d", result.Covers)
			}
			if len(warned) != 1 || warned[0] != "b2" {
				t.Errorf("expected a warning for b2, got %v", warned)
			}
			if th.MustReadFile(t, filepath.Join(dir, "covers", "b1.jpg")) != "jpeg" {
				t.Error("cover not written")
			}
			readme := th.MustReadFile(t, filepath.Join(dir, "README.md"))
			if !strings.Contains(readme, "covers/b1.jpg") || strings.Contains(readme, "covers/b2.jpg") {
				t.Errorf("unexpected cover references:\n%s", readme)
			}
		})
	})

	t.Run("WriteTextExport", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "list.txt")

		got, err := WriteTextExport(sampleExport(), path)
		if err != nil {
			t.Fatalf("WriteTextExport failed: %v", err)
		}
		if got != path {
			t.Errorf("expected %s, got %s", path, got)
		}
		th.AssertFileExists(t, path)
	})

	t.Run("WriteServerExport", func(t *testing.T) {
		dir := t.TempDir()

		path, err := WriteServerExport([]byte("Title\nDune\n"), dir, generatedAt)
		if err != nil {
			t.Fatalf("WriteServerExport failed: %v", err)
		}
		if filepath.Base(path) != "Library_Export_2025-03-14.csv" {
			t.Errorf("unexpected path %s", path)
		}
		if th.MustReadFile(t, path) != "Title\nDune\n" {
			t.Error("export bytes not preserved")
		}
	})

	t.Run("WriteServerExport Missing Dir", func(t *testing.T) {
		_, err := WriteServerExport([]byte("x"), filepath.Join(t.TempDir(), "nope"), generatedAt)
		if !errors.Is(err, os.ErrNotExist) {
			t.Errorf("expected ErrNotExist, got %v", err)
		}
	})
}

func TestDownloadImage(t *testing.T) {
	t.Run("Empty URL", func(t *testing.T) {
		if _, err := DownloadImage(context.Background(), nil, ""); err == nil {
			t.Error("expected error for empty URL")
		}
	})

	t.Run("Non-200", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
		}))
		defer server.Close()

		_, err := DownloadImage(context.Background(), server.Client(), server.URL)
		if err == nil || !strings.Contains(err.Error(), "status 403") {
			t.Errorf("expected status error, got %v", err)
		}
	})
}
