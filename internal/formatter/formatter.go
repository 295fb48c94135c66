// package formatter renders book lists as CSV, Markdown and plain text and writes exports to disk
package formatter

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/desertthunder/shelf/internal/models"
	"github.com/desertthunder/shelf/internal/shared"
)

// Export is a titled list of books.
type Export struct {
	Title       string
	Description string
	Books       []models.Book
}

// Summary is the metadata written next to a CSV export.
type Summary struct {
	Title       string              `json:"title"`
	Description string              `json:"description,omitempty"`
	Count       int                 `json:"count"`
	Statuses    models.StatusCounts `json:"statuses"`
	GeneratedAt time.Time           `json:"generatedAt"`
}

// Summarize counts books per status.
func (e *Export) Summarize(now time.Time) Summary {
	s := Summary{Title: e.Title, Description: e.Description, Count: len(e.Books), GeneratedAt: now}
	for _, b := range e.Books {
		switch b.Status {
		case models.StatusUnread:
			s.Statuses.Unread++
		case models.StatusReading:
			s.Statuses.Reading++
		case models.StatusCompleted:
			s.Statuses.Completed++
		}
	}
	return s
}

// ExportFilename is the name a server-side CSV export is saved under.
func ExportFilename(now time.Time) string {
	return fmt.Sprintf("Library_Export_%s.csv", now.Format(time.DateOnly))
}

// ExportToCSV converts an Export to CSV with columns: ID, Title, Author, Genre, Year, Status, Tags, GoogleID
func ExportToCSV(export *Export) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"ID", "Title", "Author", "Genre", "Year", "Status", "Tags", "GoogleID"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, b := range export.Books {
		record := []string{
			b.ID,
			b.Title,
			b.Author,
			b.Genre,
			string(b.Year),
			string(b.Status),
			strings.Join(b.Tags, ";"),
			b.GoogleID,
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown converts an Export to Markdown, grouped by status. covers maps book ids to local image paths.
func ExportToMarkdown(export *Export, covers map[string]string) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "# %s\n\n", export.Title)
	if export.Description != "" {
		fmt.Fprintf(&buf, "%s\n\n", export.Description)
	}
	fmt.Fprintf(&buf, "**Books**: %d\n\n", len(export.Books))

	for _, status := range models.Statuses {
		var group []models.Book
		for _, b := range export.Books {
			if b.Status == status {
				group = append(group, b)
			}
		}
		if len(group) == 0 {
			continue
		}

		fmt.Fprintf(&buf, "## %s\n\n", statusHeading(status))
		for i, b := range group {
			line := fmt.Sprintf("%d. **%s** by %s", i+1, b.Title, b.Author)
			if b.Year != "" {
				line += fmt.Sprintf(" (%s)", b.Year)
			}
			if len(b.Tags) > 0 {
				line += " `" + strings.Join(b.Tags, "` `") + "`"
			}
			buf.WriteString(line + "\n")
			if path, ok := covers[b.ID]; ok {
				fmt.Fprintf(&buf, "\n   ![%s](%s)\n\n", b.Title, path)
			}
		}
		buf.WriteString("\n")
	}

	return buf.Bytes(), nil
}

func statusHeading(s models.Status) string {
	switch s {
	case models.StatusReading:
		return "Reading"
	case models.StatusCompleted:
		return "Completed"
	default:
		return "Unread"
	}
}

// ExportToText converts an Export to plain text
func ExportToText(export *Export) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "%s\n", export.Title)
	if export.Description != "" {
		fmt.Fprintf(&buf, "%s\n", export.Description)
	}
	fmt.Fprintf(&buf, "Books: %d\n\n", len(export.Books))

	for i, b := range export.Books {
		fmt.Fprintf(&buf, "%d. %s - %s [%s]\n", i+1, b.Author, b.Title, b.Status)
	}

	return buf.Bytes(), nil
}

// DownloadImage downloads an image from the given URL and returns the raw bytes
func DownloadImage(ctx context.Context, client *http.Client, url string) ([]byte, error) {
	if url == "" {
		return nil, fmt.Errorf("empty URL provided")
	}
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to download image: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download image: status %d", resp.StatusCode)
	}

	imageData, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read image data: %w", err)
	}

	return imageData, nil
}

// CSVExportResult contains the paths of files created by WriteCSVExport
type CSVExportResult struct {
	BooksFile    string
	MetadataFile string
}

// WriteCSVExport writes {base}_books.csv and {base}_metadata.json.
func WriteCSVExport(export *Export, base string, now time.Time) (*CSVExportResult, error) {
	if base == "" {
		base = "library"
	}

	csvData, err := ExportToCSV(export)
	if err != nil {
		return nil, fmt.Errorf("failed to generate CSV: %w", err)
	}

	booksFile := base + "_books.csv"
	if err := os.WriteFile(booksFile, csvData, 0644); err != nil {
		return nil, fmt.Errorf("failed to write CSV file: %w", err)
	}

	metadata, err := shared.MarshalJSON(export.Summarize(now), true)
	if err != nil {
		return nil, fmt.Errorf("failed to generate metadata JSON: %w", err)
	}

	metadataFile := base + "_metadata.json"
	if err := os.WriteFile(metadataFile, metadata, 0644); err != nil {
		return nil, fmt.Errorf("failed to write metadata file: %w", err)
	}

	return &CSVExportResult{BooksFile: booksFile, MetadataFile: metadataFile}, nil
}

// MarkdownExportResult contains information about files created by WriteMarkdownExport
type MarkdownExportResult struct {
	Directory string
	Files     []string
	Covers    int
}

// MarkdownOptions controls WriteMarkdownExport.
type MarkdownOptions struct {
	// Covers downloads each book's cover into {dir}/covers.
	Covers bool
	Client *http.Client
	// Warn receives cover download failures. Nil discards them.
	Warn func(id string, err error)
}

// WriteMarkdownExport writes {dir}/README.md and, optionally, {dir}/covers/{id}.jpg for each book with a cover.
//
// A failed cover download is reported through opts.Warn and does not fail the export.
func WriteMarkdownExport(ctx context.Context, export *Export, outputDir string, opts MarkdownOptions) (*MarkdownExportResult, error) {
	if outputDir == "" {
		outputDir = "library"
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	result := &MarkdownExportResult{Directory: outputDir, Files: []string{}}
	covers := map[string]string{}

	if opts.Covers {
		coverDir := filepath.Join(outputDir, "covers")
		if err := os.MkdirAll(coverDir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}

		for _, b := range export.Books {
			if b.ID == "" || b.CoverURL == "" {
				continue
			}
			data, err := DownloadImage(ctx, opts.Client, b.CoverURL)
			if err == nil {
				path := filepath.Join(coverDir, b.ID+".jpg")
				if err = os.WriteFile(path, data, 0644); err == nil {
					covers[b.ID] = filepath.Join("covers", b.ID+".jpg")
					result.Files = append(result.Files, path)
					continue
				}
			}
			if opts.Warn != nil {
				opts.Warn(b.ID, err)
			}
		}
	}
	result.Covers = len(covers)

	mdData, err := ExportToMarkdown(export, covers)
	if err != nil {
		return nil, fmt.Errorf("failed to generate Markdown: %w", err)
	}

	mdFile := filepath.Join(outputDir, "README.md")
	if err := os.WriteFile(mdFile, mdData, 0644); err != nil {
		return nil, fmt.Errorf("failed to write Markdown file: %w", err)
	}
	result.Files = append(result.Files, mdFile)

	return result, nil
}

// WriteTextExport writes the plain text rendering to path, defaulting to library.txt.
func WriteTextExport(export *Export, path string) (string, error) {
	if path == "" {
		path = "library.txt"
	}

	textData, err := ExportToText(export)
	if err != nil {
		return "", fmt.Errorf("failed to generate text: %w", err)
	}

	if err := os.WriteFile(path, textData, 0644); err != nil {
		return "", fmt.Errorf("failed to write text file: %w", err)
	}

	return path, nil
}

// WriteServerExport saves the backend's CSV export into dir under [ExportFilename].
func WriteServerExport(data []byte, dir string, now time.Time) (string, error) {
	if dir == "" {
		dir = "."
	}
	path := filepath.Join(dir, ExportFilename(now))
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write export: %w", err)
	}
	return path, nil
}
