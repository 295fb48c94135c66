package shared

import (
	"errors"
	"os/exec"
	"testing"
)

func TestOpenBrowser(t *testing.T) {
	stub := func(t *testing.T, goos string) *[]string {
		t.Helper()
		var args []string
		origRuntime, origStart := getRuntime, startCommand
		getRuntime = func() string { return goos }
		startCommand = func(cmd *exec.Cmd) error {
			args = cmd.Args
			return nil
		}
		t.Cleanup(func() { getRuntime, startCommand = origRuntime, origStart })
		return &args
	}

	t.Run("Platform Commands", func(t *testing.T) {
		tests := []struct {
			goos string
			want string
		}{
			{"darwin", "open"},
			{"linux", "xdg-open"},
			{"windows", "cmd"},
		}

		for _, tt := range tests {
			t.Run(tt.goos, func(t *testing.T) {
				args := stub(t, tt.goos)
				if err := OpenBrowser("https://books.google.com/books?id=abc"); err != nil {
					t.Fatalf("expected no error, got %v", err)
				}
				if len(*args) == 0 || (*args)[0] != tt.want {
					t.Errorf("expected %s, got %v", tt.want, *args)
				}
			})
		}
	})

	t.Run("Unsupported Platform", func(t *testing.T) {
		stub(t, "plan9")
		if err := OpenBrowser("https://example.com"); err == nil {
			t.Error("expected error for unsupported platform")
		}
	})

	t.Run("Rejects Non Web Targets", func(t *testing.T) {
		stub(t, "linux")
		for _, target := range []string{"", "file:///etc/passwd", "javascript:alert(1)", "https://"} {
			if err := OpenBrowser(target); !errors.Is(err, ErrInvalidArgument) {
				t.Errorf("%q: expected ErrInvalidArgument, got %v", target, err)
			}
		}
	})

	t.Run("Start Failure", func(t *testing.T) {
		stub(t, "linux")
		startCommand = func(*exec.Cmd) error { return errors.New("no display") }
		if err := OpenBrowser("https://example.com"); err == nil {
			t.Error("expected start failure to surface")
		}
	})
}

func TestCatalogURL(t *testing.T) {
	if got := CatalogURL("a b&c"); got != "https://books.google.com/books?id=a+b%26c" {
		t.Errorf("unexpected url %s", got)
	}
}
