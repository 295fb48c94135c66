package models

import (
	"encoding/json"
	"slices"
	"testing"
)

func TestYear(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Year
		asInt int
	}{
		{"number", `{"year":1999}`, "1999", 1999},
		{"string", `{"year":"2004"}`, "2004", 2004},
		{"null", `{"year":null}`, "", 0},
		{"missing", `{}`, "", 0},
		{"non numeric string", `{"year":"circa 1900"}`, "circa 1900", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var b Book
			if err := json.Unmarshal([]byte(tt.input), &b); err != nil {
				t.Fatalf("unmarshal failed: %v", err)
			}
			if b.Year != tt.want {
				t.Errorf("Year = %q, want %q", b.Year, tt.want)
			}
			if b.Year.Int() != tt.asInt {
				t.Errorf("Year.Int() = %d, want %d", b.Year.Int(), tt.asInt)
			}
		})
	}

	t.Run("invalid", func(t *testing.T) {
		var b Book
		if err := json.Unmarshal([]byte(`{"year":true}`), &b); err == nil {
			t.Error("expected error for boolean year")
		}
	})
}

func TestBook(t *testing.T) {
	t.Run("Identifiers", func(t *testing.T) {
		if got := (Book{ID: "a"}).Identifiers(); !slices.Equal(got, []string{"a"}) {
			t.Errorf("Identifiers() = %v", got)
		}
		if got := (Book{ID: "b", GoogleID: "g2"}).Identifiers(); !slices.Equal(got, []string{"g2", "b"}) {
			t.Errorf("Identifiers() = %v", got)
		}
	})

	t.Run("null googleId decodes as empty", func(t *testing.T) {
		var b Book
		if err := json.Unmarshal([]byte(`{"_id":"a","googleId":null}`), &b); err != nil {
			t.Fatalf("unmarshal failed: %v", err)
		}
		if b.GoogleID != "" {
			t.Errorf("expected empty googleId, got %q", b.GoogleID)
		}
	})

	t.Run("Input copies writable fields", func(t *testing.T) {
		b := Book{ID: "x", Title: "Dune", Author: "Herbert", Status: StatusReading, Tags: []string{"scifi"}}
		in := b.Input()
		if in.Title != "Dune" || in.Status != StatusReading || len(in.Tags) != 1 {
			t.Errorf("Input() = %+v", in)
		}
	})
}

func TestBookInputValidate(t *testing.T) {
	tests := []struct {
		name    string
		input   BookInput
		wantErr bool
	}{
		{"valid", BookInput{Title: "Dune", Author: "Herbert", Status: StatusUnread}, false},
		{"empty status allowed", BookInput{Title: "Dune", Author: "Herbert"}, false},
		{"missing title", BookInput{Author: "Herbert"}, true},
		{"blank author", BookInput{Title: "Dune", Author: "  "}, true},
		{"bad status", BookInput{Title: "Dune", Author: "Herbert", Status: "abandoned"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.input.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestParseStatus(t *testing.T) {
	if got, err := ParseStatus("Reading"); err != nil || got != StatusReading {
		t.Errorf("ParseStatus(Reading) = %q, %v", got, err)
	}
	if _, err := ParseStatus("all"); err == nil {
		t.Error("expected error for filter value 'all'")
	}
}

func TestUser(t *testing.T) {
	t.Run("accepts id or _id", func(t *testing.T) {
		var u1, u2 User
		if err := json.Unmarshal([]byte(`{"_id":"u1","username":"ana","role":"admin"}`), &u1); err != nil {
			t.Fatal(err)
		}
		if err := json.Unmarshal([]byte(`{"id":"u2","username":"bo","role":"student"}`), &u2); err != nil {
			t.Fatal(err)
		}
		if u1.ID != "u1" || u1.Role != RoleAdmin {
			t.Errorf("u1 = %+v", u1)
		}
		if u2.ID != "u2" || u2.Username != "bo" {
			t.Errorf("u2 = %+v", u2)
		}
	})

	t.Run("WishlistIDs skips entries without external id", func(t *testing.T) {
		u := User{Wishlist: []Book{{ID: "1", GoogleID: "g1"}, {ID: "2"}, {ID: "3", GoogleID: "g3"}}}
		if got := u.WishlistIDs(); !slices.Equal(got, []string{"g1", "g3"}) {
			t.Errorf("WishlistIDs() = %v", got)
		}
	})
}

func TestVolumeBookInput(t *testing.T) {
	v := Volume{ID: "g9", Title: "Emma", Author: "Austen", Genre: "Fiction"}
	in := v.BookInput()
	if in.GoogleID != "g9" || in.Status != StatusUnread {
		t.Errorf("BookInput() = %+v", in)
	}

	community := Volume{ID: "mongo1", GoogleID: "g1"}
	if community.CatalogID() != "g1" || community.BookInput().GoogleID != "g1" {
		t.Errorf("community volume should prefer googleId, got %q", community.CatalogID())
	}
}

func TestWishlistUnmarshal(t *testing.T) {
	var u User
	data := `{"_id":"u1","wishlist":[{"_id":"b1","googleId":"g1"},"b2",null,{"_id":"b3"}]}`
	if err := json.Unmarshal([]byte(data), &u); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	if len(u.Wishlist) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(u.Wishlist))
	}
	if u.Wishlist[1].ID != "b2" {
		t.Errorf("expected bare id entry, got %+v", u.Wishlist[1])
	}
	if got := u.WishlistIDs(); !slices.Equal(got, []string{"g1"}) {
		t.Errorf("WishlistIDs() = %v", got)
	}
}
