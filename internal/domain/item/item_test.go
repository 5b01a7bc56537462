package item

import "testing"

func TestNew_NilDataBecomesEmpty(t *testing.T) {
	it := New("K1", "book", 3, nil)
	if it.Data() == nil {
		t.Fatal("Data() is nil")
	}
	if it.Field("title") != "" {
		t.Errorf("Field(title) = %q, want empty", it.Field("title"))
	}
	if it.Version() != 3 {
		t.Errorf("Version() = %d, want 3", it.Version())
	}
}

func TestExcluded(t *testing.T) {
	tests := []struct {
		typ  string
		want bool
	}{
		{"attachment", true},
		{"note", true},
		{"journalArticle", false},
		{"annotation", false},
		{"", false},
	}
	for _, tc := range tests {
		if got := New("K", tc.typ, 0, nil).Excluded(); got != tc.want {
			t.Errorf("Excluded(%q) = %v, want %v", tc.typ, got, tc.want)
		}
	}
}

func TestCreators(t *testing.T) {
	it := New("K", "book", 0, map[string]any{
		"creators": []any{
			map[string]any{"creatorType": "author", "firstName": "Ada", "lastName": "Lovelace"},
			map[string]any{"creatorType": "editor", "name": "CERN"},
			"garbage",
		},
	})

	got := it.Creators()
	if len(got) != 2 {
		t.Fatalf("expected 2 creators, got %d", len(got))
	}
	if got[0].Display() != "Lovelace, Ada" {
		t.Errorf("creator[0] = %q", got[0].Display())
	}
	if got[1].Display() != "CERN" {
		t.Errorf("creator[1] = %q", got[1].Display())
	}
}

func TestCreatorDisplay_PartialNames(t *testing.T) {
	if got := (Creator{LastName: "Knuth"}).Display(); got != "Knuth" {
		t.Errorf("last only = %q", got)
	}
	if got := (Creator{FirstName: "Plato"}).Display(); got != "Plato" {
		t.Errorf("first only = %q", got)
	}
}

func TestTags(t *testing.T) {
	it := New("K", "book", 0, map[string]any{
		"tags": []any{
			map[string]any{"tag": "ml", "type": 1},
			map[string]any{"tag": "  "},
			"nlp",
		},
	})

	got := it.Tags()
	if len(got) != 2 || got[0] != "ml" || got[1] != "nlp" {
		t.Errorf("Tags() = %v", got)
	}
}

func TestField_NonString(t *testing.T) {
	it := New("K", "book", 0, map[string]any{"numPages": float64(320)})
	if got := it.Field("numPages"); got != "320" {
		t.Errorf("Field(numPages) = %q", got)
	}
}
