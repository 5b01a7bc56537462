package keyspace

import "testing"

func TestSpace_Keys(t *testing.T) {
	s, err := New("zotsearch:", "zotero_library")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	checks := map[string]string{
		s.IndexName():        "zotsearch:zotero_library:idx",
		s.DocKey("ABCD1234"): "zotsearch:zotero_library:ABCD1234",
		s.DocPattern():       "zotsearch:zotero_library:*",
		s.MetaKey():          "zotsearch:collection:zotero_library",
		s.LockKey():          "zotsearch:lock:sync:zotero_library",
	}
	for got, want := range checks {
		if got != want {
			t.Errorf("got %q, want %q", got, want)
		}
	}
	if id := s.DocID("zotsearch:zotero_library:ABCD1234"); id != "ABCD1234" {
		t.Errorf("DocID = %q", id)
	}
}

func TestNew_RejectsGlobCharacters(t *testing.T) {
	for _, name := range []string{"", "lib*", "a b", "x?"} {
		if _, err := New("p:", name); err == nil {
			t.Errorf("expected error for %q", name)
		}
	}
}
