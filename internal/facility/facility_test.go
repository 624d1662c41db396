package facility

import (
	"testing"
)

func TestBuiltin(t *testing.T) {
	reg := Builtin()
	if reg.Len() == 0 {
		t.Fatal("builtin registry is empty")
	}

	for _, f := range reg.All() {
		if !f.Coordinate().Valid() {
			t.Errorf("%s has invalid coordinate %v", f.ID, f.Coordinate())
		}
		if f.Address == "" {
			t.Errorf("%s has no address", f.ID)
		}
	}

	if _, ok := reg.ByID("barnum"); !ok {
		t.Error("ByID(barnum) not found")
	}
}

func TestRegistry_Match(t *testing.T) {
	reg := Builtin()

	tests := []struct {
		name     string
		input    string
		wantID   string
		wantKind MatchKind
	}{
		{"schedule alias", "Ashland", "ashland", MatchKey},
		{"full table name", "Barnum Recreation Center", "barnum", MatchKey},
		{"punctuation ignored", "Martin Luther King Jr.", "martin-luther-king", MatchKey},
		{"case and spacing", "  carla   MADISON ", "carla-madison", MatchKey},
		{"id", "green-valley-ranch", "green-valley-ranch", MatchKey},
		{"legacy substring of a longer name", "Highland Rec Ctr North", "highland", MatchLegacySubstring},
		{"unknown", "Sloan's Lake", "", MatchNone},
		{"empty", "", "", MatchNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, kind := reg.Match(tt.input)
			if kind != tt.wantKind {
				t.Errorf("Match(%q) kind = %v, want %v", tt.input, kind, tt.wantKind)
			}
			if got.ID != tt.wantID {
				t.Errorf("Match(%q) = %q, want %q", tt.input, got.ID, tt.wantID)
			}
		})
	}
}

func TestNewRegistry_Conflicts(t *testing.T) {
	_, err := NewRegistry([]Facility{
		{ID: "a", Name: "Alpha", Aliases: []string{"Shared"}},
		{ID: "b", Name: "Beta", Aliases: []string{"shared"}},
	})
	if err == nil {
		t.Error("expected error for alias shared by two facilities")
	}

	_, err = NewRegistry([]Facility{{Name: "No ID"}})
	if err == nil {
		t.Error("expected error for facility without id")
	}
}

func TestKey(t *testing.T) {
	tests := map[string]string{
		"Ashland Recreation Center":            "ashland",
		"St. Charles":                          "st charles",
		"Hiawatha Davis Jr. Recreation Center": "hiawatha davis jr",
		"washington-park":                      "washington park",
		"  Montbello Rec Center ":              "montbello",
	}
	for in, want := range tests {
		if got := Key(in); got != want {
			t.Errorf("Key(%q) = %q, want %q", in, got, want)
		}
	}
}
