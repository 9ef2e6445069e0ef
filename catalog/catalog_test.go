package catalog

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func write(t *testing.T, name, data string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadGamesJSON(t *testing.T) {
	path := write(t, "games.json", `[
		{"id": 123, "title": "Orbit", "description": "d", "imageUrl": "images/orbit.png", "itchUrl": "https://x.itch.io/orbit"},
		{"id": "abc", "title": "Drift", "itchUrl": "https://x.itch.io/drift"},
		{"id": 5, "title": "", "itchUrl": "https://x.itch.io/none"}
	]`)
	games, err := LoadGames(path)
	if err != nil {
		t.Fatalf("LoadGames: %v", err)
	}
	want := []Game{
		{ID: "123", Title: "Orbit", Description: "d", ImageURL: "images/orbit.png", ItchURL: "https://x.itch.io/orbit"},
		{ID: "abc", Title: "Drift", ItchURL: "https://x.itch.io/drift"},
	}
	if !reflect.DeepEqual(games, want) {
		t.Errorf("games = %+v, want %+v", games, want)
	}
}

func TestLoadGamesYAML(t *testing.T) {
	path := write(t, "games.yaml", "- id: 7\n  title: Orbit\n  imageUrl: a.png\n  itchUrl: https://x.itch.io/orbit\n")
	games, err := LoadGames(path)
	if err != nil {
		t.Fatalf("LoadGames: %v", err)
	}
	if len(games) != 1 || games[0].ID != "7" || games[0].ImageURL != "a.png" {
		t.Errorf("games = %+v", games)
	}
}

func TestLoadGamesMissingFile(t *testing.T) {
	games, err := LoadGames(filepath.Join(t.TempDir(), "nope.json"))
	if err != nil || games == nil || len(games) != 0 {
		t.Errorf("LoadGames(missing) = %#v, %v", games, err)
	}
}

func TestLoadGamesMalformed(t *testing.T) {
	if _, err := LoadGames(write(t, "games.json", "{not json")); err == nil {
		t.Error("expected decode error")
	}
}

func TestLoadRepoURLs(t *testing.T) {
	tests := []struct {
		name     string
		data     string
		expected []string
	}{
		{"repos.json", `["https://github.com/a/b", " ", "https://github.com/c/d"]`, []string{"https://github.com/a/b", "https://github.com/c/d"}},
		{"repos.yml", "- https://github.com/a/b\n", []string{"https://github.com/a/b"}},
		{"repos.json", `[]`, DefaultRepoURLs},
	}
	for _, tt := range tests {
		got, err := LoadRepoURLs(write(t, tt.name, tt.data))
		if err != nil {
			t.Errorf("LoadRepoURLs(%s): %v", tt.data, err)
			continue
		}
		if !reflect.DeepEqual(got, tt.expected) {
			t.Errorf("LoadRepoURLs(%s) = %v, want %v", tt.data, got, tt.expected)
		}
	}

	got, err := LoadRepoURLs(filepath.Join(t.TempDir(), "missing.json"))
	if err != nil || !reflect.DeepEqual(got, DefaultRepoURLs) {
		t.Errorf("LoadRepoURLs(missing) = %v, %v", got, err)
	}
}
