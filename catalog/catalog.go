// Package catalog loads the static project lists shown next to the blog:
// game projects and open-source repository links. Files may be JSON or
// YAML, chosen by extension.
package catalog

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultRepoURLs is used when no repository list exists.
var DefaultRepoURLs = []string{"https://github.com/example/example-repo"}

// ID accepts both numeric and string identifiers.
type ID string

func (id *ID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("id: %w", err)
	}
	*id = ID(n.String())
	return nil
}

func (id *ID) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("id: line %d: expected a scalar", node.Line)
	}
	*id = ID(node.Value)
	return nil
}

// Game is one game project card.
type Game struct {
	ID          ID     `json:"id" yaml:"id"`
	Title       string `json:"title" yaml:"title"`
	Description string `json:"description" yaml:"description"`
	ImageURL    string `json:"imageUrl" yaml:"imageUrl"`
	ItchURL     string `json:"itchUrl" yaml:"itchUrl"`
}

func (g Game) valid() bool {
	return g.ID != "" && g.Title != "" && g.ItchURL != ""
}

func decode(path string, data []byte, v interface{}) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, v); err != nil {
			return fmt.Errorf("decode %s: %w", path, err)
		}
	default:
		if err := json.Unmarshal(data, v); err != nil {
			return fmt.Errorf("decode %s: %w", path, err)
		}
	}
	return nil
}

// LoadGames reads game projects from path. Entries without an id, title
// or itch.io URL are dropped. A missing file yields an empty list.
func LoadGames(path string) ([]Game, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return []Game{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read games: %w", err)
	}
	var raw []Game
	if err := decode(path, data, &raw); err != nil {
		return nil, err
	}
	games := make([]Game, 0, len(raw))
	for _, g := range raw {
		if g.valid() {
			games = append(games, g)
		}
	}
	return games, nil
}

// LoadRepoURLs reads a list of repository URLs from path. A missing or
// empty file yields DefaultRepoURLs.
func LoadRepoURLs(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return append([]string(nil), DefaultRepoURLs...), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read repos: %w", err)
	}
	var urls []string
	if err := decode(path, data, &urls); err != nil {
		return nil, err
	}
	out := make([]string, 0, len(urls))
	for _, u := range urls {
		if u = strings.TrimSpace(u); u != "" {
			out = append(out, u)
		}
	}
	if len(out) == 0 {
		return append([]string(nil), DefaultRepoURLs...), nil
	}
	return out, nil
}
