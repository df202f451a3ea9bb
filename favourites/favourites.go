// Package favourites provides persistent bookmark storage for burrow.
package favourites

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"burrow/document"
	"burrow/omnibox"
)

// ErrInvalidURL is returned when a stored favourite is not a gopher URL.
var ErrInvalidURL = errors.New("favourites: invalid gopher url")

// Favourite represents a saved bookmark.
type Favourite struct {
	URL     string    `json:"url"`
	Title   string    `json:"title"`
	AddedAt time.Time `json:"added_at"`
}

// Target resolves the favourite's URL to an address.
func (f Favourite) Target() (omnibox.Result, error) {
	r, ok := omnibox.ParseURL(f.URL)
	if !ok {
		return omnibox.Result{}, fmt.Errorf("%w: %q", ErrInvalidURL, f.URL)
	}
	return r, nil
}

// Store manages the favourites collection.
type Store struct {
	path       string
	Favourites []Favourite `json:"favourites"`
}

// Defaults returns the bookmarks a fresh store starts with.
func Defaults() []Favourite {
	menu := func(title, host, selector string) Favourite {
		return Favourite{
			URL:   omnibox.FormatURL(host, document.DefaultPort, document.Menu, selector),
			Title: title,
		}
	}
	return []Favourite{
		menu("Floodgap Gopher", "gopher.floodgap.com", "/"),
		menu("SDF Public Access", "sdf.org", "/"),
		menu("Gopherpedia", "gopherpedia.com", "/"),
		menu("Veronica-2 Search", "gopher.floodgap.com", "/v2/vs"),
	}
}

// configDir returns the configuration directory path.
func configDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "burrow"), nil
}

// Load reads favourites from ~/.config/burrow/favourites.json.
func Load() (*Store, error) {
	dir, err := configDir()
	if err != nil {
		return nil, err
	}
	return LoadFile(filepath.Join(dir, "favourites.json"))
}

// LoadFile reads favourites from path. A missing file yields a store seeded
// with Defaults; nothing is written until Save.
func LoadFile(path string) (*Store, error) {
	store := &Store{path: path}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		store.Favourites = Defaults()
		return store, nil
	}
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(data, store); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	return store, nil
}

// Path returns the file the store saves to.
func (s *Store) Path() string {
	return s.path
}

// Save writes favourites to disk.
func (s *Store) Save() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0644)
}

// Add adds a new favourite, avoiding duplicates by URL.
func (s *Store) Add(url, title string) bool {
	for _, f := range s.Favourites {
		if f.URL == url {
			return false
		}
	}

	s.Favourites = append(s.Favourites, Favourite{
		URL:     url,
		Title:   title,
		AddedAt: time.Now(),
	})
	return true
}

// AddPage bookmarks the page at the given address, titled by its address.
func (s *Store) AddPage(host, selector string, port int, kind document.Kind) bool {
	url := omnibox.FormatURL(host, port, kind, selector)
	return s.Add(url, host+selector)
}

// Remove removes a favourite by index.
func (s *Store) Remove(index int) bool {
	if index < 0 || index >= len(s.Favourites) {
		return false
	}
	s.Favourites = append(s.Favourites[:index], s.Favourites[index+1:]...)
	return true
}

// Len returns the number of favourites.
func (s *Store) Len() int {
	return len(s.Favourites)
}
