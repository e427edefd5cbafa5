package backup

import "time"

// FormatVersion is the document version written by Encode.
const FormatVersion = 1

// Document is the top-level structure of a backup file.
type Document struct {
	Version     int              `yaml:"version"`
	ExportedAt  time.Time        `yaml:"exportedAt"`
	Preferences Preferences      `yaml:"preferences"`
	Categories  []CategoryRecord `yaml:"categories"`
	Notes       []NoteRecord     `yaml:"notes"`
}

// Preferences mirrors the persisted view settings.
type Preferences struct {
	Category      string `yaml:"category,omitempty"`
	OnlyFavorites bool   `yaml:"onlyFavorites,omitempty"`
}

type CategoryRecord struct {
	ID      string    `yaml:"id"`
	Name    string    `yaml:"name"`
	Color   string    `yaml:"color,omitempty"`
	Created time.Time `yaml:"created,omitempty"`
}

// NoteRecord uses readable timestamps; a missing created/updated is
// filled from the id on import.
type NoteRecord struct {
	ID       string     `yaml:"id"`
	Title    string     `yaml:"title,omitempty"`
	Content  string     `yaml:"content,omitempty"`
	Favorite bool       `yaml:"favorite,omitempty"`
	Category string     `yaml:"category,omitempty"`
	Created  time.Time  `yaml:"created,omitempty"`
	Updated  time.Time  `yaml:"updated,omitempty"`
	Deleted  *time.Time `yaml:"deleted,omitempty"`
}
