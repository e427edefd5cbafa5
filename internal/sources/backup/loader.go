// Package backup reads and writes the YAML backup format.
package backup

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Loader reads a backup file from disk.
type Loader struct {
	filePath string
}

func NewLoader(filePath string) *Loader {
	return &Loader{filePath: filePath}
}

// Load reads and parses the backup file.
func (l *Loader) Load() (Document, error) {
	data, err := os.ReadFile(l.filePath)
	if err != nil {
		return Document{}, fmt.Errorf("failed to read backup file: %w", err)
	}
	return Decode(bytes.NewReader(data))
}

// Decode parses a backup document. A missing version is read as version 1;
// newer versions are rejected.
func Decode(r io.Reader) (Document, error) {
	var doc Document
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if err == io.EOF {
			return Document{Version: FormatVersion}, nil
		}
		return Document{}, fmt.Errorf("failed to parse backup yaml: %w", err)
	}

	if doc.Version == 0 {
		doc.Version = FormatVersion
	}
	if doc.Version > FormatVersion {
		return Document{}, fmt.Errorf("unsupported backup version %d (max %d)", doc.Version, FormatVersion)
	}
	return doc, nil
}

// Encode writes doc as YAML.
func Encode(w io.Writer, doc Document) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("failed to encode backup yaml: %w", err)
	}
	return enc.Close()
}

// WriteFile encodes doc into path, replacing any existing file.
func WriteFile(path string, doc Document) error {
	var buf bytes.Buffer
	if err := Encode(&buf, doc); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write backup file: %w", err)
	}
	return nil
}
