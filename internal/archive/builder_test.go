package archive

import (
	"archive/zip"
	"bytes"
	"testing"
)

func TestEntryName(t *testing.T) {
	if got := EntryName(true); got != "openapi.yaml" {
		t.Errorf("EntryName(true) = %s, want openapi.yaml", got)
	}
	if got := EntryName(false); got != "openapi.json" {
		t.Errorf("EntryName(false) = %s, want openapi.json", got)
	}
}

func TestBuild(t *testing.T) {
	tests := []struct {
		name      string
		specText  string
		isYAML    bool
		wantEntry string
	}{
		{
			name:      "yaml specification",
			specText:  "openapi: 3.0.0\ninfo:\n  title: X\n  version: '1'\npaths: {}",
			isYAML:    true,
			wantEntry: "openapi.yaml",
		},
		{
			name:      "json specification",
			specText:  `{"openapi":"3.0.0","info":{"title":"X","version":"1"},"paths":{}}`,
			isYAML:    false,
			wantEntry: "openapi.json",
		},
		{
			name:      "empty specification",
			specText:  "",
			isYAML:    false,
			wantEntry: "openapi.json",
		},
		{
			name:      "non-ascii specification",
			specText:  "openapi: 3.1.0\ninfo:\n  title: Café ☕\n",
			isYAML:    true,
			wantEntry: "openapi.yaml",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := Build(tt.specText, tt.isYAML)
			if err != nil {
				t.Fatalf("Build() error = %v", err)
			}

			entries, err := Read(data)
			if err != nil {
				t.Fatalf("Read() error = %v", err)
			}

			if len(entries) != 2 {
				t.Fatalf("expected 2 entries, got %d", len(entries))
			}
			if entries[0].Name != tt.wantEntry {
				t.Errorf("expected first entry %s, got %s", tt.wantEntry, entries[0].Name)
			}
			if string(entries[0].Content) != tt.specText {
				t.Errorf("specification content changed: got %q", entries[0].Content)
			}
			if entries[1].Name != "APIMATIC-META.json" {
				t.Errorf("expected second entry APIMATIC-META.json, got %s", entries[1].Name)
			}
			if string(entries[1].Content) != `{"ImportSettings":{"UseStrictValidation":true}}` {
				t.Errorf("unexpected metadata %s", entries[1].Content)
			}
		})
	}
}

func TestBuild_UsesDeflate(t *testing.T) {
	data, err := Build("openapi: 3.0.0\n", true)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("zip.NewReader() error = %v", err)
	}
	for _, f := range zr.File {
		if f.Method != zip.Deflate {
			t.Errorf("entry %s uses method %d, want Deflate", f.Name, f.Method)
		}
	}
}

func TestBuild_CompressesRepetitiveInput(t *testing.T) {
	spec := bytes.Repeat([]byte("paths:\n  /pets:\n    get:\n      responses: {}\n"), 500)

	data, err := Build(string(spec), true)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	if len(data) >= len(spec)/4 {
		t.Errorf("expected strong compression, archive is %d bytes for %d bytes of input", len(data), len(spec))
	}
}

func TestMetadataContent_ReturnsCopy(t *testing.T) {
	first := MetadataContent()
	first[0] = 'X'

	if MetadataContent()[0] != '{' {
		t.Error("MetadataContent() exposes shared state")
	}
}

func TestRead_InvalidArchive(t *testing.T) {
	if _, err := Read([]byte("not a zip")); err == nil {
		t.Error("expected error for invalid archive")
	}
}
