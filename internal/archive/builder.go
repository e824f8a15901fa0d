// Package archive packages an OpenAPI document into the zip layout the
// APIMatic import endpoint expects.
package archive

import (
	"archive/zip"
	"bytes"
	"compress/flate"
	"encoding/json"
	"fmt"
	"io"

	"apimatic-validator-mcp/internal/domain"
)

const (
	// YAMLEntryName holds the specification when it is YAML.
	YAMLEntryName = "openapi.yaml"
	// JSONEntryName holds the specification when it is JSON.
	JSONEntryName = "openapi.json"
	// MetadataEntryName holds the import settings descriptor.
	MetadataEntryName = "APIMATIC-META.json"

	// CompressionLevel is applied to every entry.
	CompressionLevel = flate.BestCompression
)

// EntryName returns the archive entry name for the specification.
func EntryName(isYAML bool) string {
	if isYAML {
		return YAMLEntryName
	}
	return JSONEntryName
}

// metadataContent is the compact encoding of domain.DefaultArchiveMetadata.
var metadataContent = mustMarshal(domain.DefaultArchiveMetadata)

func mustMarshal(v interface{}) []byte {
	data, err := json.Marshal(v)
	if err != nil {
		panic(fmt.Sprintf("archive: cannot encode metadata: %v", err))
	}
	return data
}

// MetadataContent returns a copy of the metadata descriptor written into every archive.
func MetadataContent() []byte {
	return append([]byte(nil), metadataContent...)
}

// Build returns an in-memory zip holding the specification text followed by
// the metadata descriptor. Codec errors are returned unchanged.
func Build(specText string, isYAML bool) ([]byte, error) {
	var buf bytes.Buffer

	zw := zip.NewWriter(&buf)
	zw.RegisterCompressor(zip.Deflate, func(w io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(w, CompressionLevel)
	})

	if err := writeEntry(zw, EntryName(isYAML), []byte(specText)); err != nil {
		return nil, err
	}
	if err := writeEntry(zw, MetadataEntryName, metadataContent); err != nil {
		return nil, err
	}

	// The central directory is only written on Close.
	if err := zw.Close(); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

func writeEntry(zw *zip.Writer, name string, content []byte) error {
	w, err := zw.CreateHeader(&zip.FileHeader{
		Name:   name,
		Method: zip.Deflate,
	})
	if err != nil {
		return err
	}
	_, err = w.Write(content)
	return err
}

// Entry is one decoded archive member.
type Entry struct {
	Name    string
	Content []byte
}

// Read decodes an archive into its entries in stored order.
func Read(data []byte) ([]Entry, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to open archive: %w", err)
	}

	entries := make([]Entry, 0, len(zr.File))
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("failed to open entry %s: %w", f.Name, err)
		}
		content, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to read entry %s: %w", f.Name, err)
		}
		entries = append(entries, Entry{Name: f.Name, Content: content})
	}

	return entries, nil
}
