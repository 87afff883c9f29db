// Package archive builds the portable ZIP archives the Evidence Log uses
// for its audit pack export.
package archive

import (
	"archive/zip"
	"bytes"
	"compress/flate"
	"fmt"
	"io"
)

// ZipEntry is one named file to write into a created archive.
type ZipEntry struct {
	Name string
	Data []byte
}

// CreateZip builds a zip archive from entries at flate.BestCompression,
// the same deflate level the audit pack format requires. Entry order is
// preserved so callers control a deterministic archive layout.
func CreateZip(entries []ZipEntry) ([]byte, error) {
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	w.RegisterCompressor(zip.Deflate, func(out io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(out, flate.BestCompression)
	})

	for _, entry := range entries {
		fw, err := w.CreateHeader(&zip.FileHeader{
			Name:   entry.Name,
			Method: zip.Deflate,
		})
		if err != nil {
			return nil, fmt.Errorf("creating zip entry %s: %w", entry.Name, err)
		}
		if _, err := fw.Write(entry.Data); err != nil {
			return nil, fmt.Errorf("writing zip entry %s: %w", entry.Name, err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("closing zip writer: %w", err)
	}
	return buf.Bytes(), nil
}
