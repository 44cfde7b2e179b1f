package zip

import (
	"archive/zip"
	"bytes"
	"io"
	"testing"
)

func TestArchiveRoundTrip(t *testing.T) {
	entries := []Entry{
		{Name: "a.png", Data: []byte("first")},
		{Name: "nested/b.png", Data: []byte("second")},
	}

	archive, err := Archive(entries)
	if err != nil {
		t.Fatalf("Archive error: %v", err)
	}

	reader, err := zip.NewReader(bytes.NewReader(archive), int64(len(archive)))
	if err != nil {
		t.Fatalf("open archive: %v", err)
	}
	if len(reader.File) != 2 {
		t.Fatalf("expected 2 files, got %d", len(reader.File))
	}
	for i, entry := range entries {
		file := reader.File[i]
		if file.Name != entry.Name {
			t.Errorf("file %d: got name %q, want %q", i, file.Name, entry.Name)
		}
		rc, err := file.Open()
		if err != nil {
			t.Fatalf("open entry %q: %v", file.Name, err)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			t.Fatalf("read entry %q: %v", file.Name, err)
		}
		if !bytes.Equal(data, entry.Data) {
			t.Errorf("entry %q: got %q, want %q", file.Name, data, entry.Data)
		}
	}
}

func TestArchiveEmpty(t *testing.T) {
	archive, err := Archive(nil)
	if err != nil {
		t.Fatalf("Archive error: %v", err)
	}
	reader, err := zip.NewReader(bytes.NewReader(archive), int64(len(archive)))
	if err != nil {
		t.Fatalf("open archive: %v", err)
	}
	if len(reader.File) != 0 {
		t.Fatalf("expected empty archive, got %d files", len(reader.File))
	}
}
