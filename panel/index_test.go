package panel

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing %s: %v", name, err)
	}
	return path
}

func TestReadBIM(t *testing.T) {
	dir := t.TempDir()
	bim := writeFile(t, dir, "chr1.bim",
		"1\t1:752566:A:G\t0\t752566\tG\tA\n"+
			"1\t1:800000:T:C\t0.02\t800000\tC\tT\n"+
			"X\t23:155000:G:A\t0\t155000\tA\tG\n")

	variants, err := ReadBIM(bim)
	if err != nil {
		t.Fatalf("ReadBIM failed: %v", err)
	}
	if len(variants) != 3 {
		t.Fatalf("expected 3 variants, got %d", len(variants))
	}
	if variants[0].Chrom != 1 || variants[0].Pos != 752566 || variants[0].ID != "1:752566:A:G" {
		t.Errorf("unexpected first variant: %+v", variants[0])
	}
	if variants[2].Chrom != 23 {
		t.Errorf("X should be encoded as chromosome 23, got %d", variants[2].Chrom)
	}
}

func TestReadBIMMalformed(t *testing.T) {
	dir := t.TempDir()

	truncated := writeFile(t, dir, "bad.bim", "1\trs123\t0\t752566\tG\n")
	if _, err := ReadBIM(truncated); err == nil {
		t.Error("expected error for a 5-column line, got nil")
	}

	badPos := writeFile(t, dir, "badpos.bim", "1\trs123\t0\tabc\tG\tA\n")
	if _, err := ReadBIM(badPos); err == nil {
		t.Error("expected error for a non-numeric position, got nil")
	}
}

func TestBuildIndex(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "chr1.bim",
		"1\t1:100:A:G\t0\t100\tG\tA\n"+
			"1\t1:100:A:T\t0\t100\tT\tA\n"+ // duplicate position
			"1\t1:200:C:T\t0\t200\tT\tC\n")
	writeFile(t, dir, "chr2.bim", "2\t2:300:G:C\t0\t300\tC\tG\n")

	idx, err := BuildIndex(dir, "panel_v1")
	if err != nil {
		t.Fatalf("BuildIndex failed: %v", err)
	}

	if idx.Len() != 3 {
		t.Errorf("expected 3 unique entries, got %d", idx.Len())
	}
	if idx.Duplicates != 1 {
		t.Errorf("expected 1 duplicate, got %d", idx.Duplicates)
	}

	id, found := idx.Lookup(1, 100)
	if !found || id != "1:100:A:G" {
		t.Errorf("duplicate key should keep the first entry, got %q (found=%v)", id, found)
	}
	if _, found := idx.Lookup(2, 300); !found {
		t.Error("expected (2, 300) in index")
	}
	if _, found := idx.Lookup(3, 1); found {
		t.Error("unexpected hit for an absent key")
	}
}

func TestBuildIndexEmptyDir(t *testing.T) {
	if _, err := BuildIndex(t.TempDir(), ""); err == nil {
		t.Error("expected error for a directory without .bim files, got nil")
	}
}

func TestWriteLoadIndexRoundTrip(t *testing.T) {
	idx := NewIndex("panel_v2")
	idx.Add(1, 12345, "1:12345:G:A")
	idx.Add(23, 500, "23:500:T:C")

	path := filepath.Join(t.TempDir(), "index.tsv")
	if err := WriteIndex(idx, path); err != nil {
		t.Fatalf("WriteIndex failed: %v", err)
	}

	loaded, err := LoadIndex(path)
	if err != nil {
		t.Fatalf("LoadIndex failed: %v", err)
	}
	if loaded.Panel != "panel_v2" {
		t.Errorf("panel tag lost: got %q", loaded.Panel)
	}
	if loaded.Len() != 2 {
		t.Errorf("expected 2 entries, got %d", loaded.Len())
	}
	if id, found := loaded.Lookup(23, 500); !found || id != "23:500:T:C" {
		t.Errorf("lookup after round trip: got %q (found=%v)", id, found)
	}
}
