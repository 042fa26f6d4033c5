package utils

import (
	"os"
	"path/filepath"
	"testing"
)

func TestChromToNum(t *testing.T) {
	for _, tc := range []struct {
		in   string
		want int
	}{
		{"1", 1},
		{"22", 22},
		{"23", 23},
		{"X", 23},
		{"x", 23},
		{"chrX", 23},
		{"chr7", 7},
	} {
		got, err := ChromToNum(tc.in)
		if err != nil {
			t.Errorf("ChromToNum(%q) failed: %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("ChromToNum(%q) = %d, want %d", tc.in, got, tc.want)
		}
	}

	for _, bad := range []string{"Y", "MT", "0", "24", "foo"} {
		if _, err := ChromToNum(bad); err == nil {
			t.Errorf("ChromToNum(%q) should fail", bad)
		}
	}
}

func TestNumToChrom(t *testing.T) {
	if got := NumToChrom(23); got != "X" {
		t.Errorf("NumToChrom(23) = %q, want X", got)
	}
	if got := NumToChrom(7); got != "7" {
		t.Errorf("NumToChrom(7) = %q, want 7", got)
	}
}

func TestReadConfig(t *testing.T) {
	content := `
bfile: /panel/chr{chr}_filtered
ma: /data/height.ma
JobTable: /data/cojo_jobs.txt
gcta: gcta64
maf: 0.01
threads: 8

# not a key-value line
`
	path := filepath.Join(t.TempDir(), "config.txt")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := ReadConfig(path)
	if err != nil {
		t.Fatalf("ReadConfig failed: %v", err)
	}
	if cfg.Bfile != "/panel/chr{chr}_filtered" {
		t.Errorf("unexpected bfile: %q", cfg.Bfile)
	}
	if cfg.MaFile != "/data/height.ma" {
		t.Errorf("unexpected ma: %q", cfg.MaFile)
	}
	if cfg.JobTable != "/data/cojo_jobs.txt" {
		t.Errorf("unexpected job table: %q", cfg.JobTable)
	}
	if cfg.Threads != "8" {
		t.Errorf("unexpected threads: %q", cfg.Threads)
	}
}

func TestParseLogFileAndStageHasCompleted(t *testing.T) {
	logContent := `{"time":"2025-06-18T21:11:02.5+02:00","level":"INFO","msg":"COJO RUN","PROGRAM":"gcta-cojo","CHROMOSOME":"1","STATUS":"STARTED","CMD":"gcta64 ..."}
{"time":"2025-06-18T21:12:02.5+02:00","level":"INFO","msg":"COJO RUN","PROGRAM":"gcta-cojo","CHROMOSOME":"1","STATUS":"COMPLETED","CMD":"gcta64 ..."}
{"time":"2025-06-18T21:12:03.5+02:00","level":"INFO","msg":"COJO RUN","PROGRAM":"gcta-cojo","CHROMOSOME":"2","STATUS":"STARTED","CMD":"gcta64 ..."}
not json at all
`
	path := filepath.Join(t.TempDir(), "cojo_run.log")
	if err := os.WriteFile(path, []byte(logContent), 0644); err != nil {
		t.Fatal(err)
	}

	entries := ParseLogFile(path)
	if len(entries) != 3 {
		t.Fatalf("expected 3 parsed entries, got %d", len(entries))
	}
	if entries[1].Status != "COMPLETED" || entries[1].Chromosome != "1" {
		t.Errorf("unexpected entry: %+v", entries[1])
	}

	if !StageHasCompleted(entries, "gcta-cojo", "1") {
		t.Error("chromosome 1 should be completed")
	}
	if StageHasCompleted(entries, "gcta-cojo", "2") {
		t.Error("chromosome 2 only started, not completed")
	}

	if got := ParseLogFile(filepath.Join(t.TempDir(), "missing.log")); got != nil {
		t.Errorf("missing log should parse as empty, got %v", got)
	}
}
