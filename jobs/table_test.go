package jobs

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func touch(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing %s: %v", name, err)
	}
	return path
}

func TestBuildTable(t *testing.T) {
	dir := t.TempDir()
	stats := touch(t, dir, "height.ma", "SNP\tA1\tA2\tfreq\tb\tse\tp\tN\n")
	touch(t, dir, "chr1_500.snplist", "1:500:G:A\n")
	touch(t, dir, "chr3_900.snplist", "3:900:T:C\n")
	touch(t, dir, "chr12_40.snplist", "12:40:A:G\n")

	rows, err := BuildTable(dir)
	if err != nil {
		t.Fatalf("BuildTable failed: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}

	// lexicographic by filename: chr12_40 sorts before chr1_500 ('2' < '_'),
	// then chr3_900
	wantChroms := []int{12, 1, 3}
	for i, row := range rows {
		if row.Chrom != wantChroms[i] {
			t.Errorf("row %d: chromosome %d, want %d", i, row.Chrom, wantChroms[i])
		}
		if row.StatsFile != stats {
			t.Errorf("row %d: stats file %s, want %s", i, row.StatsFile, stats)
		}
		if !strings.HasSuffix(row.SnplistFile, ".snplist") {
			t.Errorf("row %d: unexpected snplist %s", i, row.SnplistFile)
		}
		if strings.HasSuffix(row.OutPrefix, ".snplist") {
			t.Errorf("row %d: out prefix should drop the extension: %s", i, row.OutPrefix)
		}
	}
}

func TestBuildTableStatsFileErrors(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "chr1_500.snplist", "1:500:G:A\n")
	if _, err := BuildTable(dir); err == nil {
		t.Error("expected error when no .ma file exists")
	}

	touch(t, dir, "height.ma", "")
	touch(t, dir, "bmi.ma", "")
	if _, err := BuildTable(dir); err == nil {
		t.Error("two .ma files are ambiguous and must refuse to run")
	}
}

func TestBuildTableBadSnplistName(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "height.ma", "")
	touch(t, dir, "lead_variants.snplist", "1:500:G:A\n")
	if _, err := BuildTable(dir); err == nil {
		t.Error("expected error for a snplist without a chr<N>_ prefix")
	}
}

func TestWriteReadTableRoundTrip(t *testing.T) {
	rows := []JobRow{
		{Chrom: 1, StatsFile: "/data/height.ma", SnplistFile: "/data/chr1_500.snplist", OutPrefix: "/data/chr1_500"},
		{Chrom: 12, StatsFile: "/data/height.ma", SnplistFile: "/data/chr12_40.snplist", OutPrefix: "/data/chr12_40"},
	}

	path := filepath.Join(t.TempDir(), "cojo_jobs.txt")
	if err := WriteTable(rows, path); err != nil {
		t.Fatalf("WriteTable failed: %v", err)
	}

	content, _ := os.ReadFile(path)
	lines := strings.Split(strings.TrimSpace(string(content)), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	if lines[0] != "1 /data/height.ma /data/chr1_500.snplist /data/chr1_500" {
		t.Errorf("unexpected first line: %q", lines[0])
	}

	back, err := ReadTable(path)
	if err != nil {
		t.Fatalf("ReadTable failed: %v", err)
	}
	if len(back) != 2 || back[0] != rows[0] || back[1] != rows[1] {
		t.Errorf("round trip mismatch: %+v", back)
	}
}

func TestMakeSnplists(t *testing.T) {
	dir := t.TempDir()
	hits := touch(t, dir, "top_hits.tsv",
		"CHR\tPOS\tREF\tALT\tP\n"+
			"5\t100\tg\ta\t1e-9\n"+
			"12\t40\tT\tC\t1e-8\n")

	outDir := filepath.Join(dir, "lists")
	if err := os.MkdirAll(outDir, 0755); err != nil {
		t.Fatal(err)
	}

	written, err := MakeSnplists(hits, DefaultHitsColumns(), outDir)
	if err != nil {
		t.Fatalf("MakeSnplists failed: %v", err)
	}
	if len(written) != 2 {
		t.Fatalf("expected 2 snplists, got %d", len(written))
	}

	content, err := os.ReadFile(filepath.Join(outDir, "chr5_100.snplist"))
	if err != nil {
		t.Fatalf("expected chr5_100.snplist: %v", err)
	}
	if string(content) != "5:100:G:A\n" {
		t.Errorf("unexpected snplist content: %q", string(content))
	}
}

func TestMakeSnplistsNormalizesChromosomes(t *testing.T) {
	dir := t.TempDir()
	hits := touch(t, dir, "top_hits.tsv",
		"CHR\tPOS\tREF\tALT\n"+
			"X\t500\tG\tA\n"+
			"chr7\t1200\tT\tC\n")

	outDir := filepath.Join(dir, "lists")
	if err := os.MkdirAll(outDir, 0755); err != nil {
		t.Fatal(err)
	}

	if _, err := MakeSnplists(hits, DefaultHitsColumns(), outDir); err != nil {
		t.Fatalf("MakeSnplists failed: %v", err)
	}

	content, err := os.ReadFile(filepath.Join(outDir, "chr23_500.snplist"))
	if err != nil {
		t.Fatalf("X hit should be written as chr23_500.snplist: %v", err)
	}
	if string(content) != "23:500:G:A\n" {
		t.Errorf("X hit ID %q, want 23:500:G:A", string(content))
	}
	if _, err := os.ReadFile(filepath.Join(outDir, "chr7_1200.snplist")); err != nil {
		t.Errorf("chr-prefixed hit should be written as chr7_1200.snplist: %v", err)
	}

	// the lists must round-trip through the job-table builder
	touch(t, outDir, "height.ma", "")
	rows, err := BuildTable(outDir)
	if err != nil {
		t.Fatalf("BuildTable rejected generated snplists: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0].Chrom != 23 || rows[1].Chrom != 7 {
		t.Errorf("chromosomes %d, %d, want 23, 7", rows[0].Chrom, rows[1].Chrom)
	}
}

func TestCojoCommand(t *testing.T) {
	row := JobRow{Chrom: 7, StatsFile: "stats.ma", SnplistFile: "chr7_1.snplist", OutPrefix: "chr7_1"}
	cmd := CojoCommand(row, "gcta64", "/panel/chr{chr}_filtered", "0.01")

	want := "gcta64 --bfile /panel/chr7_filtered --chr 7 --maf 0.01 --cojo-file stats.ma --cojo-cond chr7_1.snplist --out chr7_1"
	if cmd != want {
		t.Errorf("CojoCommand:\n got %q\nwant %q", cmd, want)
	}
}

func TestWriteArrayScript(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cojo_array.sh")
	if err := WriteArrayScript("/data/cojo_jobs.txt", 3, "gcta64", "/panel/chr{chr}", "0.01", path); err != nil {
		t.Fatalf("WriteArrayScript failed: %v", err)
	}

	content, _ := os.ReadFile(path)
	script := string(content)
	for _, want := range []string{
		"#SBATCH --array=1-3",
		"$SLURM_ARRAY_TASK_ID",
		"/data/cojo_jobs.txt",
		"--bfile /panel/chr${CHR}",
		"--cojo-cond ${SNPLIST}",
	} {
		if !strings.Contains(script, want) {
			t.Errorf("script missing %q:\n%s", want, script)
		}
	}
}
