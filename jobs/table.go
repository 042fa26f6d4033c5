package jobs

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/gmaffy/cojo-whisperer/utils"
)

// JobRow is one chromosome-level conditional analysis. The four columns, in
// this order, are the whole interface contract with the job-array scheduler.
type JobRow struct {
	Chrom       int
	StatsFile   string
	SnplistFile string
	OutPrefix   string
}

var snplistNameRe = regexp.MustCompile(`^chr(\d+)_`)

// BuildTable scans dir for exactly one normalized .ma statistics file and one
// or more chr<N>_<pos>.snplist conditioning lists and emits one JobRow per
// list. Zero or multiple .ma files is an error: silently picking one would
// condition every chromosome on the wrong trait. Rows are ordered
// lexicographically by list filename so array task numbers are reproducible
// across regenerations.
func BuildTable(dir string) ([]JobRow, error) {
	maFiles, err := filepath.Glob(filepath.Join(dir, "*.ma"))
	if err != nil {
		return nil, err
	}
	if len(maFiles) == 0 {
		return nil, fmt.Errorf("no .ma statistics file found in %s", dir)
	}
	if len(maFiles) > 1 {
		return nil, fmt.Errorf("found %d .ma files in %s, expected exactly one: %s", len(maFiles), dir, strings.Join(maFiles, ", "))
	}
	statsFile := maFiles[0]

	snplists, err := filepath.Glob(filepath.Join(dir, "*.snplist"))
	if err != nil {
		return nil, err
	}
	if len(snplists) == 0 {
		return nil, fmt.Errorf("no .snplist files found in %s", dir)
	}
	sort.Strings(snplists)

	var rows []JobRow
	for _, snplist := range snplists {
		base := filepath.Base(snplist)
		m := snplistNameRe.FindStringSubmatch(base)
		if m == nil {
			return nil, fmt.Errorf("snplist %s does not match chr<N>_<pos>.snplist", base)
		}
		chrom, err := strconv.Atoi(m[1])
		if err != nil {
			return nil, fmt.Errorf("snplist %s: bad chromosome prefix", base)
		}

		rows = append(rows, JobRow{
			Chrom:       chrom,
			StatsFile:   statsFile,
			SnplistFile: snplist,
			OutPrefix:   filepath.Join(dir, strings.TrimSuffix(base, ".snplist")),
		})
	}

	return rows, nil
}

// WriteTable writes job rows whitespace-delimited with no header; the
// scheduler addresses them purely by line number.
func WriteTable(rows []JobRow, path string) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	w := bufio.NewWriter(file)
	for _, row := range rows {
		if _, err := fmt.Fprintf(w, "%d %s %s %s\n", row.Chrom, row.StatsFile, row.SnplistFile, row.OutPrefix); err != nil {
			return err
		}
	}
	return w.Flush()
}

// ReadTable reads a job table written by WriteTable.
func ReadTable(path string) ([]JobRow, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var rows []JobRow
	var lineno int

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		lineno++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != 4 {
			return nil, fmt.Errorf("%s:%d: expected 4 columns, got %d", path, lineno, len(fields))
		}
		chrom, err := strconv.Atoi(fields[0])
		if err != nil {
			return nil, fmt.Errorf("%s:%d: bad chromosome %q", path, lineno, fields[0])
		}
		rows = append(rows, JobRow{Chrom: chrom, StatsFile: fields[1], SnplistFile: fields[2], OutPrefix: fields[3]})
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return rows, nil
}

// HitsColumns names the top-hits table columns used to compose conditioning
// variant IDs.
type HitsColumns struct {
	Chrom string
	Pos   string
	Ref   string
	Alt   string
}

func DefaultHitsColumns() HitsColumns {
	return HitsColumns{Chrom: "CHR", Pos: "POS", Ref: "REF", Alt: "ALT"}
}

// MakeSnplists turns a top-hits table into per-locus conditioning lists: each
// row becomes one chr<N>_<POS>.snplist in outDir containing the single
// variant ID chr:pos:ref:alt. The chromosome is normalized to its numeric
// code (X becomes 23, a chr prefix is stripped) so the IDs string-match the
// panel's canonical IDs and the filenames match what BuildTable expects.
func MakeSnplists(hitsPath string, cols HitsColumns, outDir string) ([]string, error) {
	file, err := os.Open(hitsPath)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.Comma = '\t'
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", hitsPath, err)
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("%s has no data rows", hitsPath)
	}

	colIndex := make(map[string]int)
	for i, col := range records[0] {
		colIndex[col] = i
	}
	for _, col := range []string{cols.Chrom, cols.Pos, cols.Ref, cols.Alt} {
		if _, found := colIndex[col]; !found {
			return nil, fmt.Errorf("required column %s not found in header of %s", col, hitsPath)
		}
	}

	var written []string
	for i, row := range records[1:] {
		chrom := row[colIndex[cols.Chrom]]
		pos := row[colIndex[cols.Pos]]
		ref := strings.ToUpper(row[colIndex[cols.Ref]])
		alt := strings.ToUpper(row[colIndex[cols.Alt]])
		if chrom == "" || pos == "" || ref == "" || alt == "" {
			return nil, fmt.Errorf("%s row %d: missing field", hitsPath, i+2)
		}
		chromNum, err := utils.ChromToNum(chrom)
		if err != nil {
			return nil, fmt.Errorf("%s row %d: %v", hitsPath, i+2, err)
		}

		id := fmt.Sprintf("%d:%s:%s:%s", chromNum, pos, ref, alt)
		outPath := filepath.Join(outDir, fmt.Sprintf("chr%d_%s.snplist", chromNum, pos))
		if err := os.WriteFile(outPath, []byte(id+"\n"), 0644); err != nil {
			return nil, err
		}
		written = append(written, outPath)
	}

	return written, nil
}
