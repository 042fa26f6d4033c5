package sumstats

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/gmaffy/cojo-whisperer/panel"
	"github.com/gmaffy/cojo-whisperer/utils"
)

// Columns names the raw summary-statistics header columns. Defaults match
// METAL meta-analysis output.
type Columns struct {
	Marker  string
	Allele1 string
	Allele2 string
	Freq    string
	N       string
	Effect  string
	P       string
}

func DefaultColumns() Columns {
	return Columns{
		Marker:  "MarkerName",
		Allele1: "Allele1",
		Allele2: "Allele2",
		Freq:    "Freq1",
		N:       "Weight",
		Effect:  "Zscore",
		P:       "P-value",
	}
}

// MaRecord is one row of the normalized statistics file consumed by the
// conditional association tool. A1 is always the panel's alt allele; Freq and
// B are expressed in the same allele frame.
type MaRecord struct {
	SNP  string
	A1   string
	A2   string
	Freq float64
	B    float64
	SE   float64
	P    float64
	N    float64
}

// Stats counts rows excluded during reformatting. Exclusions are expected
// (the association tool rejects variants without panel LD support) but a
// large count is a data-quality signal, so they are always reported.
type Stats struct {
	Input          int
	Output         int
	NoPanelMatch   int
	AlleleMismatch int
	BadMarker      int
}

// SplitMarker decomposes a composite chr+pos marker ("1_12345", "1:12345",
// "chrX:500") into its numeric chromosome and position.
func SplitMarker(marker string) (int, int, error) {
	parts := strings.FieldsFunc(marker, func(r rune) bool {
		return r == ':' || r == '_'
	})
	if len(parts) < 2 {
		return 0, 0, fmt.Errorf("marker %q is not chr:pos or chr_pos", marker)
	}
	chrom, err := utils.ChromToNum(parts[0])
	if err != nil {
		return 0, 0, fmt.Errorf("marker %q: %v", marker, err)
	}
	pos, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, fmt.Errorf("marker %q: bad position %q", marker, parts[1])
	}
	return chrom, pos, nil
}

// SplitVariantID decomposes a canonical chr:pos:ref:alt variant ID into its
// reference and alternate allele components.
func SplitVariantID(id string) (ref, alt string, err error) {
	parts := strings.Split(id, ":")
	if len(parts) != 4 {
		return "", "", fmt.Errorf("variant ID %q is not chr:pos:ref:alt", id)
	}
	return strings.ToUpper(parts[2]), strings.ToUpper(parts[3]), nil
}

// Reformat turns a raw tab-delimited summary-statistics table into normalized
// .ma records, resolving each row to the panel's canonical variant ID and
// re-orienting frequency and effect to the alt-allele frame. The column
// schema is checked before any row is processed. se is the constant
// placeholder standard error assigned to every row.
func Reformat(rawPath string, cols Columns, idx *panel.Index, se float64) ([]MaRecord, Stats, error) {
	var stats Stats

	file, err := os.Open(rawPath)
	if err != nil {
		return nil, stats, err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.Comma = '\t'
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, stats, fmt.Errorf("reading %s: %w", rawPath, err)
	}
	if len(records) < 1 {
		return nil, stats, fmt.Errorf("%s is empty", rawPath)
	}

	header := records[0]
	colIndex := make(map[string]int)
	for i, col := range header {
		colIndex[col] = i
	}

	requiredCols := []string{cols.Marker, cols.Allele1, cols.Allele2, cols.Freq, cols.N, cols.Effect, cols.P}
	for _, col := range requiredCols {
		if _, found := colIndex[col]; !found {
			return nil, stats, fmt.Errorf("required column %s not found in header of %s", col, rawPath)
		}
	}

	var out []MaRecord
	for i, row := range records[1:] {
		stats.Input++

		chrom, pos, err := SplitMarker(row[colIndex[cols.Marker]])
		if err != nil {
			stats.BadMarker++
			continue
		}

		id, found := idx.Lookup(chrom, pos)
		if !found {
			stats.NoPanelMatch++
			continue
		}

		ref, alt, err := SplitVariantID(id)
		if err != nil {
			return nil, stats, fmt.Errorf("%s row %d: %v", rawPath, i+2, err)
		}

		a1 := strings.ToUpper(row[colIndex[cols.Allele1]])
		a2 := strings.ToUpper(row[colIndex[cols.Allele2]])

		freq, err := strconv.ParseFloat(row[colIndex[cols.Freq]], 64)
		if err != nil {
			return nil, stats, fmt.Errorf("%s row %d: bad frequency %q", rawPath, i+2, row[colIndex[cols.Freq]])
		}
		effect, err := strconv.ParseFloat(row[colIndex[cols.Effect]], 64)
		if err != nil {
			return nil, stats, fmt.Errorf("%s row %d: bad effect %q", rawPath, i+2, row[colIndex[cols.Effect]])
		}
		p, err := strconv.ParseFloat(row[colIndex[cols.P]], 64)
		if err != nil {
			return nil, stats, fmt.Errorf("%s row %d: bad p-value %q", rawPath, i+2, row[colIndex[cols.P]])
		}
		n, err := strconv.ParseFloat(row[colIndex[cols.N]], 64)
		if err != nil {
			return nil, stats, fmt.Errorf("%s row %d: bad sample size %q", rawPath, i+2, row[colIndex[cols.N]])
		}

		// Re-orient to the alt-allele frame. The effect allele of every
		// output row is the panel alt allele: a row reported for the ref
		// allele flips its frequency and effect sign. Rows whose allele
		// pair does not match the panel's ref/alt (strand or multiallelic
		// mismatch) are excluded rather than guessed at.
		switch {
		case a1 == alt && a2 == ref:
			// effect already reported for the alt allele
		case a1 == ref && a2 == alt:
			freq = 1 - freq
			effect = -effect
		default:
			stats.AlleleMismatch++
			continue
		}

		out = append(out, MaRecord{
			SNP:  id,
			A1:   alt,
			A2:   ref,
			Freq: freq,
			B:    effect,
			SE:   se,
			P:    p,
			N:    n,
		})
		stats.Output++
	}

	if err := Validate(out); err != nil {
		return nil, stats, err
	}

	return out, stats, nil
}
