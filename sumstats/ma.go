package sumstats

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"strconv"
)

// MaHeader is the exact column set and order the external association tool
// expects. Do not change it.
var MaHeader = []string{"SNP", "A1", "A2", "freq", "b", "se", "p", "N"}

// Validate is the post-condition on normalized records: no field may be
// missing or NaN, because the association tool has no tolerance for partial
// rows. It hard-fails rather than writing a corrupt file.
func Validate(records []MaRecord) error {
	for i, r := range records {
		if r.SNP == "" || r.A1 == "" || r.A2 == "" {
			return fmt.Errorf("record %d (%s): missing allele or ID field", i+1, r.SNP)
		}
		for _, v := range []float64{r.Freq, r.B, r.SE, r.P, r.N} {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return fmt.Errorf("record %d (%s): non-finite numeric field", i+1, r.SNP)
			}
		}
	}
	return nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// WriteMa writes normalized records as a tab-delimited .ma file. Identical
// inputs always produce byte-identical output, so job-array regeneration is
// reproducible.
func WriteMa(records []MaRecord, path string) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	writer.Comma = '\t'

	if err := writer.Write(MaHeader); err != nil {
		return err
	}

	for _, r := range records {
		row := []string{
			r.SNP,
			r.A1,
			r.A2,
			formatFloat(r.Freq),
			formatFloat(r.B),
			formatFloat(r.SE),
			formatFloat(r.P),
			formatFloat(r.N),
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

// ReadMa reads a .ma file back into records, checking the header against
// MaHeader before any row is parsed.
func ReadMa(path string) ([]MaRecord, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.Comma = '\t'

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	if len(rows) < 1 {
		return nil, fmt.Errorf("%s is empty", path)
	}

	if len(rows[0]) != len(MaHeader) {
		return nil, fmt.Errorf("%s: expected %d columns, got %d", path, len(MaHeader), len(rows[0]))
	}
	for i, name := range MaHeader {
		if rows[0][i] != name {
			return nil, fmt.Errorf("%s: expected header %v, got %v", path, MaHeader, rows[0])
		}
	}

	var records []MaRecord
	for i, row := range rows[1:] {
		var r MaRecord
		r.SNP, r.A1, r.A2 = row[0], row[1], row[2]
		vals := make([]float64, 5)
		for j, s := range row[3:] {
			v, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return nil, fmt.Errorf("%s row %d: bad value %q", path, i+2, s)
			}
			vals[j] = v
		}
		r.Freq, r.B, r.SE, r.P, r.N = vals[0], vals[1], vals[2], vals[3], vals[4]
		records = append(records, r)
	}

	return records, nil
}
