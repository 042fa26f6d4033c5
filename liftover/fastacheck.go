package liftover

import (
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/biogo/biogo/alphabet"
	"github.com/biogo/biogo/io/seqio"
	"github.com/biogo/biogo/io/seqio/fasta"
	"github.com/biogo/biogo/seq/linear"

	"github.com/gmaffy/cojo-whisperer/utils"
)

// VerifyAlleles compares the REF allele of every remapped row against the
// target-build fasta and returns the number of rows checked and the number
// whose reference no longer matches. A high mismatch rate means the wrong
// chain was used for the input's actual build. Rows on contigs absent from
// the fasta, or with null alleles, are skipped.
func VerifyAlleles(fastaPath string, rows [][]string) (checked int, mismatched int, err error) {
	if len(rows) < 1 {
		return 0, 0, fmt.Errorf("no rows to verify")
	}

	colIndex := make(map[string]int)
	for i, col := range rows[0] {
		colIndex[col] = i
	}
	for _, col := range []string{"CHR", "POS", "REF"} {
		if _, found := colIndex[col]; !found {
			return 0, 0, fmt.Errorf("required column %s not found in remapped table", col)
		}
	}

	seqs, err := readFasta(fastaPath)
	if err != nil {
		return 0, 0, err
	}

	for _, row := range rows[1:] {
		ref := strings.ToUpper(row[colIndex["REF"]])
		if ref == "" || ref == "NAN" || ref == "-" {
			continue
		}

		chrom, cErr := utils.ChromToNum(row[colIndex["CHR"]])
		if cErr != nil {
			continue
		}
		seq, found := seqs["chr"+utils.NumToChrom(chrom)]
		if !found {
			continue
		}

		pos, pErr := strconv.Atoi(row[colIndex["POS"]])
		if pErr != nil {
			continue
		}

		start := pos - 1
		end := start + len(ref)
		if start < 0 || end > len(seq.Seq) {
			continue
		}

		checked++
		if !strings.EqualFold(seq.Seq[start:end].String(), ref) {
			mismatched++
		}
	}

	return checked, mismatched, nil
}

func readFasta(path string) (map[string]*linear.Seq, error) {
	fna, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fna.Close()

	var reader io.Reader = fna
	if strings.HasSuffix(path, ".gz") {
		gzReader, err := gzip.NewReader(fna)
		if err != nil {
			return nil, err
		}
		defer gzReader.Close()
		reader = gzReader
	}

	seqs := make(map[string]*linear.Seq)
	r := fasta.NewReader(reader, linear.NewSeq("", nil, alphabet.DNA))
	sc := seqio.NewScanner(r)
	for sc.Next() {
		seq := sc.Seq().(*linear.Seq)
		seqs[seq.ID] = seq
	}
	if err := sc.Error(); err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	return seqs, nil
}
