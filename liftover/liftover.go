package liftover

import (
	"bufio"
	"compress/gzip"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	glo "github.com/carbocation/GLO"
	"github.com/go-gota/gota/dataframe"

	"github.com/gmaffy/cojo-whisperer/utils"
)

// Options controls the liftover reformatter. ChromCol and PosCol name the
// key columns of the user table; DropContigs lists target contigs whose
// results are discarded after projection (the downstream tool rejects them).
type Options struct {
	ChromCol    string
	PosCol      string
	DropContigs []string
}

func DefaultOptions() Options {
	return Options{ChromCol: "CHR", PosCol: "POS", DropContigs: []string{"chrY"}}
}

// Stats reports what happened to every input interval. Dropped intervals are
// an observable metric, never silently discarded: a large drop is a
// data-quality signal.
type Stats struct {
	Input         int
	Mapped        int
	Unmapped      int
	MultiMapped   int
	ContigDropped int
	Output        int
}

func (s Stats) Dropped() int {
	return s.Input - s.Output
}

// LoadProjector opens a UCSC chain file (optionally gzipped) and initialises
// the coordinate projector. The source and target builds are parsed from the
// <from>To<to>.over.chain filename; nothing validates that the input data
// actually is the source build, so picking the wrong chain silently produces
// wrong coordinates.
func LoadProjector(chainFile string) (*glo.LiftOver, string, string, error) {
	chunks := strings.Split(strings.Split(filepath.Base(chainFile), ".")[0], "To")
	if len(chunks) != 2 {
		return nil, "", "", fmt.Errorf("expected chain file name format to be oldToNew.over.chain.*, but found: %s", chainFile)
	}

	fromRef := strings.ToLower(chunks[0])
	toRef := strings.ToLower(chunks[1])

	f, err := os.Open(chainFile)
	if err != nil {
		return nil, "", "", err
	}
	defer f.Close()

	var reader io.Reader = f
	if strings.HasSuffix(chainFile, ".gz") {
		gzReader, err := gzip.NewReader(f)
		if err != nil {
			return nil, "", "", err
		}
		defer gzReader.Close()
		reader = gzReader
	}

	liftover := new(glo.LiftOver)
	liftover.Init()
	liftover.Load(fromRef, toRef, bufio.NewReader(reader))

	return liftover, fromRef, toRef, nil
}

func readTSV(path string) (dataframe.DataFrame, error) {
	f, err := os.Open(path)
	if err != nil {
		return dataframe.DataFrame{}, err
	}
	defer f.Close()

	df := dataframe.ReadCSV(f, dataframe.WithDelimiter('\t'))
	if df.Err != nil {
		return df, fmt.Errorf("reading %s: %w", path, df.Err)
	}
	return df, nil
}

func hasColumn(df dataframe.DataFrame, name string) bool {
	for _, col := range df.Names() {
		if col == name {
			return true
		}
	}
	return false
}

// refLength is the interval length used for projection: the length of the
// reference allele, or 1 when the join left it null. This is wrong for
// symbolic indel codes ("I"/"D") and structural alleles, which carry no
// literal sequence; those intervals are lifted as single bases.
func refLength(ref string) int {
	if ref == "" || ref == "NaN" || ref == "-" {
		return 1
	}
	return len(ref)
}

// Run joins the user table to the variant master list, projects every row's
// interval through the chain, filters disallowed target contigs and returns
// the remapped table (header first) with all passenger columns carried
// through. Join misses keep null allele fields; unlike the statistics
// reformatter this join is not required to be exhaustive.
func Run(userPath, masterPath, chainPath string, opts Options) ([][]string, Stats, error) {
	var stats Stats

	userDF, err := readTSV(userPath)
	if err != nil {
		return nil, stats, err
	}
	for _, col := range []string{opts.ChromCol, opts.PosCol} {
		if !hasColumn(userDF, col) {
			return nil, stats, fmt.Errorf("required column %s not found in %s", col, userPath)
		}
	}
	if opts.ChromCol != "CHR" {
		userDF = userDF.Rename("CHR", opts.ChromCol)
	}
	if opts.PosCol != "POS" {
		userDF = userDF.Rename("POS", opts.PosCol)
	}

	masterDF, err := readTSV(masterPath)
	if err != nil {
		return nil, stats, err
	}
	for _, col := range []string{"CHR", "POS", "REF", "ALT"} {
		if !hasColumn(masterDF, col) {
			return nil, stats, fmt.Errorf("required column %s not found in master list %s", col, masterPath)
		}
	}

	merged := userDF.LeftJoin(masterDF, "CHR", "POS")
	if merged.Err != nil {
		return nil, stats, fmt.Errorf("joining %s with %s: %w", userPath, masterPath, merged.Err)
	}

	records := merged.Records()
	header := records[0]
	colIndex := make(map[string]int)
	for i, col := range header {
		colIndex[col] = i
	}
	chrIdx := colIndex["CHR"]
	posIdx := colIndex["POS"]
	refIdx := colIndex["REF"]

	projector, fromRef, toRef, err := LoadProjector(chainPath)
	if err != nil {
		return nil, stats, err
	}
	fmt.Printf("Lifting from %s to %s ...\n", fromRef, toRef)

	// GLO lowercases every chain contig name, so both the query contig and
	// the drop filter have to match it in lowercase.
	drop := make(map[string]struct{})
	for _, contig := range opts.DropContigs {
		drop[strings.ToLower(contig)] = struct{}{}
	}

	out := [][]string{append(append([]string{}, header...), "END")}

	for _, rec := range records[1:] {
		stats.Input++

		chrom, err := utils.ChromToNum(rec[chrIdx])
		if err != nil {
			return nil, stats, fmt.Errorf("%s: %v", userPath, err)
		}
		pos, err := strconv.Atoi(rec[posIdx])
		if err != nil {
			return nil, stats, fmt.Errorf("%s: bad position %q", userPath, rec[posIdx])
		}

		length := refLength(rec[refIdx])
		contig := strings.ToLower("chr" + utils.NumToChrom(chrom))

		results := projector.Lift(fromRef, toRef, glo.NewChainInterval(contig, int64(pos), int64(pos+length)))
		if len(results) == 0 {
			stats.Unmapped++
			continue
		}
		if len(results) > 1 {
			stats.MultiMapped++
		}

		survived := false
		for _, res := range results {
			if _, disallowed := drop[strings.ToLower(res.Contig)]; disallowed {
				stats.ContigDropped++
				continue
			}

			outChrom := res.Contig
			if n, err := utils.ChromToNum(res.Contig); err == nil {
				outChrom = strconv.Itoa(n)
			}

			row := append([]string{}, rec...)
			row[chrIdx] = outChrom
			row[posIdx] = strconv.FormatInt(res.Start, 10)
			row = append(row, strconv.FormatInt(res.Start+int64(length), 10))

			out = append(out, row)
			stats.Output++
			survived = true
		}
		if survived {
			stats.Mapped++
		}
	}

	return out, stats, nil
}

// WriteTable writes the remapped table tab-delimited, header included.
func WriteTable(rows [][]string, path string) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	writer.Comma = '\t'

	if err := writer.WriteAll(rows); err != nil {
		return err
	}
	writer.Flush()
	return writer.Error()
}
