package panel

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/exp/maps"

	"github.com/gmaffy/cojo-whisperer/utils"
)

// Variant is one row of a reference panel's per-chromosome metadata.
type Variant struct {
	Chrom int
	Pos   int
	ID    string
}

type Key struct {
	Chrom int
	Pos   int
}

// Index maps (chromosome, position) to the panel's canonical variant ID.
// It is an immutable snapshot tied to one reference panel version; rebuild it
// whenever the panel changes and regenerate every .ma file that used it.
type Index struct {
	Panel      string
	Duplicates int

	variants map[Key]string
}

// NewIndex returns an empty index for the given panel version tag.
func NewIndex(panelTag string) *Index {
	return &Index{Panel: panelTag, variants: make(map[Key]string)}
}

// Add records id at (chromosome, position). A duplicate key keeps the first
// entry and bumps the duplicate counter.
func (idx *Index) Add(chrom, pos int, id string) {
	k := Key{Chrom: chrom, Pos: pos}
	if _, seen := idx.variants[k]; seen {
		idx.Duplicates++
		return
	}
	idx.variants[k] = id
}

// Lookup resolves a (chromosome, position) pair to its canonical variant ID.
func (idx *Index) Lookup(chrom, pos int) (string, bool) {
	id, ok := idx.variants[Key{Chrom: chrom, Pos: pos}]
	return id, ok
}

func (idx *Index) Len() int {
	return len(idx.variants)
}

// ReadBIM parses a PLINK .bim metadata file (CHR ID CM POS A1 A2, whitespace
// delimited, no header). The genotype triplet's .bed/.fam companions are not
// touched. Any malformed line fails with the file and line number, so a
// truncated or reordered file can never produce a silently incomplete index.
func ReadBIM(path string) ([]Variant, error) {
	inFile, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer inFile.Close()

	var variants []Variant
	var lineno int

	scanner := bufio.NewScanner(inFile)
	for scanner.Scan() {
		lineno++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) != 6 {
			return nil, fmt.Errorf("%s:%d: expected 6 columns (CHR ID CM POS A1 A2), got %d", path, lineno, len(fields))
		}

		chrom, err := utils.ChromToNum(fields[0])
		if err != nil {
			return nil, fmt.Errorf("%s:%d: %v", path, lineno, err)
		}

		pos, err := strconv.Atoi(fields[3])
		if err != nil {
			return nil, fmt.Errorf("%s:%d: bad position %q", path, lineno, fields[3])
		}

		variants = append(variants, Variant{Chrom: chrom, Pos: pos, ID: fields[1]})
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	return variants, nil
}

// BuildIndex scans every .bim file under bimDir and builds one lookup table
// keyed by (chromosome, position). Duplicate keys keep the first variant seen
// and are counted on the returned index. panelTag names the reference panel
// version the index was built from.
func BuildIndex(bimDir string, panelTag string) (*Index, error) {
	bims, err := filepath.Glob(filepath.Join(bimDir, "*.bim"))
	if err != nil {
		return nil, err
	}
	if len(bims) == 0 {
		return nil, fmt.Errorf("no .bim files found in %s", bimDir)
	}
	sort.Strings(bims)

	idx := NewIndex(panelTag)
	for _, bim := range bims {
		fmt.Printf("Reading %s ...\n", bim)
		variants, err := ReadBIM(bim)
		if err != nil {
			return nil, err
		}
		for _, v := range variants {
			idx.Add(v.Chrom, v.Pos, v.ID)
		}
	}

	fmt.Printf("Indexed %d variants from %d files (%d duplicate positions skipped)\n", idx.Len(), len(bims), idx.Duplicates)
	return idx, nil
}

// WriteIndex persists the index as a tab-delimited table. The panel version
// tag is recorded on a leading #panel= line so downstream stages can refuse
// inputs built against a different panel.
func WriteIndex(idx *Index, path string) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	if idx.Panel != "" {
		if _, err := fmt.Fprintf(file, "#panel=%s\n", idx.Panel); err != nil {
			return err
		}
	}

	writer := csv.NewWriter(file)
	writer.Comma = '\t'

	if err := writer.Write([]string{"CHR", "POS", "SNP"}); err != nil {
		return err
	}

	keys := maps.Keys(idx.variants)
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Chrom != keys[j].Chrom {
			return keys[i].Chrom < keys[j].Chrom
		}
		return keys[i].Pos < keys[j].Pos
	})

	for _, k := range keys {
		row := []string{strconv.Itoa(k.Chrom), strconv.Itoa(k.Pos), idx.variants[k]}
		if err := writer.Write(row); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

// LoadIndex reads an index previously written by WriteIndex.
func LoadIndex(path string) (*Index, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	idx := &Index{variants: make(map[Key]string)}

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 1024*1024), 1024*1024)

	var lineno int
	headerSeen := false
	for scanner.Scan() {
		lineno++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "#panel=") {
			idx.Panel = strings.TrimPrefix(line, "#panel=")
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) != 3 {
			return nil, fmt.Errorf("%s:%d: expected 3 columns (CHR POS SNP), got %d", path, lineno, len(fields))
		}
		if !headerSeen {
			if fields[0] != "CHR" || fields[1] != "POS" || fields[2] != "SNP" {
				return nil, fmt.Errorf("%s: expected header CHR POS SNP, got %v", path, fields)
			}
			headerSeen = true
			continue
		}
		chrom, err := strconv.Atoi(fields[0])
		if err != nil {
			return nil, fmt.Errorf("%s:%d: bad chromosome %q", path, lineno, fields[0])
		}
		pos, err := strconv.Atoi(fields[1])
		if err != nil {
			return nil, fmt.Errorf("%s:%d: bad position %q", path, lineno, fields[1])
		}
		idx.variants[Key{Chrom: chrom, Pos: pos}] = fields[2]
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if !headerSeen {
		return nil, fmt.Errorf("%s: empty index file", path)
	}

	return idx, nil
}
