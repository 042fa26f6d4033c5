package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gmaffy/cojo-whisperer/jobs"
)

func main() {
	fmt.Println("Building a scratch job table ...")
	dir := filepath.Join(os.TempDir(), "cojo-whisperer-scratch")
	err := os.MkdirAll(dir, 0755)
	if err != nil {
		return
	}
	os.WriteFile(filepath.Join(dir, "demo.ma"), []byte("SNP\tA1\tA2\tfreq\tb\tse\tp\tN\n"), 0644)
	os.WriteFile(filepath.Join(dir, "chr1_1000.snplist"), []byte("1:1000:G:A\n"), 0644)

	rows, err := jobs.BuildTable(dir)
	if err != nil {
		fmt.Println("BuildTable error:", err)
		return
	}
	for _, row := range rows {
		fmt.Printf("%d %s %s %s\n", row.Chrom, row.StatsFile, row.SnplistFile, row.OutPrefix)
	}
	fmt.Println("Done")

}
