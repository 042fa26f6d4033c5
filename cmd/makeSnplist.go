/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/gmaffy/cojo-whisperer/jobs"
)

// makeSnplistCmd represents the makeSnplist command
var makeSnplistCmd = &cobra.Command{
	Use:   "makeSnplist -t <top hits tsv> -o <output dir>",
	Short: "Turn a top-hits table into per-locus conditioning SNP lists",
	Long: `makeSnplist writes one chr<CHR>_<POS>.snplist file per top-hit row, each
containing the single conditioning variant ID chr:pos:ref:alt. The IDs must
string-match the variant IDs used in the .ma file and the reference panel.`,
	Run: func(cmd *cobra.Command, args []string) {
		hitsFile, tErr := cmd.Flags().GetString("hits")
		if tErr != nil {
			log.Fatalf("Error getting hits flag: %v", tErr)
		}

		outDir, oErr := cmd.Flags().GetString("out_dir")
		if oErr != nil {
			log.Fatalf("Error getting out_dir flag: %v", oErr)
		}

		cols := jobs.DefaultHitsColumns()
		for flagName, target := range map[string]*string{
			"chrom_col": &cols.Chrom,
			"pos_col":   &cols.Pos,
			"ref_col":   &cols.Ref,
			"alt_col":   &cols.Alt,
		} {
			value, err := cmd.Flags().GetString(flagName)
			if err != nil {
				log.Fatalf("Error getting %s flag: %v", flagName, err)
			}
			if value != "" {
				*target = value
			}
		}

		if err := os.MkdirAll(outDir, 0755); err != nil {
			log.Fatalf("Error creating output directory: %v", err)
		}

		written, err := jobs.MakeSnplists(hitsFile, cols, outDir)
		if err != nil {
			log.Fatalf("Making snplists failed: %v", err)
		}

		fmt.Printf("Wrote %d conditioning lists to %s\n", len(written), outDir)
	},
}

func init() {
	rootCmd.AddCommand(makeSnplistCmd)

	makeSnplistCmd.Flags().StringP("hits", "t", "", "top-hits table (tab-delimited)")
	makeSnplistCmd.Flags().StringP("out_dir", "o", ".", "directory for .snplist files")
	makeSnplistCmd.Flags().String("chrom_col", "", "chromosome column name (default CHR)")
	makeSnplistCmd.Flags().String("pos_col", "", "position column name (default POS)")
	makeSnplistCmd.Flags().String("ref_col", "", "reference allele column name (default REF)")
	makeSnplistCmd.Flags().String("alt_col", "", "alternate allele column name (default ALT)")
}
