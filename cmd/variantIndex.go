/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/gmaffy/cojo-whisperer/panel"
)

// variantIndexCmd represents the variantIndex command
var variantIndexCmd = &cobra.Command{
	Use:   "variantIndex -b <dir with per-chromosome .bim files> -o <index.tsv> [args]",
	Short: "Build the (chromosome, position) -> variant ID lookup table",
	Long: `variantIndex scans every per-chromosome .bim metadata file of a reference
genotype panel and builds one concatenated lookup table mapping (chromosome,
position) to the panel's canonical chr:pos:ref:alt variant ID.

The index is expensive to build and is persisted once per panel version; tag
it with --panel so makeMa can refuse statistics built against a different
panel. Rebuilding the index after the panel changes invalidates every .ma
file derived from the old one.`,
	Run: func(cmd *cobra.Command, args []string) {
		bimDir, bErr := cmd.Flags().GetString("bim_dir")
		if bErr != nil {
			log.Fatalf("Error getting bim_dir flag: %v", bErr)
		}

		out, oErr := cmd.Flags().GetString("out")
		if oErr != nil {
			log.Fatalf("Error getting out flag: %v", oErr)
		}

		panelTag, pErr := cmd.Flags().GetString("panel")
		if pErr != nil {
			log.Fatalf("Error getting panel flag: %v", pErr)
		}

		dirInfo, dErr := os.Stat(bimDir)
		if dErr != nil || !dirInfo.IsDir() {
			log.Fatalf("bim_dir %s is not a valid directory: %v", bimDir, dErr)
		}

		fmt.Printf("Building variant index from %s ...\n\n", bimDir)
		idx, err := panel.BuildIndex(bimDir, panelTag)
		if err != nil {
			log.Fatalf("Building index failed: %v", err)
		}

		if err := panel.WriteIndex(idx, out); err != nil {
			log.Fatalf("Writing index failed: %v", err)
		}
		fmt.Println("Variant index saved at: ", out)
	},
}

func init() {
	rootCmd.AddCommand(variantIndexCmd)

	// Cobra supports local flags which will only run when this command
	// is called directly, e.g.:
	variantIndexCmd.Flags().StringP("bim_dir", "b", "", "directory containing per-chromosome .bim files")
	variantIndexCmd.Flags().StringP("out", "o", "variant_index.tsv", "output index file")
	variantIndexCmd.Flags().StringP("panel", "p", "", "reference panel version tag recorded in the index")
}
