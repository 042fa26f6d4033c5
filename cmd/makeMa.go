/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"log"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gmaffy/cojo-whisperer/panel"
	"github.com/gmaffy/cojo-whisperer/sumstats"
)

// makeMaCmd represents the makeMa command
var makeMaCmd = &cobra.Command{
	Use:   "makeMa -s <raw sumstats tsv> -i <variant index> -o <out.ma> [args]",
	Short: "Reformat raw meta-analysis output into the GCTA-COJO .ma format",
	Long: `makeMa resolves each raw summary-statistics row to the reference panel's
canonical variant ID and re-orients the allele frequency and effect estimate
to the panel's alt allele, emitting the fixed 8-column table (SNP A1 A2 freq
b se p N) that GCTA-COJO requires.

Rows with no (chromosome, position) match in the variant index are dropped:
COJO needs reference-panel LD support for every retained variant and fails
outright on unmatched ones. Dropped-row counts are always reported.

The standard error column is a constant placeholder (--se); the effect column
of METAL z-score output has no per-row SE, and the pipeline accepts this
approximation.`,
	Run: func(cmd *cobra.Command, args []string) {
		rawFile, sErr := cmd.Flags().GetString("sumstats")
		if sErr != nil {
			log.Fatalf("Error getting sumstats flag: %v", sErr)
		}

		indexFile, iErr := cmd.Flags().GetString("index")
		if iErr != nil {
			log.Fatalf("Error getting index flag: %v", iErr)
		}

		out, oErr := cmd.Flags().GetString("out")
		if oErr != nil {
			log.Fatalf("Error getting out flag: %v", oErr)
		}

		panelTag, pErr := cmd.Flags().GetString("panel")
		if pErr != nil {
			log.Fatalf("Error getting panel flag: %v", pErr)
		}

		se, seErr := cmd.Flags().GetFloat64("se")
		if seErr != nil {
			log.Fatalf("Error getting se flag: %v", seErr)
		}

		qcReport, qErr := cmd.Flags().GetString("qc_report")
		if qErr != nil {
			log.Fatalf("Error getting qc_report flag: %v", qErr)
		}

		cols := sumstats.DefaultColumns()
		for flagName, target := range map[string]*string{
			"marker_col": &cols.Marker,
			"a1_col":     &cols.Allele1,
			"a2_col":     &cols.Allele2,
			"freq_col":   &cols.Freq,
			"n_col":      &cols.N,
			"effect_col": &cols.Effect,
			"p_col":      &cols.P,
		} {
			value, err := cmd.Flags().GetString(flagName)
			if err != nil {
				log.Fatalf("Error getting %s flag: %v", flagName, err)
			}
			if value != "" {
				*target = value
			}
		}

		fmt.Printf("Loading variant index %s ...\n\n", indexFile)
		idx, err := panel.LoadIndex(indexFile)
		if err != nil {
			log.Fatalf("Loading index failed: %v", err)
		}

		if panelTag != "" && idx.Panel != "" && panelTag != idx.Panel {
			log.Fatalf("Panel mismatch: index was built from %q but --panel says %q; rebuild the index or fix the tag", idx.Panel, panelTag)
		}

		fmt.Printf("Index holds %d variants (panel %s)\n\n", idx.Len(), idx.Panel)

		records, stats, err := sumstats.Reformat(rawFile, cols, idx, se)
		if err != nil {
			log.Fatalf("Reformatting failed: %v", err)
		}

		fmt.Printf("#Input rows: %d\n", stats.Input)
		fmt.Printf("#Output rows: %d\n", stats.Output)
		fmt.Printf("#Excluded (no panel match): %d\n", stats.NoPanelMatch)
		fmt.Printf("#Excluded (allele mismatch): %d\n", stats.AlleleMismatch)
		fmt.Printf("#Excluded (bad marker): %d\n\n", stats.BadMarker)

		if err := sumstats.WriteMa(records, out); err != nil {
			log.Fatalf("Writing %s failed: %v", out, err)
		}
		fmt.Println("Normalized statistics saved at: ", out)

		if strings.EqualFold(cols.Effect, "Zscore") {
			fmt.Printf("Genomic inflation lambda: %.4f\n", sumstats.LambdaGC(records))
		}

		if qcReport != "" {
			if err := sumstats.WriteQCReport(records, qcReport); err != nil {
				log.Fatalf("Writing QC report failed: %v", err)
			}
			fmt.Println("QC report saved at: ", qcReport)
		}
	},
}

func init() {
	rootCmd.AddCommand(makeMaCmd)

	makeMaCmd.Flags().StringP("sumstats", "s", "", "raw meta-analysis summary statistics (tab-delimited)")
	makeMaCmd.Flags().StringP("index", "i", "", "variant index built by variantIndex")
	makeMaCmd.Flags().StringP("out", "o", "stats.ma", "output .ma file")
	makeMaCmd.Flags().StringP("panel", "p", "", "expected reference panel version tag")
	makeMaCmd.Flags().Float64("se", 1, "constant placeholder standard error")
	makeMaCmd.Flags().String("qc_report", "", "optional HTML QC report path")

	// raw header column names (METAL defaults)
	makeMaCmd.Flags().String("marker_col", "", "marker column name (default MarkerName)")
	makeMaCmd.Flags().String("a1_col", "", "allele1 column name (default Allele1)")
	makeMaCmd.Flags().String("a2_col", "", "allele2 column name (default Allele2)")
	makeMaCmd.Flags().String("freq_col", "", "allele1 frequency column name (default Freq1)")
	makeMaCmd.Flags().String("n_col", "", "sample size column name (default Weight)")
	makeMaCmd.Flags().String("effect_col", "", "effect column name (default Zscore)")
	makeMaCmd.Flags().String("p_col", "", "p-value column name (default P-value)")
}
