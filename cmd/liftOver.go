/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"log"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gmaffy/cojo-whisperer/liftover"
)

// liftOverCmd represents the liftOver command
var liftOverCmd = &cobra.Command{
	Use:   "liftOver -i <results tsv> -m <variant master list> -C <oldToNew.over.chain[.gz]> -o <out.tsv>",
	Short: "Remap a results table to another genome build via a UCSC chain",
	Long: `liftOver joins the input table to a variant master list to recover
reference/alternate alleles, builds one genomic interval per row (end = start
+ length of the reference allele, which is wrong for symbolic indel alleles
and acknowledged as such), projects the intervals through the chain and
reformats the result back into a flat table. Unmapped intervals and results
landing on disallowed contigs (chrY by default) are dropped and counted.

Nothing checks that the input really is the chain's source build; pass
--verify_fasta with the target-build fasta to get an advisory mismatch count.`,
	Run: func(cmd *cobra.Command, args []string) {
		input, iErr := cmd.Flags().GetString("input")
		if iErr != nil {
			log.Fatalf("Error getting input flag: %v", iErr)
		}

		master, mErr := cmd.Flags().GetString("master")
		if mErr != nil {
			log.Fatalf("Error getting master flag: %v", mErr)
		}

		chain, cErr := cmd.Flags().GetString("chain")
		if cErr != nil {
			log.Fatalf("Error getting chain flag: %v", cErr)
		}

		out, oErr := cmd.Flags().GetString("out")
		if oErr != nil {
			log.Fatalf("Error getting out flag: %v", oErr)
		}

		chromCol, ccErr := cmd.Flags().GetString("chrom_col")
		if ccErr != nil {
			log.Fatalf("Error getting chrom_col flag: %v", ccErr)
		}

		posCol, pcErr := cmd.Flags().GetString("pos_col")
		if pcErr != nil {
			log.Fatalf("Error getting pos_col flag: %v", pcErr)
		}

		dropContigs, dErr := cmd.Flags().GetString("drop_contigs")
		if dErr != nil {
			log.Fatalf("Error getting drop_contigs flag: %v", dErr)
		}

		verifyFasta, vErr := cmd.Flags().GetString("verify_fasta")
		if vErr != nil {
			log.Fatalf("Error getting verify_fasta flag: %v", vErr)
		}

		opts := liftover.DefaultOptions()
		if chromCol != "" {
			opts.ChromCol = chromCol
		}
		if posCol != "" {
			opts.PosCol = posCol
		}
		if dropContigs != "" {
			opts.DropContigs = strings.Split(dropContigs, ",")
		}

		rows, stats, err := liftover.Run(input, master, chain, opts)
		if err != nil {
			log.Fatalf("Liftover failed: %v", err)
		}

		if err := liftover.WriteTable(rows, out); err != nil {
			log.Fatalf("Writing %s failed: %v", out, err)
		}

		fmt.Printf("#Input intervals: %d\n", stats.Input)
		fmt.Printf("#Mapped: %d\n", stats.Mapped)
		fmt.Printf("#Unmapped: %d\n", stats.Unmapped)
		fmt.Printf("#Split across contigs: %d\n", stats.MultiMapped)
		fmt.Printf("#Dropped on disallowed contigs: %d\n", stats.ContigDropped)
		fmt.Printf("#Output rows: %d (dropped %d)\n\n", stats.Output, stats.Dropped())
		fmt.Println("Remapped table saved at: ", out)

		if verifyFasta != "" {
			checked, mismatched, err := liftover.VerifyAlleles(verifyFasta, rows)
			if err != nil {
				log.Fatalf("Allele verification failed: %v", err)
			}
			fmt.Printf("Allele check against %s: %d/%d mismatched\n", verifyFasta, mismatched, checked)
			if checked > 0 && mismatched*5 > checked {
				fmt.Println("WARNING: high mismatch rate; the chain may not match the input build")
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(liftOverCmd)

	liftOverCmd.Flags().StringP("input", "i", "", "input results table (tab-delimited)")
	liftOverCmd.Flags().StringP("master", "m", "", "variant master list with CHR POS REF ALT")
	liftOverCmd.Flags().StringP("chain", "C", "", "UCSC chain file named oldToNew.over.chain[.gz]")
	liftOverCmd.Flags().StringP("out", "o", "lifted.tsv", "output table")
	liftOverCmd.Flags().String("chrom_col", "", "chromosome column in the input (default CHR)")
	liftOverCmd.Flags().String("pos_col", "", "position column in the input (default POS)")
	liftOverCmd.Flags().String("drop_contigs", "", "comma-separated disallowed target contigs (default chrY)")
	liftOverCmd.Flags().String("verify_fasta", "", "target-build fasta for an advisory allele check")
}
