/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "cojo-whisperer",
	Short: "Prepare GWAS summary statistics and reference panels for GCTA-COJO",
	Long: `A toolkit for preparing conditional/joint association (COJO) inputs:
1.	variantIndex: build a (chromosome, position) -> variant ID lookup from a reference panel
2.	makeMa: reformat raw meta-analysis output into the .ma format GCTA-COJO expects
3.	makeSnplist: turn a top-hits table into per-locus conditioning SNP lists
4.	jobTable: generate the per-chromosome job-array control table
5.	runCojo: run the COJO jobs under a local process pool, or emit a SLURM array script
6.	liftOver: remap a results table to another genome build via a UCSC chain file

Association testing, LD estimation and chain projection are delegated to
gcta64, PLINK and the chain library; this tool only prepares their inputs.
`,
	// Uncomment the following line if your bare application
	// has an action associated with it:
	// Run: func(cmd *cobra.Command, args []string) { },
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

var cfgFile string

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "path to config file ")
	// Here you will define your flags and configuration settings.
	// Cobra supports persistent flags, which, if defined here,
	// will be global for your application.
}
