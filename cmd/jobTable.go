/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/gmaffy/cojo-whisperer/jobs"
)

// jobTableCmd represents the jobTable command
var jobTableCmd = &cobra.Command{
	Use:   "jobTable -d <dir with one .ma and chr<N>_<pos>.snplist files> [args]",
	Short: "Generate the per-chromosome job-array control table",
	Long: `jobTable emits one whitespace-delimited row per conditioning-SNP list:
chromosome, statistics file, snplist file, output prefix. The scheduler's
array tasks address rows by line number, so rows are ordered
lexicographically by list filename to keep task numbers reproducible.

The directory must contain exactly one .ma file; two statistics files are
ambiguous and refuse to run rather than silently picking one.`,
	Run: func(cmd *cobra.Command, args []string) {
		dir, dErr := cmd.Flags().GetString("dir")
		if dErr != nil {
			log.Fatalf("Error getting dir flag: %v", dErr)
		}

		out, oErr := cmd.Flags().GetString("out")
		if oErr != nil {
			log.Fatalf("Error getting out flag: %v", oErr)
		}

		dirInfo, err := os.Stat(dir)
		if err != nil || !dirInfo.IsDir() {
			log.Fatalf("dir %s is not a valid directory: %v", dir, err)
		}

		if out == "" {
			out = filepath.Join(dir, "cojo_jobs.txt")
		}

		rows, err := jobs.BuildTable(dir)
		if err != nil {
			log.Fatalf("Building job table failed: %v", err)
		}

		if err := jobs.WriteTable(rows, out); err != nil {
			log.Fatalf("Writing job table failed: %v", err)
		}

		fmt.Printf("Wrote %d job rows\n", len(rows))
		fmt.Println("Job table saved at: ", out)
	},
}

func init() {
	rootCmd.AddCommand(jobTableCmd)

	jobTableCmd.Flags().StringP("dir", "d", ".", "directory holding the .ma file and the .snplist files")
	jobTableCmd.Flags().StringP("out", "o", "", "output job table (default <dir>/cojo_jobs.txt)")
}
