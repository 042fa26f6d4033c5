/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"log"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/gmaffy/cojo-whisperer/jobs"
	"github.com/gmaffy/cojo-whisperer/utils"
)

// runCojoCmd represents the runCojo command
var runCojoCmd = &cobra.Command{
	Use:   "runCojo -j <job table> -b <bfile pattern with {chr}> [args]",
	Short: "Run the COJO job table locally, or emit a SLURM array script",
	Long: `runCojo executes one gcta64 --cojo-cond process per job-table row. Rows are
independent per-chromosome tasks sharing no state: under --sbatch a SLURM
job-array script is written instead of running anything, and the scheduler's
per-task exit codes are the only failure signal. Without --sbatch the rows
run under a local process pool; a failing chromosome is logged and reported
at the end without stopping its siblings, and rerunning skips chromosomes
already completed according to the JSON run log.

Flags may also come from a config file (--config) with the config keys
bfile, JobTable, gcta, maf and threads.`,
	Run: func(cmd *cobra.Command, args []string) {
		table, jErr := cmd.Flags().GetString("jobs")
		if jErr != nil {
			log.Fatalf("Error getting jobs flag: %v", jErr)
		}

		bfile, bErr := cmd.Flags().GetString("bfile")
		if bErr != nil {
			log.Fatalf("Error getting bfile flag: %v", bErr)
		}

		gcta, gErr := cmd.Flags().GetString("gcta")
		if gErr != nil {
			log.Fatalf("Error getting gcta flag: %v", gErr)
		}

		maf, mErr := cmd.Flags().GetString("maf")
		if mErr != nil {
			log.Fatalf("Error getting maf flag: %v", mErr)
		}

		threads, tErr := cmd.Flags().GetInt("threads")
		if tErr != nil {
			log.Fatalf("Error getting threads flag: %v", tErr)
		}

		sbatch, sErr := cmd.Flags().GetString("sbatch")
		if sErr != nil {
			log.Fatalf("Error getting sbatch flag: %v", sErr)
		}

		configFile, cErr := cmd.Flags().GetString("config")
		if cErr != nil {
			log.Fatalf("Error getting config flag: %v", cErr)
		}

		if configFile != "" {
			fmt.Println("Reading config file ...")
			cfg, err := utils.ReadConfig(configFile)
			if err != nil {
				log.Fatalf("Error reading config file: %v", err)
			}
			if table == "" {
				table = cfg.JobTable
			}
			if bfile == "" {
				bfile = cfg.Bfile
			}
			if cfg.Gcta != "" {
				gcta = cfg.Gcta
			}
			if cfg.Maf != "" {
				maf = cfg.Maf
			}
			if cfg.Threads != "" {
				t, err := strconv.Atoi(cfg.Threads)
				if err != nil {
					log.Fatalf("Bad threads value in config: %v", err)
				}
				threads = t
			}
		}

		if table == "" {
			log.Fatal("Please provide a job table (--jobs or JobTable in the config)")
		}
		if bfile == "" {
			log.Fatal("Please provide a per-chromosome bfile pattern containing {chr}")
		}

		rows, err := jobs.ReadTable(table)
		if err != nil {
			log.Fatalf("Reading job table failed: %v", err)
		}
		fmt.Printf("Job table holds %d rows\n\n", len(rows))

		if sbatch != "" {
			if err := jobs.WriteArrayScript(table, len(rows), gcta, bfile, maf, sbatch); err != nil {
				log.Fatalf("Writing array script failed: %v", err)
			}
			fmt.Println("Array script saved at: ", sbatch)
			fmt.Printf("Submit with: sbatch %s\n", sbatch)
			return
		}

		fmt.Printf("Checking dependencies ...\n\n")
		if err := utils.CheckDeps(gcta); err != nil {
			log.Fatalf("Dependency check failed: %v", err)
		}
		fmt.Printf("Dependencies OK\n\n")

		logFilePath := filepath.Join(filepath.Dir(table), "cojo_run.log")
		if err := jobs.RunLocal(rows, gcta, bfile, maf, threads, logFilePath); err != nil {
			log.Fatalf("COJO run failed: %v", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(runCojoCmd)

	runCojoCmd.Flags().StringP("jobs", "j", "", "job table written by jobTable")
	runCojoCmd.Flags().StringP("bfile", "b", "", "per-chromosome PLINK prefix pattern, e.g. /panel/chr{chr}_filtered")
	runCojoCmd.Flags().String("gcta", "gcta64", "gcta binary")
	runCojoCmd.Flags().String("maf", "0.01", "minor allele frequency cutoff passed to gcta")
	runCojoCmd.Flags().Int("threads", 4, "local pool width (one gcta process per job)")
	runCojoCmd.Flags().String("sbatch", "", "write a SLURM job-array script here instead of running")
}
