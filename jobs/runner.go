package jobs

import (
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/gmaffy/cojo-whisperer/utils"
)

// CojoCommand builds the association-tool invocation for one job row. The
// bfile pattern's {chr} placeholder selects the per-chromosome genotype
// triplet.
func CojoCommand(row JobRow, gcta, bfilePattern, maf string) string {
	bfile := strings.ReplaceAll(bfilePattern, "{chr}", fmt.Sprintf("%d", row.Chrom))
	return fmt.Sprintf("%s --bfile %s --chr %d --maf %s --cojo-file %s --cojo-cond %s --out %s",
		gcta, bfile, row.Chrom, maf, row.StatsFile, row.SnplistFile, row.OutPrefix)
}

// RunLocal executes every job row under a local process pool of the given
// width, one association-tool process per row. Rows are fully independent:
// a failing chromosome is logged and counted but never stops its siblings,
// mirroring how a cluster job array treats its tasks. Progress is written to
// a JSON run log next to the outputs, and rows already COMPLETED in that log
// are skipped on rerun.
func RunLocal(rows []JobRow, gcta, bfilePattern, maf string, threads int, logFilePath string) error {
	if threads < 1 {
		threads = 1
	}

	logFile, err := os.OpenFile(logFilePath, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	if err != nil {
		log.Fatalf("Failed to open log file: %v", err)
	}
	defer logFile.Close()

	logger := slog.New(slog.NewJSONHandler(logFile, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	previous := utils.ParseLogFile(logFilePath)

	var mu sync.Mutex
	var failed []JobRow

	var g errgroup.Group
	g.SetLimit(threads)

	for _, row := range rows {
		row := row
		g.Go(func() error {
			chrom := fmt.Sprintf("%d", row.Chrom)
			if utils.StageHasCompleted(previous, "gcta-cojo", chrom) {
				logger.Info("COJO RUN", "PROGRAM", "gcta-cojo", "CHROMOSOME", chrom, "STATUS", "SKIPPED")
				fmt.Printf("Chromosome %s already completed, skipping ...\n", chrom)
				return nil
			}

			cmdStr := CojoCommand(row, gcta, bfilePattern, maf)
			fmt.Println(cmdStr)
			logger.Info("COJO RUN", "PROGRAM", "gcta-cojo", "CHROMOSOME", chrom, "STATUS", "STARTED", "CMD", cmdStr)

			if err := utils.RunBashCmdVerbose(cmdStr); err != nil {
				logger.Error("COJO RUN", "PROGRAM", "gcta-cojo", "CHROMOSOME", chrom, "STATUS", "FAILED", "CMD", cmdStr)
				mu.Lock()
				failed = append(failed, row)
				mu.Unlock()
				return nil
			}

			logger.Info("COJO RUN", "PROGRAM", "gcta-cojo", "CHROMOSOME", chrom, "STATUS", "COMPLETED", "CMD", cmdStr)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	if len(failed) > 0 {
		var chroms []string
		for _, row := range failed {
			chroms = append(chroms, fmt.Sprintf("%d", row.Chrom))
		}
		return fmt.Errorf("%d of %d jobs failed (chromosomes %s); see %s", len(failed), len(rows), strings.Join(chroms, ", "), logFilePath)
	}

	fmt.Printf("All %d jobs completed\n", len(rows))
	return nil
}

// WriteArrayScript emits a SLURM job-array wrapper for the job table: each
// array task picks its row by line number from $SLURM_ARRAY_TASK_ID and runs
// one association-tool process. Per-task exit codes are the only failure
// signal, as the scheduler expects.
func WriteArrayScript(tablePath string, nRows int, gcta, bfilePattern, maf, scriptPath string) error {
	bfile := strings.ReplaceAll(bfilePattern, "{chr}", "${CHR}")

	var b strings.Builder
	b.WriteString("#!/bin/bash\n")
	fmt.Fprintf(&b, "#SBATCH --array=1-%d\n", nRows)
	b.WriteString("#SBATCH --cpus-per-task=1\n\n")
	fmt.Fprintf(&b, "ROW=$(awk -v n=\"$SLURM_ARRAY_TASK_ID\" 'NR==n' %s)\n", tablePath)
	b.WriteString("set -- $ROW\n")
	b.WriteString("CHR=$1\nMA=$2\nSNPLIST=$3\nOUT=$4\n\n")
	fmt.Fprintf(&b, "%s --bfile %s --chr ${CHR} --maf %s --cojo-file ${MA} --cojo-cond ${SNPLIST} --out ${OUT}\n", gcta, bfile, maf)

	return os.WriteFile(scriptPath, []byte(b.String()), 0755)
}
