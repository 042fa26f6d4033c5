package utils

import (
	"bufio"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
)

type Config struct {
	Bfile      string
	MaFile     string
	SnplistDir string
	JobTable   string
	OutputDir  string
	Panel      string
	Chain      string
	MasterList string
	Gcta       string
	Maf        string
	Threads    string
}

func ReadConfig(configPath string) (Config, error) {
	configFile, err := os.Open(configPath)
	if err != nil {
		return Config{}, err
	}
	defer configFile.Close()
	var cfg Config

	scanner := bufio.NewScanner(configFile)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if line == "" {
			continue
		}

		parts := strings.SplitN(line, ":", 2)
		if len(parts) != 2 {
			continue
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		switch key {
		case "bfile":
			cfg.Bfile = value
		case "ma":
			cfg.MaFile = value
		case "SnplistDir":
			cfg.SnplistDir = value
		case "JobTable":
			cfg.JobTable = value
		case "OutputDir":
			cfg.OutputDir = value
		case "Panel":
			cfg.Panel = value
		case "chain":
			cfg.Chain = value
		case "MasterList":
			cfg.MasterList = value
		case "gcta":
			cfg.Gcta = value
		case "maf":
			cfg.Maf = value
		case "threads":
			cfg.Threads = value
		}
	}

	if err := scanner.Err(); err != nil {
		return cfg, err
	}

	return cfg, nil

}

func RunBashCmdVerbose(cmdStr string) error {
	cmd := exec.Command("bash", "-c", cmdStr)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	err := cmd.Run()
	if err != nil {
		return err
	}
	return nil
}

// CheckDeps verifies that the external association tool is on PATH.
func CheckDeps(gcta string) error {
	if gcta == "" {
		gcta = "gcta64"
	}
	if _, err := exec.LookPath(gcta); err != nil {
		return fmt.Errorf("%s not found on PATH: %w", gcta, err)
	}
	return nil
}

// ChromToNum converts a chromosome name to its numeric code. The sex
// chromosome X is encoded as 23 to match the reference panel convention.
// A "chr" prefix is tolerated.
func ChromToNum(chrom string) (int, error) {
	c := strings.TrimPrefix(strings.TrimPrefix(chrom, "chr"), "Chr")
	if strings.EqualFold(c, "X") {
		return 23, nil
	}
	n, err := strconv.Atoi(c)
	if err != nil {
		return 0, fmt.Errorf("unrecognised chromosome %q", chrom)
	}
	if n < 1 || n > 23 {
		return 0, fmt.Errorf("chromosome %q out of range", chrom)
	}
	return n, nil
}

// NumToChrom is the inverse of ChromToNum: 23 becomes X, everything else
// is printed as-is.
func NumToChrom(n int) string {
	if n == 23 {
		return "X"
	}
	return strconv.Itoa(n)
}
