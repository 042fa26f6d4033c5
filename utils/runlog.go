package utils

import (
	"bufio"
	"encoding/json"
	"log"
	"os"
)

// LogEntry is one line of the JSON run log written by the runCojo stage.
type LogEntry struct {
	Timestamp  string `json:"time"`
	Tool       string `json:"msg"`
	Program    string `json:"PROGRAM"`
	Chromosome string `json:"CHROMOSOME"`
	Status     string `json:"STATUS"`
	Cmd        string `json:"CMD"`
}

// ParseLogFile reads a slog JSON log file and returns its entries. A missing
// file is treated as an empty log so a fresh run starts cleanly.
func ParseLogFile(logFilePath string) []LogEntry {
	file, err := os.Open(logFilePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		log.Fatalf("Failed to read log file: %v", err)
	}
	defer file.Close()

	var entries []LogEntry
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := scanner.Text()
		var entry LogEntry
		if err := json.Unmarshal([]byte(line), &entry); err == nil {
			entries = append(entries, entry)
		}
	}

	if err := scanner.Err(); err != nil {
		log.Fatalf("Error scanning log file: %v", err)
	}

	return entries
}

// StageHasCompleted reports whether the given program has a COMPLETED entry
// for the given chromosome in the run log.
func StageHasCompleted(entries []LogEntry, program string, chromosome string) bool {
	for _, entry := range entries {
		if entry.Program == program && entry.Chromosome == chromosome && entry.Status == "COMPLETED" {
			return true
		}
	}
	return false
}
