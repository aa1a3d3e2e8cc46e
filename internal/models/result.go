package models

import "time"

// ExpandResult represents the result of expanding one top-level archive
type ExpandResult struct {
	Archive          string        // Archive that was expanded
	DestDir          string        // Clean destination tree
	ArchivesExpanded int           // Top-level archive plus every nested archive
	FilesWritten     int           // Regular files left in DestDir; nested archives are not counted
	Duration         time.Duration // Time taken to expand
}

// FileResult represents the result of filtering a single log file
type FileResult struct {
	Input        string `yaml:"input"`               // Scanned log file
	Output       string `yaml:"output"`              // Filtered copy in the output directory
	LinesScanned int    `yaml:"lines_scanned"`       // Lines read from Input
	LinesMatched int    `yaml:"lines_matched"`       // Lines written to Output
	FirstHit     string `yaml:"first_hit,omitempty"` // Lower-cased keyword found on the first matching line
}

// ScanResult represents the aggregate result of scanning a directory tree
type ScanResult struct {
	RootDir   string        // Directory that was walked
	OutputDir string        // Directory holding the filtered copies
	Patterns  []string      // Patterns in insertion order, original case
	Files     []FileResult  // One entry per scanned log, in walk order
	Duration  time.Duration // Time taken to scan

	// Collisions maps an output file to the inputs that all wrote to it.
	// Only the last input in each list survives on disk.
	Collisions map[string][]string
}

// TotalMatched returns the number of matching lines across all files.
func (r *ScanResult) TotalMatched() int {
	total := 0
	for _, f := range r.Files {
		total += f.LinesMatched
	}
	return total
}

// TotalScanned returns the number of lines read across all files.
func (r *ScanResult) TotalScanned() int {
	total := 0
	for _, f := range r.Files {
		total += f.LinesScanned
	}
	return total
}
