// Package fileutil provides directory scanning and tree copying shared by the
// archive expander, the pattern scanner and the export command.
//
// # Main Components
//
// ScanDirectory - walks a directory with ScanOptions:
//   - Extensions: case-insensitive extension filter (".log" matches "APP.LOG")
//   - Match: predicate on the base name (used to find archives by suffix)
//   - Exclude: doublestar globs relative to the root ("**/rotated/**")
//   - ExcludeDirs, IncludeHidden, RegularOnly, Recursive, MaxDepth
//
// ScanResult - absolute paths sorted alphabetically plus the non-fatal errors
// collected while walking. Callers that need all-or-nothing semantics turn
// those errors into a failure with ScanResult.Err.
//
// CopyTree - copies a file or directory into a destination directory, merging
// with existing content.
//
// # Usage Examples
//
// Log discovery for the scanner:
//
//	result, err := fileutil.ScanDirectory(root, fileutil.ScanOptions{
//	    Extensions:    []string{".log"},
//	    Recursive:     true,
//	    IncludeHidden: true,
//	    Exclude:       []string{"**/old/**"},
//	})
//
// Archive discovery for the expander:
//
//	result, err := fileutil.ScanDirectory(dir, fileutil.ScanOptions{
//	    Match:         archive.IsArchive,
//	    Recursive:     true,
//	    IncludeHidden: true,
//	    RegularOnly:   true,
//	})
//
// # Determinism
//
// Output is sorted so that repeated scans of the same tree visit files in the
// same order; the scanner relies on this for its last-writer-wins naming rule.
package fileutil
