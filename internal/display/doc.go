// Package display provides terminal output for the CLI: stage progress,
// warnings and result tables.
//
// # Progress Indicators
//
// Use ProgressIndicator for multi-stage commands such as run:
//
//	progress := display.NewProgressIndicator(os.Stdout, 2)
//	progress.Start("Extract and scan")
//	progress.Step("Extracting logs.tar.gz")
//	progress.Step("Scanning logs")
//	progress.Complete("3 files, 12 matching lines")
//
// # Warning Messages
//
// Display warnings with optional components:
//
//	warning := display.Warning{
//	    Title:      "Output name collision",
//	    Message:    "Several logs share the name app.log",
//	    Files:      []string{"a/app.log", "b/app.log"},
//	    Suggestion: "Rename the inputs or scan the directories separately",
//	}
//	warning.Display(os.Stderr)
//
// WarnCollisions builds one such warning per colliding output file.
//
// # ANSI Colors
//
// Colors are emitted only when the writer is a terminal (mattn/go-isatty)
// and NO_COLOR is unset:
//   - Cyan (\x1b[36m) for progress steps
//   - Green (\x1b[32m) for success messages
//   - Yellow (\x1b[33m) for warnings
//
// All functions accept io.Writer interfaces for testability.
package display
