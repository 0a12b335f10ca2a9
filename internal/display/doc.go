// Package display provides terminal output formatting for status lines, section banners, and warnings.
//
// This package centralizes all terminal output formatting, color handling, and user-facing display logic
// for the repricer CLI. It provides three main categories of functionality:
//
// # Status Lines
//
// A Printer writes glyph-prefixed status lines to a single destination:
//
//	printer := display.NewPrinter(os.Stdout)
//	printer.Infof("Pricable tiers: %s", strings.Join(tiers, ", "))
//	printer.Successf("Updated %s successfully!", filename)
//	printer.Errorf("Failed to process %s: %v", filename, err)
//	printer.Warnf("No files selected for processing.")
//
// # Section Banners
//
// Use Header for top-level sections and Subheader for per-file sections:
//
//	printer.Header("PRICE UPDATE PROCESS")
//	for i, file := range files {
//	    printer.Subheader(fmt.Sprintf("Processing %s (%d/%d)", file, i+1, len(files)))
//	    // ... process file ...
//	}
//
// Before/after price lines use Changef, which renders both amounts as currency:
//
//	printer.Changef(oldPrice, newPrice, tier)
//
// # Warning Blocks
//
// Display multi-line warnings with optional components:
//
//	warning := display.Warning{
//	    Title:      "Some requested files were skipped",
//	    Files:      []string{"missing.json"},
//	    Suggestion: "Check the paths or run with --list to see discovered files.",
//	}
//	warning.Display(os.Stdout)
//
// # Colors
//
// Printer colors each status line by severity: green for success, red for
// errors, yellow for warnings, cyan for informational lines, bold for header
// text. Colors are disabled when the destination is not a terminal, so tests
// and piped output see plain text. Warning blocks always use yellow.
//
// All output goes through io.Writer for testability.
package display
