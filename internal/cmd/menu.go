package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/harrison/repricer/internal/display"
)

// MenuReader defines interface for reading user input (for testing)
type MenuReader interface {
	ReadString(delim byte) (string, error)
}

// DefaultMenuReader wraps bufio.Reader
type DefaultMenuReader struct {
	reader *bufio.Reader
}

func (d *DefaultMenuReader) ReadString(delim byte) (string, error) {
	return d.reader.ReadString(delim)
}

// invalidNumberError marks a menu number outside the listed range.
type invalidNumberError struct {
	number int
}

func (e *invalidNumberError) Error() string {
	return fmt.Sprintf("invalid file number: %d", e.number)
}

// PromptFileSelection shows the interactive file selection menu
// Returns the chosen files, empty when the user backs out
func PromptFileSelection(p *display.Printer, out io.Writer, files []string, reader MenuReader) ([]string, error) {
	p.Header("FILE SELECTION")
	p.Infof("Found %d matching files:", len(files))

	for i, file := range files {
		fmt.Fprintf(out, "  %2d. %s\n", i+1, file)
	}

	fmt.Fprintln(out, "\n📋 Select files to process:")
	fmt.Fprintln(out, "  • Enter file numbers separated by commas (e.g., 1,3,5)")
	fmt.Fprintln(out, "  • Enter 'all' to process all files")
	fmt.Fprintln(out, "  • Enter 'none' or 'quit' to exit")

	for {
		fmt.Fprint(out, "\nYour selection: ")

		input, err := reader.ReadString('\n')
		if err != nil {
			return nil, fmt.Errorf("failed to read input: %w", err)
		}
		input = strings.TrimSpace(strings.ToLower(input))

		switch input {
		case "none", "quit", "exit":
			return nil, nil
		case "all":
			return files, nil
		}

		indices, err := parseSelection(input, len(files))
		if err != nil {
			var badNumber *invalidNumberError
			if errors.As(err, &badNumber) {
				p.Errorf("Invalid file number: %d", badNumber.number)
			} else {
				p.Errorf("Invalid input. Please enter numbers separated by commas, 'all', or 'none'.")
			}
			continue
		}

		selected := make([]string, 0, len(indices))
		for _, idx := range indices {
			selected = append(selected, files[idx])
		}
		return selected, nil
	}
}

// parseSelection parses comma-separated menu numbers into zero-based
// indices, keeping duplicates and input order. Every part must parse
// as an integer before any range check; a number outside 1..max
// rejects the whole input.
func parseSelection(input string, max int) ([]int, error) {
	parts := strings.Split(input, ",")

	numbers := make([]int, 0, len(parts))
	for _, part := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, fmt.Errorf("not a number: %q", strings.TrimSpace(part))
		}
		numbers = append(numbers, n)
	}

	indices := make([]int, 0, len(numbers))
	for _, n := range numbers {
		if n < 1 || n > max {
			return nil, &invalidNumberError{number: n}
		}
		indices = append(indices, n-1)
	}

	return indices, nil
}
