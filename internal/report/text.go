// Package report renders audit results for operators and CI systems.
package report

import (
	"fmt"
	"io"

	"github.com/scan-io-git/egressguard/internal/findings"
)

const (
	FormatText  = "text"
	FormatJSON  = "json"
	FormatSARIF = "sarif"
)

// WriteText prints the verdict. A clean run writes one line to stdout; otherwise every
// violation followed by the effective whitelist goes to stderr.
func WriteText(stdout, stderr io.Writer, r *findings.Report) error {
	if len(r.Violations) == 0 {
		_, err := fmt.Fprintf(stdout, "egressguard: no network policy violations (%d files scanned)\n", r.Files)
		return err
	}

	for _, v := range r.Violations {
		if _, err := fmt.Fprintln(stderr, v.String()); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(stderr, "\negressguard: %d network policy violation(s) in %d files scanned\n", len(r.Violations), r.Files); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(stderr, "Whitelisted files:"); err != nil {
		return err
	}
	if len(r.Whitelist) == 0 {
		_, err := fmt.Fprintln(stderr, "  (none)")
		return err
	}
	for _, entry := range r.Whitelist {
		if _, err := fmt.Fprintf(stderr, "  - %s\n", entry); err != nil {
			return err
		}
	}
	return nil
}
