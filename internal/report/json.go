package report

import (
	"encoding/json"
	"fmt"

	"github.com/scan-io-git/egressguard/internal/findings"
	"github.com/scan-io-git/egressguard/pkg/shared/files"
)

// WriteJSON stores the report as indented JSON.
func WriteJSON(path string, r *findings.Report) error {
	data, err := json.MarshalIndent(r, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}
	return files.WriteJsonFile(path, data)
}
