package battlelog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// ExportJSON writes record to outputDir/<battle id>.json, creating the
// directory if it doesn't exist.
func ExportJSON(record *BattleRecord, outputDir string) error {
	if record == nil {
		return fmt.Errorf("battlelog: cannot export nil battle record")
	}
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("battlelog: failed to create output directory: %w", err)
	}

	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return fmt.Errorf("battlelog: failed to marshal battle record: %w", err)
	}

	path := filepath.Join(outputDir, filename(record))
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("battlelog: failed to write battle log file: %w", err)
	}
	return nil
}

func filename(record *BattleRecord) string {
	if record.BattleID != "" {
		return record.BattleID + ".json"
	}
	return fmt.Sprintf("battle_%s.json", record.EndTime.Format("20060102_150405"))
}
