package engine

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/dashport-dev/dashport/pkg/calc"
)

// LoadWorkbook reads a workbook definition from a JSON or YAML file,
// chosen by extension. The workbook name defaults to the file name.
func LoadWorkbook(path string) (*calc.Workbook, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read workbook: %w", err)
	}

	var wb calc.Workbook
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &wb); err != nil {
			return nil, fmt.Errorf("malformed workbook %s: %w", path, err)
		}
	case ".json":
		if err := json.Unmarshal(data, &wb); err != nil {
			return nil, fmt.Errorf("malformed workbook %s: %w", path, err)
		}
	default:
		return nil, fmt.Errorf("unsupported workbook format %q (want .json, .yaml, or .yml)", filepath.Ext(path))
	}

	if len(wb.Fields) == 0 {
		return nil, fmt.Errorf("workbook %s defines no fields", path)
	}
	if wb.Name == "" {
		wb.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return &wb, nil
}
