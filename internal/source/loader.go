// Package source loads raw records from extraction output files and can
// generate synthetic records for local runs.
package source

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/company-pipeline/internal/model"
)

// Load reads raw records from a JSON, CSV, or YAML file. The source id of
// each record is its "source_of_data" field when present, the file stem
// otherwise.
func Load(path string) ([]*model.RawRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "source: read %s", path)
	}

	var fields []map[string]any
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		fields, err = parseJSON(data)
	case ".csv":
		fields, err = parseCSV(data)
	case ".yaml", ".yml":
		fields, err = parseYAML(data)
	default:
		return nil, eris.Errorf("source: unsupported file type %q", ext)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "source: parse %s", path)
	}

	fallback := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	records := make([]*model.RawRecord, 0, len(fields))
	for _, f := range fields {
		records = append(records, &model.RawRecord{
			SourceID: sourceID(f, fallback),
			Fields:   f,
		})
	}

	zap.L().Info("source: loaded records",
		zap.String("path", path),
		zap.Int("count", len(records)),
	)
	return records, nil
}

func sourceID(fields map[string]any, fallback string) string {
	if s, ok := fields["source_of_data"].(string); ok && s != "" {
		return s
	}
	return fallback
}

func parseJSON(data []byte) ([]map[string]any, error) {
	var out []map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, eris.Wrap(err, "decode json array")
	}
	return out, nil
}

func parseYAML(data []byte) ([]map[string]any, error) {
	var out []map[string]any
	if err := yaml.Unmarshal(data, &out); err != nil {
		return nil, eris.Wrap(err, "decode yaml list")
	}
	return out, nil
}

// parseCSV treats the first row as the header; empty cells are omitted so
// the normalizer sees them as absent fields.
func parseCSV(data []byte) ([]map[string]any, error) {
	reader := csv.NewReader(strings.NewReader(string(data)))
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, eris.Wrap(err, "decode csv")
	}
	if len(rows) < 2 {
		return nil, nil
	}

	header := rows[0]
	out := make([]map[string]any, 0, len(rows)-1)
	for _, row := range rows[1:] {
		fields := make(map[string]any, len(header))
		for i, col := range header {
			if i < len(row) && row[i] != "" {
				fields[col] = row[i]
			}
		}
		out = append(out, fields)
	}
	return out, nil
}
