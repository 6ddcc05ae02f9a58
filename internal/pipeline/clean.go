package pipeline

import (
	"log/slog"
	"strings"

	"github.com/fairwaylabs/golfdata/internal/dataset"
)

// Clean returns a cleaned copy of the dataset: rows whose identifying column
// is missing or whitespace-only are removed, and duplicate values (exact,
// case-sensitive) are dropped keeping the first occurrence. Relative order
// among surviving rows is preserved.
//
// A human-readable summary goes to the logger; cleaning never fails.
func Clean(ds *dataset.Dataset, nameColumn string, logger *slog.Logger) (*dataset.Dataset, CleanResult) {
	if logger == nil {
		logger = slog.Default()
	}

	out := dataset.New(ds.Columns...)
	var result CleanResult

	seen := make(map[string]struct{}, ds.Len())
	listed := make(map[string]struct{})

	for _, row := range ds.Rows {
		name := row[nameColumn]
		if strings.TrimSpace(name) == "" {
			result.RowsRemoved++
			continue
		}
		if _, dup := seen[name]; dup {
			if _, already := listed[name]; !already {
				listed[name] = struct{}{}
				result.Duplicates = append(result.Duplicates, name)
			}
			continue
		}
		seen[name] = struct{}{}

		copied := make(dataset.Row, len(row))
		for k, v := range row {
			copied[k] = v
		}
		out.Append(copied)
	}

	if result.RowsRemoved > 0 {
		logger.Info("removed rows with missing course names", "count", result.RowsRemoved)
	} else {
		logger.Info("no missing course names found")
	}

	if len(result.Duplicates) > 0 {
		logger.Warn("duplicate courses removed",
			"count", len(result.Duplicates),
			"courses", strings.Join(result.Duplicates, ", "))
	} else {
		logger.Info("no duplicate courses in dataset")
	}

	return out, result
}
