package pipeline

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/fairwaylabs/golfdata/internal/dataset"
	"github.com/fairwaylabs/golfdata/internal/model"
)

// Error report columns appended to the original input columns.
const (
	ColTotalErrors  = "total_errors"
	ColErrorDetails = "error_details"
)

// Validate checks each row independently against the course record schema
// and partitions the dataset: valid rows become schema-normalized records,
// invalid rows are copied into an error report with a numbered
// "value: message" line per field error. Row order is preserved within both
// outputs, and validation never fails the pipeline.
func Validate(ds *dataset.Dataset, logger *slog.Logger) (*dataset.Dataset, *dataset.Dataset, ValidationResult) {
	if logger == nil {
		logger = slog.Default()
	}

	valid := dataset.New(model.Columns...)

	errCols := append(append([]string(nil), ds.Columns...), ColTotalErrors, ColErrorDetails)
	errReport := dataset.New(errCols...)

	result := ValidationResult{Total: ds.Len()}

	for _, row := range ds.Rows {
		course, fieldErrs := model.ParseCourse(row)
		if len(fieldErrs) == 0 {
			valid.Append(course.Row())
			result.Valid++
			continue
		}

		lines := make([]string, 0, len(fieldErrs))
		for i, fe := range fieldErrs {
			lines = append(lines, fmt.Sprintf("%d) %s: %s", i+1, fe.Value, fe.Message))
		}

		errRow := make(dataset.Row, len(row)+2)
		for k, v := range row {
			errRow[k] = v
		}
		errRow[ColTotalErrors] = strconv.Itoa(len(fieldErrs))
		errRow[ColErrorDetails] = strings.Join(lines, ".\n")
		errReport.Append(errRow)

		result.TotalFieldErrors += len(fieldErrs)
	}

	if result.TotalFieldErrors > 0 {
		label := "inputs have"
		if result.TotalFieldErrors == 1 {
			label = "input has"
		}
		logger.Warn(fmt.Sprintf("%d %s failed validation of the golf course requirements", result.TotalFieldErrors, label),
			"passed", result.Valid,
			"total", result.Total)
	} else {
		logger.Info("all rows passed golf course validation", "total", result.Total)
	}

	return valid, errReport, result
}
