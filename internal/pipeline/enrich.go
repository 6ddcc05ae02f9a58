package pipeline

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/fairwaylabs/golfdata/internal/address"
	"github.com/fairwaylabs/golfdata/internal/dataset"
	"github.com/fairwaylabs/golfdata/internal/model"
	"github.com/fairwaylabs/golfdata/internal/places"
)

// Lookup is the place-lookup collaborator the orchestrator depends on.
// *places.Client satisfies it; tests substitute fakes.
type Lookup interface {
	FindPlace(ctx context.Context, input string) (*places.FindPlaceResponse, error)
	Details(ctx context.Context, placeID string) (*places.DetailsResponse, error)
}

// Activity criteria for golf course confidence scoring.
var golfTargetTypes = []string{"golf_course"}

const golfKeyword = "golf"

// EnrichOptions configures an enrichment run. Zero values fall back to the
// documented defaults.
type EnrichOptions struct {
	// NameColumn is the free-text lookup input column. Default "Course Name".
	NameColumn string
	// ThrottleThreshold is the enrichable-row count above which ThrottleDelay
	// is inserted after each row's API calls. Default 100.
	ThrottleThreshold int
	// ThrottleDelay is the fixed per-row pause. Default 100ms.
	ThrottleDelay time.Duration
	// CheckpointPath receives a full snapshot of the enrichable subset every
	// CheckpointEvery rows and once more at the end.
	CheckpointPath string
	// CheckpointEvery defaults to 10.
	CheckpointEvery int
}

func (o *EnrichOptions) defaults() {
	if o.NameColumn == "" {
		o.NameColumn = model.ColCourseName
	}
	if o.ThrottleThreshold == 0 {
		o.ThrottleThreshold = 100
	}
	if o.ThrottleDelay == 0 {
		o.ThrottleDelay = 100 * time.Millisecond
	}
	if o.CheckpointEvery == 0 {
		o.CheckpointEvery = 10
	}
}

// Enrich fills missing location data (address, coordinates, postcode,
// confidence) on a copy of the dataset using the lookup service. A row is
// enrichable only while its Address cell is blank; filled rows are never
// re-queried, so re-running after a crash resumes where the checkpoint left
// off.
//
// Credential errors abort the remaining loop; any other lookup error leaves
// that row unenriched and continues. The enrichable subset is checkpointed
// periodically and unconditionally after the loop.
func Enrich(ctx context.Context, ds *dataset.Dataset, svc Lookup, opts EnrichOptions, logger *slog.Logger) (*dataset.Dataset, EnrichResult) {
	if logger == nil {
		logger = slog.Default()
	}
	opts.defaults()

	out := ds.Copy()
	for _, col := range []string{model.ColAddress, model.ColLatitude, model.ColLongitude, model.ColPostCode, model.ColConfidence} {
		out.EnsureColumn(col)
	}

	var result EnrichResult

	// The subset shares row storage with the working copy, so per-row writes
	// land in both.
	var subset []dataset.Row
	for _, row := range out.Rows {
		if strings.TrimSpace(row[model.ColAddress]) == "" {
			subset = append(subset, row)
		}
	}
	result.NeedsEnrichment = len(subset)

	if len(subset) == 0 {
		logger.Info("all golf courses have location data, skipping enrichment")
		return out, result
	}
	logger.Info("found records to enrich", "count", len(subset))

	checkpoint := &dataset.Dataset{Columns: out.Columns, Rows: subset}

	for i, row := range subset {
		count := i + 1
		result.Processed = count

		name := strings.TrimSpace(row[opts.NameColumn])
		if name == "" {
			result.Skipped++
			continue
		}

		enriched, err := enrichRow(ctx, svc, row, name)
		if enriched {
			result.Enriched++
		}
		if err != nil {
			result.AddErrorf("lookup %q: %v", name, err)
			logger.Error("lookup failed", "course", name, "error", err)
			if places.IsCredentialError(err) {
				logger.Error("credential rejected by lookup service, aborting enrichment")
				result.Aborted = true
				break
			}
			continue
		}

		if len(subset) > opts.ThrottleThreshold {
			time.Sleep(opts.ThrottleDelay)
		}

		if count%opts.CheckpointEvery == 0 && opts.CheckpointPath != "" {
			if err := checkpoint.WriteCSV(opts.CheckpointPath); err != nil {
				result.AddErrorf("checkpoint: %v", err)
				logger.Error("checkpoint write failed", "path", opts.CheckpointPath, "error", err)
			} else {
				logger.Info("progress saved", "processed", count, "total", len(subset))
			}
		}
	}

	if opts.CheckpointPath != "" {
		if err := checkpoint.WriteCSV(opts.CheckpointPath); err != nil {
			result.AddErrorf("final checkpoint: %v", err)
			logger.Error("final checkpoint write failed", "path", opts.CheckpointPath, "error", err)
		} else {
			logger.Info("enrichment complete, final data saved", "path", opts.CheckpointPath)
		}
	}

	return out, result
}

// enrichRow runs the two-step lookup for one row, writing results into the
// row as they arrive. It reports whether any fields were written; a row can
// be partially enriched when the details call fails after find-place
// succeeded.
func enrichRow(ctx context.Context, svc Lookup, row dataset.Row, name string) (bool, error) {
	find, err := svc.FindPlace(ctx, name)
	if err != nil {
		return false, err
	}
	if !find.OK() {
		return false, nil
	}

	// First candidate wins; no disambiguation among multiple candidates.
	cand := find.Candidates[0]

	// The precision tag lives on the find-place geometry, not the details
	// response.
	var locationType string
	if cand.Geometry != nil {
		locationType = cand.Geometry.LocationType
	}

	row[model.ColAddress] = cand.FormattedAddress
	if cand.Geometry != nil {
		row[model.ColLatitude] = strconv.FormatFloat(cand.Geometry.Location.Lat, 'f', -1, 64)
		row[model.ColLongitude] = strconv.FormatFloat(cand.Geometry.Location.Lng, 'f', -1, 64)
	}

	if cand.PlaceID == "" {
		return true, nil
	}

	details, err := svc.Details(ctx, cand.PlaceID)
	if err != nil {
		return true, err
	}
	if !details.OK() {
		return true, nil
	}

	components := details.Result.AddressComponents
	row[model.ColPostCode] = address.ExtractPostalCode(components)
	row[model.ColAddress] = address.BuildCleanAddress(components)

	if locationType != "" {
		if details.Result.Geometry == nil {
			details.Result.Geometry = &places.Geometry{}
		}
		if details.Result.Geometry.LocationType == "" {
			details.Result.Geometry.LocationType = locationType
		}
	}

	confidence := address.CalculateConfidence(details.Result, name, golfTargetTypes, golfKeyword)
	row[model.ColConfidence] = string(confidence)

	return true, nil
}
