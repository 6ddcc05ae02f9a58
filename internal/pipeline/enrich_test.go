package pipeline

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairwaylabs/golfdata/internal/dataset"
	"github.com/fairwaylabs/golfdata/internal/model"
	"github.com/fairwaylabs/golfdata/internal/places"
)

// fakeLookup is a substitutable lookup collaborator recording its calls.
type fakeLookup struct {
	findFn       func(input string) (*places.FindPlaceResponse, error)
	detailsFn    func(placeID string) (*places.DetailsResponse, error)
	findCalls    []string
	detailsCalls []string
}

func (f *fakeLookup) FindPlace(_ context.Context, input string) (*places.FindPlaceResponse, error) {
	f.findCalls = append(f.findCalls, input)
	if f.findFn == nil {
		return &places.FindPlaceResponse{Status: places.StatusZeroResults}, nil
	}
	return f.findFn(input)
}

func (f *fakeLookup) Details(_ context.Context, placeID string) (*places.DetailsResponse, error) {
	f.detailsCalls = append(f.detailsCalls, placeID)
	if f.detailsFn == nil {
		return &places.DetailsResponse{Status: places.StatusZeroResults}, nil
	}
	return f.detailsFn(placeID)
}

func golfCandidate() places.Candidate {
	return places.Candidate{
		PlaceID:          "pid-1",
		FormattedAddress: "Brasted Rd, Westerham TN16 1QN, UK",
		Geometry: &places.Geometry{
			Location:     places.LatLng{Lat: 51.27, Lng: 0.08},
			LocationType: "ROOFTOP",
		},
		Types: []string{"golf_course"},
	}
}

func golfDetails() *places.DetailsResponse {
	return &places.DetailsResponse{
		Status: places.StatusOK,
		Result: &places.PlaceDetails{
			Name: "Westerham Golf Club",
			AddressComponents: []places.AddressComponent{
				{LongName: "Valence Park", Types: []string{"street_number"}},
				{LongName: "Brasted Rd", Types: []string{"route"}},
				{LongName: "Westerham", Types: []string{"locality"}},
				{LongName: "TN16", Types: []string{"postal_code"}},
				{LongName: "1QN", Types: []string{"postal_code_suffix"}},
				{LongName: "United Kingdom", Types: []string{"country"}},
			},
			Geometry: &places.Geometry{Location: places.LatLng{Lat: 51.27, Lng: 0.08}},
			Types:    []string{"golf_course", "establishment"},
		},
	}
}

// enrichable returns a dataset where every named course is missing its
// address.
func enrichable(names ...string) *dataset.Dataset {
	ds := dataset.New(model.ColCourseName, model.ColAddress)
	for _, name := range names {
		ds.Append(dataset.Row{model.ColCourseName: name, model.ColAddress: ""})
	}
	return ds
}

func testOpts(t *testing.T) EnrichOptions {
	t.Helper()
	return EnrichOptions{
		CheckpointPath: filepath.Join(t.TempDir(), "checkpoint.csv"),
		ThrottleDelay:  time.Microsecond,
	}
}

func TestEnrichNoOpWhenNothingMissing(t *testing.T) {
	ds := dataset.New(model.ColCourseName, model.ColAddress)
	ds.Append(dataset.Row{model.ColCourseName: "Westerham", model.ColAddress: "Brasted Rd, Westerham"})

	svc := &fakeLookup{}
	out, result := Enrich(context.Background(), ds, svc, testOpts(t), nil)

	assert.Zero(t, result.NeedsEnrichment)
	assert.Empty(t, svc.findCalls)
	assert.Equal(t, ds.Rows, out.Rows)
}

func TestEnrichTwoStepLookup(t *testing.T) {
	svc := &fakeLookup{
		findFn: func(string) (*places.FindPlaceResponse, error) {
			return &places.FindPlaceResponse{
				Status:     places.StatusOK,
				Candidates: []places.Candidate{golfCandidate()},
			}, nil
		},
		detailsFn: func(string) (*places.DetailsResponse, error) {
			return golfDetails(), nil
		},
	}

	ds := dataset.New(model.ColCourseName, model.ColAddress)
	ds.Append(dataset.Row{model.ColCourseName: "Westerham Golf Club", model.ColAddress: ""})
	ds.Append(dataset.Row{model.ColCourseName: "Complete Course", model.ColAddress: "Already Filled, Kent"})

	opts := testOpts(t)
	out, result := Enrich(context.Background(), ds, svc, opts, nil)

	assert.Equal(t, 1, result.NeedsEnrichment)
	assert.Equal(t, 1, result.Enriched)
	assert.Equal(t, []string{"Westerham Golf Club"}, svc.findCalls)
	assert.Equal(t, []string{"pid-1"}, svc.detailsCalls)

	// Enriched row: details-derived clean address overwrites the find-place
	// formatted address.
	row := out.Rows[0]
	assert.Equal(t, "Valence Park, Brasted Rd, Westerham", row[model.ColAddress])
	assert.Equal(t, "TN16 1QN", row[model.ColPostCode])
	assert.Equal(t, "51.27", row[model.ColLatitude])
	assert.Equal(t, "0.08", row[model.ColLongitude])
	assert.Equal(t, "High", row[model.ColConfidence])

	// Already-complete rows pass through untouched.
	assert.Equal(t, "Already Filled, Kent", out.Rows[1][model.ColAddress])

	// Input dataset is never mutated.
	assert.Equal(t, "", ds.Rows[0][model.ColAddress])

	// The final checkpoint holds the enrichable subset only.
	checkpoint, err := dataset.ReadCSV(opts.CheckpointPath)
	require.NoError(t, err)
	require.Equal(t, 1, checkpoint.Len())
	assert.Equal(t, "Valence Park, Brasted Rd, Westerham", checkpoint.Rows[0][model.ColAddress])
}

func TestEnrichKeepsFormattedAddressWithoutPlaceID(t *testing.T) {
	cand := golfCandidate()
	cand.PlaceID = ""
	svc := &fakeLookup{
		findFn: func(string) (*places.FindPlaceResponse, error) {
			return &places.FindPlaceResponse{Status: places.StatusOK, Candidates: []places.Candidate{cand}}, nil
		},
	}

	out, result := Enrich(context.Background(), enrichable("Westerham"), svc, testOpts(t), nil)

	assert.Equal(t, 1, result.Enriched)
	assert.Empty(t, svc.detailsCalls)
	assert.Equal(t, "Brasted Rd, Westerham TN16 1QN, UK", out.Rows[0][model.ColAddress])
	assert.Equal(t, "", out.Rows[0][model.ColConfidence])
}

func TestEnrichZeroResultsWritesNothing(t *testing.T) {
	svc := &fakeLookup{} // defaults to ZERO_RESULTS

	out, result := Enrich(context.Background(), enrichable("Unknown Course"), svc, testOpts(t), nil)

	assert.Zero(t, result.Enriched)
	assert.Empty(t, result.Errors)
	assert.Empty(t, svc.detailsCalls)
	assert.Equal(t, "", out.Rows[0][model.ColAddress])
}

func TestEnrichSkipsRowsWithoutName(t *testing.T) {
	ds := dataset.New(model.ColCourseName, model.ColAddress)
	ds.Append(dataset.Row{model.ColCourseName: "  ", model.ColAddress: ""})
	ds.Append(dataset.Row{model.ColCourseName: "Brasted", model.ColAddress: ""})

	svc := &fakeLookup{}
	_, result := Enrich(context.Background(), ds, svc, testOpts(t), nil)

	assert.Equal(t, 1, result.Skipped)
	assert.Equal(t, []string{"Brasted"}, svc.findCalls)
}

func TestEnrichContinuesPastRowErrors(t *testing.T) {
	svc := &fakeLookup{
		findFn: func(input string) (*places.FindPlaceResponse, error) {
			if input == "Broken Course" {
				return nil, errors.New("connection reset")
			}
			return &places.FindPlaceResponse{
				Status:     places.StatusOK,
				Candidates: []places.Candidate{golfCandidate()},
			}, nil
		},
		detailsFn: func(string) (*places.DetailsResponse, error) {
			return golfDetails(), nil
		},
	}

	out, result := Enrich(context.Background(), enrichable("Broken Course", "Working Course"), svc, testOpts(t), nil)

	assert.False(t, result.Aborted)
	assert.Len(t, result.Errors, 1)
	assert.Equal(t, 1, result.Enriched)
	assert.Equal(t, "", out.Rows[0][model.ColAddress])
	assert.NotEmpty(t, out.Rows[1][model.ColAddress])
}

func TestEnrichAbortsOnCredentialError(t *testing.T) {
	svc := &fakeLookup{
		findFn: func(string) (*places.FindPlaceResponse, error) {
			return nil, &places.APIError{
				Status:  places.StatusRequestDenied,
				Message: "The provided API key is invalid.",
			}
		},
	}

	opts := testOpts(t)
	_, result := Enrich(context.Background(), enrichable("First", "Second", "Third"), svc, opts, nil)

	assert.True(t, result.Aborted)
	// Only the first row was attempted.
	assert.Equal(t, []string{"First"}, svc.findCalls)
	assert.Len(t, result.Errors, 1)

	// Prior progress is still checkpointed after an abort.
	checkpoint, err := dataset.ReadCSV(opts.CheckpointPath)
	require.NoError(t, err)
	assert.Equal(t, 3, checkpoint.Len())
}

func TestEnrichKeepsStepOneFieldsWhenDetailsFail(t *testing.T) {
	svc := &fakeLookup{
		findFn: func(string) (*places.FindPlaceResponse, error) {
			return &places.FindPlaceResponse{
				Status:     places.StatusOK,
				Candidates: []places.Candidate{golfCandidate()},
			}, nil
		},
		detailsFn: func(string) (*places.DetailsResponse, error) {
			return nil, errors.New("connection reset")
		},
	}

	out, result := Enrich(context.Background(), enrichable("Westerham"), svc, testOpts(t), nil)

	assert.Len(t, result.Errors, 1)
	assert.Equal(t, 1, result.Enriched)
	assert.Equal(t, "Brasted Rd, Westerham TN16 1QN, UK", out.Rows[0][model.ColAddress])
	assert.Equal(t, "51.27", out.Rows[0][model.ColLatitude])
	assert.Equal(t, "", out.Rows[0][model.ColPostCode])
}

func TestEnrichThrottle(t *testing.T) {
	const rows = 25

	run := func(threshold int) time.Duration {
		svc := &fakeLookup{}
		opts := EnrichOptions{
			CheckpointPath:    filepath.Join(t.TempDir(), "checkpoint.csv"),
			ThrottleThreshold: threshold,
			ThrottleDelay:     10 * time.Millisecond,
		}
		ds := dataset.New(model.ColCourseName, model.ColAddress)
		for i := 0; i < rows; i++ {
			ds.Append(dataset.Row{model.ColCourseName: "Course", model.ColAddress: ""})
		}
		start := time.Now()
		Enrich(context.Background(), ds, svc, opts, nil)
		return time.Since(start)
	}

	// 25 rows below the threshold: no per-row delay.
	assert.Less(t, run(100), 150*time.Millisecond)

	// 25 rows above the threshold: the delay fires on every row.
	assert.GreaterOrEqual(t, run(10), 250*time.Millisecond)
}

func TestEnrichPeriodicCheckpoint(t *testing.T) {
	svc := &fakeLookup{}
	path := filepath.Join(t.TempDir(), "checkpoint.csv")

	ds := dataset.New(model.ColCourseName, model.ColAddress)
	for i := 0; i < 25; i++ {
		ds.Append(dataset.Row{model.ColCourseName: "Course", model.ColAddress: ""})
	}

	_, result := Enrich(context.Background(), ds, svc, EnrichOptions{
		CheckpointPath: path,
		ThrottleDelay:  time.Microsecond,
	}, nil)

	assert.Equal(t, 25, result.Processed)

	checkpoint, err := dataset.ReadCSV(path)
	require.NoError(t, err)
	assert.Equal(t, 25, checkpoint.Len())
}
