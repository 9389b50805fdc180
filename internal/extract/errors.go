package extract

import (
	"context"
	"errors"

	"github.com/terralab/landscape-cli/internal/crs"
	"github.com/terralab/landscape-cli/internal/raster"
)

// Skip reason labels recorded in the batch summary and the run store.
const (
	ReasonMissingYearRaster = "missing_year_raster"
	ReasonEmptyIntersection = "empty_intersection"
	ReasonProjectionFailure = "projection_failure"
	ReasonTimeout           = "timeout"
	ReasonOther             = "error"
)

// SkipReason classifies a per-site or per-scale failure into its summary
// label.
func SkipReason(err error) string {
	var missing *raster.MissingYearError
	var empty *raster.EmptyIntersectionError
	var projection *crs.ProjectionError
	switch {
	case errors.As(err, &missing):
		return ReasonMissingYearRaster
	case errors.As(err, &empty):
		return ReasonEmptyIntersection
	case errors.As(err, &projection):
		return ReasonProjectionFailure
	case errors.Is(err, context.DeadlineExceeded):
		return ReasonTimeout
	default:
		return ReasonOther
	}
}
