package http

import (
	"errors"

	apierrors "providerpulse/internal/errors"
	"providerpulse/internal/services"
)

// toAPIError maps service sentinels to API errors. ref is the dataset id
// or file name the request was about. Categorized service errors pass
// through to the error handler unchanged.
func toAPIError(err error, ref string, maxUpload int64) error {
	var appErr *apierrors.AppError
	switch {
	case errors.As(err, &appErr):
		return err
	case errors.Is(err, services.ErrDatasetNotFound):
		return apierrors.DatasetNotFoundError(ref)
	case errors.Is(err, services.ErrNoDataFound):
		return apierrors.NoDataFoundError(ref)
	case errors.Is(err, services.ErrWorkbookTooLarge):
		return apierrors.PayloadTooLargeError(maxUpload)
	case errors.Is(err, services.ErrInvalidWorkbook):
		return apierrors.InvalidWorkbookError(ref, err)
	case errors.Is(err, services.ErrInvalidWeekRange):
		return apierrors.InvalidWeekRangeError(err.Error())
	default:
		return err
	}
}
