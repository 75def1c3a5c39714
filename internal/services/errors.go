package services

import "errors"

// Dataset service errors
var (
	ErrDatasetNotFound  = errors.New("dataset not found")
	ErrNoDataFound      = errors.New("no data found, please check the file format")
	ErrInvalidWorkbook  = errors.New("invalid workbook")
	ErrWorkbookTooLarge = errors.New("workbook exceeds upload limit")
	ErrInvalidWeekRange = errors.New("invalid week range")
	ErrNoDefaultPath    = errors.New("no default workbook configured")
)
