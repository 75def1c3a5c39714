// Package dataprocessing turns weekly provider-performance workbooks into
// normalized ProviderWeekRecord values.
//
// # Architecture
//
// A parse runs in fixed stages over an in-memory Grid:
//
//  1. LocateHeader finds the header row among the first five rows
//  2. SegmentWeeks finds month/day tokens and splits the header into weeks
//  3. a Cascade of strategies assigns column roles (keyword, positional,
//     fixed width) and keeps the first that resolves any week
//  4. Materialize reads every data row into records
//
// Workbooks are decoded with excelize by ReadGrid and OpenGrid; the stages
// above never touch files.
//
// # Usage
//
//	p := dataprocessing.NewParser(dataprocessing.WithLogger(logger))
//	result, err := p.ParseFile(ctx, "provider-report.xlsx")
//	if err != nil {
//	    return err
//	}
//	if result.Empty() {
//	    // no data found, ask for a different file
//	}
//
// # Error Handling
//
// Malformed layouts never produce errors. A grid with no usable header
// yields an empty result and unreadable numeric cells read as zero with a
// coercion warning on the result. Only workbook decoding returns errors.
//
// Parsers hold no per-parse state, so one Parser may serve concurrent
// parses of distinct grids.
package dataprocessing
