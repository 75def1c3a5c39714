// Package shared holds helpers used by more than one layer of the service.
//
// The testutil subpackage provides a buffered slog handler for asserting on
// log output and xlsx fixture builders for ingest tests:
//
//	func TestIngest(t *testing.T) {
//	    logger, logs := testutil.NewTestLogger(t)
//	    data := testutil.WorkbookBytes(t, testutil.SampleWeeklyRows)
//	    ...
//	    testutil.AssertNoErrors(t, logs)
//	}
//
// Nothing here may import domain packages.
package shared
