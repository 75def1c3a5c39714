// Package weeks canonicalizes week labels and orders them chronologically.
//
// Week labels carry a bare month/day token ("Week of 11/29") and no year.
// Ordering infers the year purely from the labels supplied: a set that holds
// both a November/December date and a January-March date is treated as
// crossing a year boundary, so the winter months sort after the autumn ones.
// Nothing here reads the wall clock, so the same input always yields the
// same order.
//
//	ordered := weeks.CanonicalOrder([]string{"Week of 12/20", "Week of 1/5", "Week of 11/29"})
//	// ["Week of 11/29", "Week of 12/20", "Week of 1/5"]
package weeks
