// Package files finds provider performance workbooks on disk.
//
// Discovery resolves relative directories against a base path and returns
// readable workbooks sorted by name, skipping Office lock files:
//
//	discovery := files.NewDiscovery("/srv/exports")
//	workbooks, err := discovery.FindWorkbooks("weekly")
//	latest, ok := files.GetLatestFile(workbooks)
package files
