// Package pagination aggregates consecutive NeoWs browse pages into one
// ordered list of orbital records.
//
// NeoWs pages are addressed by a zero-based page index and a page size. The
// aggregator fetches pages strictly one after another and can pause between
// fetches to stay polite with the shared DEMO_KEY quota.
//
// Example usage:
//
//	agg := pagination.NewAggregator(neowsClient)
//	page, err := agg.Collect(ctx, pagination.Request{Page: 0, Size: 20, Pages: 3, SleepMS: 250})
//
// The aggregator:
//   - Validates paging bounds before any upstream call
//   - Fetches page, page+1, ... page+pages-1 in order
//   - Sleeps between fetches, never after the last one
//   - Fails the whole aggregation on the first page error (no partial data)
package pagination
