// Package sheets adapts a publicly readable Google Sheets tab as a
// catalog record source.
//
// The tab is downloaded through the CSV export endpoint, with the gviz
// endpoint as fallback when the direct export is refused. Column names
// from the header row are lowercased before matching, and each data row
// becomes one record keyed by the configured key column.
package sheets
