// Package logtail reads the tail of the mycoach log file for the request log
// view.
//
// # Reading Log Files
//
// Read uses a ring buffer to keep the last maxLines of a file in one pass
// with O(maxLines) memory. Lines come back in chronological order. A missing
// file is not an error; the view simply shows nothing yet.
//
//	lines, err := logtail.Read(cfg.LogFile, 400)
//
// # Filtering
//
// Requests keeps the lines logged by the HTTP transport ("http request",
// "http response", "http request failed"), which is what the request log
// view shows. Level extracts tint's three-letter level token so the view can
// colour each line.
package logtail
