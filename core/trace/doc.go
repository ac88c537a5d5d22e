package trace

// Package trace converts simulator output logs into tabular datasets.
// Extraction works on a generic Node tree produced by a DocumentParser, so
// markup repair and record extraction can be exercised separately. Records
// with any missing attribute are dropped whole; the rest are sorted by
// vehicle id and handed to one or more Sinks.
