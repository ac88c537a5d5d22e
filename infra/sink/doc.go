// Package sink provides the table sinks selectable from the trace section
// of the configuration. Importing it registers the csv, sqlite, postgres
// and influx sink types with the trace sink registry.
package sink
