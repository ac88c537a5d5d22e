package sink

import (
	"context"
	"fmt"
	"strings"

	"github.com/iveel36/spacetime-sim-2020/core/trace"
	"github.com/iveel36/spacetime-sim-2020/infra/logger"
	"github.com/iveel36/spacetime-sim-2020/pkg/export"
)

// TablePlaceholder in a file sink path is replaced by the table name.
const TablePlaceholder = "{table}"

// FileSink writes each table to its own file.
type FileSink struct {
	format string
	path   string
	write  export.TableWriter
	log    logger.Logger
}

// NewCSVSink returns a sink writing CSV to path.
func NewCSVSink(path string) (*FileSink, error) {
	return newFileSink("csv", path, export.WriteTable)
}

// NewJSONSink returns a sink writing a JSON array of row objects to path.
func NewJSONSink(path string) (*FileSink, error) {
	return newFileSink("json", path, export.WriteJSON)
}

func newFileSink(format, path string, write export.TableWriter) (*FileSink, error) {
	if path == "" {
		return nil, fmt.Errorf("%s sink: path is required", format)
	}
	return &FileSink{format: format, path: path, write: write, log: logger.New(format + "-sink")}, nil
}

// Path returns the file the table would be written to.
func (s *FileSink) Path(t trace.Table) string {
	return strings.ReplaceAll(s.path, TablePlaceholder, t.Name)
}

func (s *FileSink) Write(ctx context.Context, t trace.Table) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path := s.Path(t)
	if err := export.WriteFile(path, t, s.write); err != nil {
		return fmt.Errorf("%s sink: %w", s.format, err)
	}
	s.log.Debugf("wrote %d %s rows to %s", t.Len(), t.Name, path)
	return nil
}

func (s *FileSink) Close() error { return nil }
