package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/iveel36/spacetime-sim-2020/config"
	"github.com/iveel36/spacetime-sim-2020/core/demand"
	coremetrics "github.com/iveel36/spacetime-sim-2020/core/metrics"
	"github.com/iveel36/spacetime-sim-2020/core/model"
	coremqtt "github.com/iveel36/spacetime-sim-2020/core/mqtt"
	"github.com/iveel36/spacetime-sim-2020/core/trace"
	"github.com/iveel36/spacetime-sim-2020/infra/logger"
	_ "github.com/iveel36/spacetime-sim-2020/infra/metrics"
	"github.com/iveel36/spacetime-sim-2020/infra/mqtt"
	"github.com/iveel36/spacetime-sim-2020/infra/report"
	_ "github.com/iveel36/spacetime-sim-2020/infra/sink"
	"github.com/iveel36/spacetime-sim-2020/infra/xmldoc"
	"github.com/iveel36/spacetime-sim-2020/pkg/export"
)

// PublisherFactory opens a schedule publisher for the given settings.
type PublisherFactory func(mqtt.Config) (coremqtt.Publisher, error)

func defaultPublisher(cfg mqtt.Config) (coremqtt.Publisher, error) {
	p, err := mqtt.NewSchedulePublisher(cfg)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Option customises a Service.
type Option func(*Service)

// WithRecorder replaces the recorder built from the metrics configuration.
func WithRecorder(r coremetrics.Recorder) Option { return func(s *Service) { s.recorder = r } }

// WithParser replaces the recovering XML parser.
func WithParser(p trace.DocumentParser) Option { return func(s *Service) { s.parser = p } }

// WithPublisherFactory replaces the MQTT schedule publisher.
func WithPublisherFactory(f PublisherFactory) Option { return func(s *Service) { s.newPublisher = f } }

// Service runs the demand and trace pipelines.
type Service struct {
	cfg          *config.Config
	recorder     coremetrics.Recorder
	parser       trace.DocumentParser
	newPublisher PublisherFactory
	log          logger.Logger
}

// New creates a Service from the configuration.
func New(cfg *config.Config, opts ...Option) (*Service, error) {
	s := &Service{
		cfg:          cfg,
		parser:       xmldoc.NewParser(),
		newPublisher: defaultPublisher,
		log:          logger.New("service"),
	}
	for _, o := range opts {
		o(s)
	}
	if s.recorder == nil {
		rec, err := coremetrics.NewRecorder(cfg.Metrics.Recorders)
		if err != nil {
			return nil, fmt.Errorf("metrics recorder: %w", err)
		}
		s.recorder = rec
	}
	return s, nil
}

// Close flushes buffered metrics.
func (s *Service) Close() error {
	if f, ok := s.recorder.(coremetrics.Flusher); ok {
		return f.Flush()
	}
	return nil
}

// DemandResult describes a finished demand run.
type DemandResult struct {
	RunID         string
	Seed          uint64
	Schedule      *demand.Schedule
	Stats         demand.Stats
	RoutesPath    string
	HistogramPath string
	Published     bool
}

// RunDemand samples a schedule from dc, writes the routes file and the
// optional histogram, and publishes the schedule when MQTT is enabled.
func (s *Service) RunDemand(ctx context.Context, dc config.DemandConfig) (*DemandResult, error) {
	start := time.Now()
	res := &DemandResult{RunID: uuid.NewString(), RoutesPath: dc.Output}

	req, err := dc.Request()
	if err != nil {
		return nil, err
	}
	res.Seed = uint64(dc.Seed)
	if dc.Seed == 0 {
		res.Seed = uint64(start.UnixNano())
		s.log.Infof("no seed configured, using %d", res.Seed)
	}
	sched, err := demand.NewSeededSampler(res.Seed).Generate(req)
	if err != nil {
		return nil, err
	}
	res.Schedule = sched
	res.Stats = sched.Stats()
	s.log.Infof("run %s: sampled %d vehicles over %d depart times (mean %.1fs, std %.1fs)",
		res.RunID, res.Stats.Retained, res.Stats.DistinctTimes, res.Stats.Mean, res.Stats.StdDev)
	if d := sched.Dropped(); d > 0 {
		s.log.Warnf("run %s: %d vehicles lost to depart time collisions", res.RunID, d)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	recs := sched.Records()
	if err := xmldoc.WriteRoutesFile(dc.Output, recs); err != nil {
		return nil, fmt.Errorf("write routes: %w", err)
	}
	s.log.Infof("wrote %d vehicles to %s", len(recs), dc.Output)

	switch {
	case !dc.Histogram.Enabled:
	case sched.Len() == 0:
		s.log.Infof("schedule is empty, skipping histogram")
	default:
		path, err := report.WriteHistogram(dc.Histogram.Dir, dc.Network, sched, req)
		if err != nil {
			return nil, fmt.Errorf("write histogram: %w", err)
		}
		res.HistogramPath = path
		s.log.Infof("wrote histogram to %s", path)
	}

	if dc.MQTT.Enabled {
		if err := s.publish(ctx, dc, res.RunID, recs); err != nil {
			return nil, err
		}
		res.Published = true
	}

	s.record(s.recorder.RecordDemand(coremetrics.DemandEvent{
		RunID:         res.RunID,
		Network:       dc.Network,
		Mode:          req.Mode.String(),
		Requested:     res.Stats.Requested,
		Retained:      res.Stats.Retained,
		DistinctTimes: res.Stats.DistinctTimes,
		Duration:      time.Since(start),
		Time:          start,
	}))
	return res, nil
}

func (s *Service) publish(ctx context.Context, dc config.DemandConfig, runID string, recs []model.DepartureRecord) (err error) {
	pub, err := s.newPublisher(dc.MQTT)
	if err != nil {
		return fmt.Errorf("mqtt publisher: %w", err)
	}
	defer func() {
		if cerr := pub.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	if err := pub.Publish(ctx, runID, dc.Network, recs); err != nil {
		return fmt.Errorf("publish schedule: %w", err)
	}
	s.log.Infof("published %d departures for %s", len(recs), dc.Network)
	return nil
}

// Kind selects which simulator log a trace run reads.
type Kind string

const (
	// KindSteps reads per-timestep emission logs.
	KindSteps Kind = "steps"
	// KindTrips reads tripinfo logs.
	KindTrips Kind = "trips"
)

// ErrUnknownKind is returned for unsupported trace kinds.
var ErrUnknownKind = errors.New("unknown trace kind")

// ParseKind converts a command argument into a Kind.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "steps", "emission":
		return KindSteps, nil
	case "trips", "tripinfo":
		return KindTrips, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
	}
}

// TraceResult describes a finished trace run.
type TraceResult struct {
	RunID    string
	Kind     Kind
	Output   string
	Stats    trace.Stats
	Recovery xmldoc.Recovery
}

type recoveringParser interface {
	LastRecovery() xmldoc.Recovery
}

// RunTrace converts the simulator log at src into a CSV at out, or next to
// src when out is empty, then forwards the table to the configured sinks.
func (s *Service) RunTrace(ctx context.Context, kind Kind, src, out string) (*TraceResult, error) {
	start := time.Now()
	res := &TraceResult{RunID: uuid.NewString(), Kind: kind, Output: out}
	if res.Output == "" {
		res.Output = trace.DefaultOutputPath(src)
	}

	root, err := s.parse(src)
	if err != nil {
		return nil, err
	}
	if rp, ok := s.parser.(recoveringParser); ok {
		res.Recovery = rp.LastRecovery()
		if res.Recovery.Repaired() {
			s.log.Warnf("%s was malformed and has been repaired: %s", src, res.Recovery)
		}
	}

	var tbl trace.Table
	switch kind {
	case KindSteps:
		recs, st := trace.ExtractSteps(root)
		res.Stats = st
		tbl, err = trace.StepTable(recs)
	case KindTrips:
		recs, st := trace.ExtractTrips(root)
		res.Stats = st
		tbl, err = trace.TripTable(recs)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	if res.Stats.Dropped > 0 {
		s.log.Debugw("dropped entries with missing or invalid attributes", map[string]any{
			"source": src, "seen": res.Stats.Seen, "dropped": res.Stats.Dropped,
		})
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", src, err)
	}
	tbl.RunID = res.RunID

	if err := export.WriteTableFile(res.Output, tbl); err != nil {
		return nil, fmt.Errorf("write csv: %w", err)
	}
	s.log.Infof("run %s: wrote %d %s rows to %s", res.RunID, tbl.Len(), tbl.Name, res.Output)

	if err := s.sink(ctx, tbl); err != nil {
		return nil, err
	}

	s.record(s.recorder.RecordExtraction(coremetrics.ExtractionEvent{
		RunID:     res.RunID,
		Kind:      tbl.Name,
		Source:    src,
		Seen:      res.Stats.Seen,
		Kept:      res.Stats.Kept,
		Dropped:   res.Stats.Dropped,
		Recovered: res.Recovery.Repaired(),
		Duration:  time.Since(start),
		Time:      start,
	}))
	return res, nil
}

func (s *Service) parse(src string) (*trace.Node, error) {
	f, err := os.Open(src)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	root, err := s.parser.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", src, err)
	}
	return root, nil
}

func (s *Service) sink(ctx context.Context, tbl trace.Table) (err error) {
	if len(s.cfg.Trace.Sinks) == 0 {
		return nil
	}
	snk, err := trace.NewSink(s.cfg.Trace.Sinks)
	if err != nil {
		return fmt.Errorf("trace sinks: %w", err)
	}
	defer func() {
		if cerr := snk.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	if err := snk.Write(ctx, tbl); err != nil {
		return fmt.Errorf("trace sinks: %w", err)
	}
	return nil
}

func (s *Service) record(err error) {
	if err != nil {
		s.log.Warnf("metrics recorder: %v", err)
	}
}
