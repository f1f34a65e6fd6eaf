package report

import (
	"goanam/domain/anamorphosis"
)

// NoopSink discards all report output; used by headless runs and tests.
type NoopSink struct{}

func (NoopSink) WritePanel(anamorphosis.CurvePanel) error   { return nil }
func (NoopSink) WriteModelSummary(anamorphosis.Model) error { return nil }
func (NoopSink) Flush() error                               { return nil }
