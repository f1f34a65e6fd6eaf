package app

import (
	"context"
	"fmt"
	"log"
	"math"

	"golang.org/x/sync/errgroup"

	"goanam/domain/anamorphosis"
	"goanam/domain/core"
	"goanam/internal/calibration"
	"goanam/internal/errors"
	"goanam/internal/hermite"
	"goanam/ports"
)

// CalibrationService orchestrates the anamorphosis workflow: empirical table,
// Hermite fit, curve evaluation, control points, transforms and effect
// coefficients. Fitted models are immutable; every method is safe for
// concurrent use as long as callers do not share output buffers.
type CalibrationService struct {
	tables      ports.TableBuilder
	scorer      ports.NormalScorer
	descriptive ports.Descriptive
	sink        ports.ReportSink
}

// NewCalibrationService creates a calibration service. A nil sink disables
// reporting.
func NewCalibrationService(tables ports.TableBuilder, scorer ports.NormalScorer, descriptive ports.Descriptive, sink ports.ReportSink) *CalibrationService {
	return &CalibrationService{
		tables:      tables,
		scorer:      scorer,
		descriptive: descriptive,
		sink:        sink,
	}
}

// CalibrationRequest carries one variable's raw data and fit settings.
type CalibrationRequest struct {
	Variable core.VariableKey `json:"variable"`
	Values   []float64        `json:"values"`
	Weights  []float64        `json:"weights,omitempty"`
	Order    int              `json:"order"`

	// Mean overrides the computed mean of the table when set (an externally
	// declustered mean, typically).
	Mean *float64 `json:"mean,omitempty"`

	// Practical bounds; min/max of the table when nil.
	ZPMin *float64 `json:"zpmin,omitempty"`
	ZPMax *float64 `json:"zpmax,omitempty"`
}

// Calibrate fits a point-support anamorphosis for one variable.
func (s *CalibrationService) Calibrate(ctx context.Context, req CalibrationRequest) (*anamorphosis.Model, error) {
	if req.Order < 1 {
		return nil, errors.BadOrder(req.Order)
	}

	table, err := s.tables.Build(req.Values, req.Weights)
	if err != nil {
		return nil, errors.Wrap(err, "building transformation table")
	}

	h, err := hermite.Matrix(table.Y, req.Order)
	if err != nil {
		return nil, err
	}
	pci, pdf, err := hermite.FitPCI(table.Z, table.Y, h, req.Mean)
	if err != nil {
		return nil, err
	}
	zana, err := hermite.Expand(pci, h, 1)
	if err != nil {
		return nil, err
	}

	bounds, err := calibration.Authorized(zana, table.Z, table.Y, req.ZPMin, req.ZPMax)
	if err != nil {
		return nil, errors.Wrap(err, "locating control points")
	}
	anchors := anamorphosis.AnchorsFrom(zana, table.Z, table.Y, bounds)

	diag, err := s.diagnostics(req, table, pci)
	if err != nil {
		return nil, err
	}

	model := &anamorphosis.Model{
		ID:          core.ModelID(core.NewID()),
		Variable:    req.Variable,
		Order:       req.Order,
		Table:       table,
		PCI:         pci,
		PDF:         pdf,
		ZAna:        zana,
		Bounds:      bounds,
		Anchors:     anchors,
		Diagnostics: diag,
		CreatedAt:   core.Now(),
	}

	log.Printf("[Calibration] fitted %s: order=%d n=%d varGap=%.4g bounds=%+v",
		req.Variable, req.Order, table.Len(), diag.VarianceGap, bounds)

	if err := s.report(model); err != nil {
		return nil, errors.Wrap(err, "writing calibration report")
	}
	return model, nil
}

// CalibrateBatch fits several variables concurrently. The first failure
// cancels the remaining fits.
func (s *CalibrationService) CalibrateBatch(ctx context.Context, reqs []CalibrationRequest) ([]*anamorphosis.Model, error) {
	models := make([]*anamorphosis.Model, len(reqs))
	g, ctx := errgroup.WithContext(ctx)
	for i, req := range reqs {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			m, err := s.Calibrate(ctx, req)
			if err != nil {
				return errors.Wrapf(err, "calibrating %s", req.Variable)
			}
			models[i] = m
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return models, nil
}

// CalibrateBlock derives a block-support anamorphosis from a fitted point
// model and a support-effect coefficient r. Block curves carry no empirical
// anchor, so the practical interval spans the whole grid and the authorized
// scan runs against the model's practical anchor values unless overridden.
func (s *CalibrationService) CalibrateBlock(model *anamorphosis.Model, r float64, zpmin, zpmax *float64) (*anamorphosis.BlockModel, error) {
	if r <= 0 || r > 1 {
		return nil, errors.InvalidInput(fmt.Sprintf("support coefficient r must be in (0,1], got %g", r))
	}

	h, err := hermite.Matrix(model.Table.Y, model.Order)
	if err != nil {
		return nil, err
	}
	zana, err := hermite.Expand(model.PCI, h, r)
	if err != nil {
		return nil, err
	}

	pmin := model.Anchors.ZPMin
	if zpmin != nil {
		pmin = *zpmin
	}
	pmax := model.Anchors.ZPMax
	if zpmax != nil {
		pmax = *zpmax
	}

	bounds, err := calibration.AuthorizedBlock(zana, model.Table.Y, pmin, pmax)
	if err != nil {
		return nil, errors.Wrap(err, "locating block control points")
	}
	anchors := anamorphosis.BlockAnchorsFrom(zana, model.Table.Y, bounds)

	block := &anamorphosis.BlockModel{
		ModelID: model.ID,
		R:       r,
		ZAna:    zana,
		Bounds:  bounds,
		Anchors: anchors,
	}

	log.Printf("[Calibration] block model for %s: r=%.4g bounds=%+v", model.Variable, r, bounds)

	if s.sink != nil {
		panel := anamorphosis.CurvePanel{
			Title: fmt.Sprintf("%s block anamorphosis (r=%.4g)", model.Variable, r),
			Gauss: model.Table.Y,
			Series: []anamorphosis.Series{
				{Label: "point", Values: model.ZAna},
				{Label: "block", Values: zana},
			},
		}
		if err := s.sink.WritePanel(panel); err != nil {
			return nil, errors.Wrap(err, "writing block panel")
		}
	}
	return block, nil
}

// Effects solves the support and information effect coefficients against the
// target block variance, smoothed-estimate variance and block covariance.
func (s *CalibrationService) Effects(model *anamorphosis.Model, varZv, varZvEst, covar float64) (anamorphosis.EffectCoefficients, error) {
	r, err := calibration.SupportR(model.PCI, varZv)
	if err != nil {
		return anamorphosis.EffectCoefficients{}, err
	}
	sc, err := calibration.InfoS(model.PCI, varZvEst)
	if err != nil {
		return anamorphosis.EffectCoefficients{}, err
	}
	ro, err := calibration.InfoRo(model.PCI, r, sc, covar)
	if err != nil {
		return anamorphosis.EffectCoefficients{}, err
	}

	log.Printf("[Calibration] effect coefficients for %s: r=%.6g s=%.6g ro=%.6g",
		model.Variable, r, sc, ro)
	return anamorphosis.EffectCoefficients{R: r, S: sc, Ro: ro}, nil
}

// GaussianToRaw converts Gaussian values through the fitted point model.
func (s *CalibrationService) GaussianToRaw(model *anamorphosis.Model, ys []float64) []float64 {
	return calibration.YToZ(ys, model.PCI, 1, model.Anchors)
}

// GaussianToRawBlock converts Gaussian values through a block model.
func (s *CalibrationService) GaussianToRawBlock(model *anamorphosis.Model, block *anamorphosis.BlockModel, ys []float64) []float64 {
	return calibration.YToZ(ys, model.PCI, block.R, block.Anchors)
}

// RawToGaussian converts raw values through the fitted point model.
func (s *CalibrationService) RawToGaussian(model *anamorphosis.Model, zs []float64) ([]float64, error) {
	return calibration.ZToYLinear(zs, model.Table, model.Anchors)
}

// NormalScores transforms raw values to normal scores against the model table.
func (s *CalibrationService) NormalScores(model *anamorphosis.Model, values []float64) ([]float64, error) {
	return s.scorer.Score(values, model.Table)
}

// BackTransform converts normal scores to raw values with tail extrapolation.
func (s *CalibrationService) BackTransform(model *anamorphosis.Model, scores []float64, tail anamorphosis.TailModel) ([]float64, error) {
	return s.scorer.Back(scores, model.Table, tail)
}

func (s *CalibrationService) diagnostics(req CalibrationRequest, table anamorphosis.Table, pci []float64) (anamorphosis.FitDiagnostics, error) {
	summary, err := s.descriptive.Summarize(req.Values, req.Weights, req.Weights != nil)
	if err != nil {
		return anamorphosis.FitDiagnostics{}, errors.Wrap(err, "summarizing input data")
	}
	pciVar := hermite.VarPCI(pci)
	return anamorphosis.FitDiagnostics{
		Mean:              pci[0],
		EmpiricalVariance: summary.Variance,
		PCIVariance:       pciVar,
		VarianceGap:       math.Abs(summary.Variance - pciVar),
	}, nil
}

func (s *CalibrationService) report(model *anamorphosis.Model) error {
	if s.sink == nil {
		return nil
	}
	panel := anamorphosis.CurvePanel{
		Title: fmt.Sprintf("%s point anamorphosis", model.Variable),
		Gauss: model.Table.Y,
		Series: []anamorphosis.Series{
			{Label: "empirical", Values: model.Table.Z},
			{Label: "fitted", Values: model.ZAna},
		},
	}
	if err := s.sink.WritePanel(panel); err != nil {
		return err
	}
	return s.sink.WriteModelSummary(*model)
}
