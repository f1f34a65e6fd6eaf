package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math"
	"os"

	"github.com/joho/godotenv"

	"goanam/adapters/excel"
	"goanam/adapters/report"
	"goanam/adapters/stats"
	"goanam/app"
	"goanam/domain/core"
	"goanam/internal/config"
)

func main() {
	var (
		dataFile  = flag.String("data", "", "CSV or XLSX file with sample data (required)")
		valueCol  = flag.String("value", "value", "value column name")
		weightCol = flag.String("weight", "", "declustering weight column name (optional)")
		variable  = flag.String("name", "grade", "variable name for the model")
		order     = flag.Int("order", 0, "Hermite truncation order (0 uses HERMITE_ORDER)")
		blockR    = flag.Float64("r", 0, "support-effect coefficient for a block model (0 skips)")
		zpmin     = flag.Float64("zpmin", math.NaN(), "lower practical bound (default: data minimum)")
		zpmax     = flag.Float64("zpmax", math.NaN(), "upper practical bound (default: data maximum)")
		reportOut = flag.String("report", "", "output workbook path (overrides REPORT_FILE)")
	)
	flag.Parse()

	if *dataFile == "" {
		flag.Usage()
		os.Exit(2)
	}

	if err := godotenv.Load(); err != nil {
		log.Printf("[Main] no .env file loaded: %v", err)
	}
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[Main] configuration error: %v", err)
	}
	if *order == 0 {
		*order = cfg.Fit.DefaultOrder
	}
	out := cfg.Paths.ReportFile
	if *reportOut != "" {
		out = *reportOut
	}

	cols, err := excel.NewDataReader(*dataFile).ReadColumns(*valueCol, *weightCol)
	if err != nil {
		log.Fatalf("[Main] reading data: %v", err)
	}

	descriptive := stats.NewDescriptive()
	summary, err := descriptive.Summarize(cols.Values, cols.Weights, cols.Weights != nil)
	if err != nil {
		log.Fatalf("[Main] summarizing data: %v", err)
	}
	fmt.Printf("samples: %d\n", len(cols.Values))
	fmt.Printf("min=%.6g max=%.6g mean=%.6g variance=%.6g cv=%.4f\n",
		summary.Min, summary.Max, summary.Mean, summary.Variance, summary.CV)
	fmt.Printf("quartiles: %.6g / %.6g / %.6g\n",
		summary.Quantile[0], summary.Quantile[1], summary.Quantile[2])

	sink := excel.NewReportWriter(out)
	svc := app.NewCalibrationService(stats.NewTableBuilder(), stats.NewNormalScorer(), descriptive, sink)

	req := app.CalibrationRequest{
		Variable: core.VariableKey(*variable),
		Values:   cols.Values,
		Weights:  cols.Weights,
		Order:    *order,
	}
	if !math.IsNaN(*zpmin) {
		req.ZPMin = zpmin
	}
	if !math.IsNaN(*zpmax) {
		req.ZPMax = zpmax
	}

	model, err := svc.Calibrate(context.Background(), req)
	if err != nil {
		log.Fatalf("[Main] calibration failed: %v", err)
	}

	fmt.Printf("model %s fitted: order=%d varGap=%.6g\n",
		model.ID, model.Order, model.Diagnostics.VarianceGap)
	fmt.Printf("practical interval: [%.6g, %.6g]  authorized interval: [%.6g, %.6g]\n",
		model.Anchors.ZPMin, model.Anchors.ZPMax, model.Anchors.ZAMin, model.Anchors.ZAMax)

	if *blockR > 0 {
		block, err := svc.CalibrateBlock(model, *blockR, nil, nil)
		if err != nil {
			log.Fatalf("[Main] block calibration failed: %v", err)
		}
		fmt.Printf("block model: r=%.4g authorized [%.6g, %.6g]\n",
			block.R, block.Anchors.ZAMin, block.Anchors.ZAMax)
	}

	if err := sink.Flush(); err != nil {
		log.Fatalf("[Main] writing report: %v", err)
	}
	fmt.Printf("report written to %s\n", out)

	// Markdown summary next to the workbook.
	md := report.ModelMarkdown(*model)
	mdPath := out + ".md"
	if err := os.WriteFile(mdPath, []byte(md), 0o644); err != nil {
		log.Fatalf("[Main] writing markdown summary: %v", err)
	}
	fmt.Printf("summary written to %s\n", mdPath)
}
