// chorus-report renders a standalone HTML analytics report for one species'
// season: weekly totals, the daily trend signal and the per-day site
// concentration, all derived from the same precomputed statistics the viewer
// uses.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/skovlyst/chorusmap/pkg/densitymap"
	"github.com/skovlyst/chorusmap/pkg/sources"
)

var (
	dataDirFlag = flag.String("data-dir", "", "Local season dump directory")
	baseURLFlag = flag.String("base-url", "", "Data server base URL (alternative to -data-dir)")
	speciesFlag = flag.String("species", "", "Species to report on")
	binFlag     = flag.Int("bin", 1, "Day-bin size for the totals chart (1 = daily)")
	outFlag     = flag.String("out", "report.html", "Output HTML path")
)

func main() {
	flag.Parse()
	log.SetOutput(os.Stderr)
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	if *dataDirFlag == "" && *baseURLFlag == "" {
		log.Fatal("One of -data-dir or -base-url is required")
	}
	if *speciesFlag == "" {
		log.Fatal("-species is required")
	}

	loader := &sources.Loader{BaseURL: *baseURLFlag, Dir: *dataDirFlag}
	loggers, err := loader.Loggers()
	if err != nil {
		log.Fatalf("Failed to load logger positions: %v", err)
	}
	positions := make(map[string]densitymap.Logger, len(loggers))
	for _, lg := range loggers {
		positions[lg.Name] = lg
	}

	series, err := loader.Series(*speciesFlag)
	if err != nil {
		log.Fatalf("Failed to load detection series: %v", err)
	}

	stats := densitymap.ComputeMapStats(series)
	weeks := densitymap.AggregateByWeek(series, positions)
	binned, binDates := densitymap.BinTotals(stats.DailyTotals, series.Dates, *binFlag)

	page := components.NewPage()
	page.PageTitle = fmt.Sprintf("%s — season report", series.Species)
	page.AddCharts(
		weeklyChart(series.Species, weeks),
		totalsChart(series.Species, binned, binDates, *binFlag),
		trendChart(series.Species, series, stats),
	)

	f, err := os.Create(*outFlag)
	if err != nil {
		log.Fatalf("Failed to create %s: %v", *outFlag, err)
	}
	defer f.Close()
	if err := page.Render(f); err != nil {
		log.Fatalf("Failed to render report: %v", err)
	}
	log.Printf("Wrote %s (%d weeks, %d days, %d active sites)",
		*outFlag, len(weeks), series.Len(), stats.TotalActiveSites)
}

func weeklyChart(species string, weeks []densitymap.WeeklyAggregate) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Theme: "dark", Width: "1100px", Height: "420px"}),
		charts.WithTitleOpts(opts.Title{Title: fmt.Sprintf("%s — weekly detections", species)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithYAxisOpts(opts.YAxis{Name: "detections"}),
	)
	labels := make([]string, len(weeks))
	totals := make([]opts.BarData, len(weeks))
	peaks := make([]opts.BarData, len(weeks))
	for i, wk := range weeks {
		labels[i] = wk.Label
		totals[i] = opts.BarData{Value: wk.Total}
		peaks[i] = opts.BarData{Value: wk.MaxSiteTotal}
	}
	bar.SetXAxis(labels).
		AddSeries("week total", totals).
		AddSeries("busiest site", peaks)
	return bar
}

func totalsChart(species string, binned []float64, dates []time.Time, bin int) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Theme: "dark", Width: "1100px", Height: "420px"}),
		charts.WithTitleOpts(opts.Title{Title: fmt.Sprintf("%s — detections per %d-day bin", species, bin)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)
	labels := make([]string, len(binned))
	data := make([]opts.LineData, len(binned))
	for i, v := range binned {
		labels[i] = dates[i].Format("Jan 2")
		data[i] = opts.LineData{Value: v}
	}
	line.SetXAxis(labels).
		AddSeries("detections", data, charts.WithAreaStyleOpts(opts.AreaStyle{Opacity: opts.Float(0.25)}))
	return line
}

func trendChart(species string, s *densitymap.DetectionSeries, stats *densitymap.SpeciesMapStats) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Theme: "dark", Width: "1100px", Height: "420px"}),
		charts.WithTitleOpts(opts.Title{
			Title:    fmt.Sprintf("%s — trend and concentration", species),
			Subtitle: "trend: change vs trailing 7-day mean, clamped ±100% · concentration: Gini across sites",
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithYAxisOpts(opts.YAxis{Min: -1, Max: 1}),
	)
	labels := make([]string, s.Len())
	trend := make([]opts.LineData, s.Len())
	clustering := make([]opts.LineData, s.Len())
	for d := 0; d < s.Len(); d++ {
		labels[d] = s.Dates[d].Format("Jan 2")
		trend[d] = opts.LineData{Value: stats.DailyTrends[d]}
		clustering[d] = opts.LineData{Value: stats.DailyClustering[d]}
	}
	line.SetXAxis(labels).
		AddSeries("trend", trend, charts.WithLineChartOpts(opts.LineChart{Smooth: opts.Bool(true)})).
		AddSeries("concentration", clustering, charts.WithLineChartOpts(opts.LineChart{Smooth: opts.Bool(true)}))
	return line
}
