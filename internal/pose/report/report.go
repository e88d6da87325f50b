// Package report renders analysis results for offline review: an HTML page
// of interactive charts and a static PNG of joint angles over time.
package report

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/banshee-data/form.report/internal/pose/l2geometry"
	"github.com/banshee-data/form.report/internal/pose/l5activation"
	"github.com/banshee-data/form.report/internal/pose/l6assessment"
	"github.com/banshee-data/form.report/internal/pose/pipeline"
)

const (
	chartWidth  = "100%"
	chartHeight = "420px"
)

// WriteHTML renders results as a single page with angle, quality and muscle
// activation charts. Results are plotted in the order given.
func WriteHTML(w io.Writer, title string, results []pipeline.AnalysisResult) error {
	if len(results) == 0 {
		return fmt.Errorf("no results to render")
	}

	xs := timeAxis(results)
	subtitle := fmt.Sprintf("%s, %d frames", results[0].Exercise, len(results))

	page := components.NewPage()
	page.SetPageTitle(title)
	page.AddCharts(
		angleChart(title, subtitle, xs, results),
		qualityChart(xs, results),
		activationChart(xs, results),
		errorChart(results),
	)

	if err := page.Render(w); err != nil {
		return fmt.Errorf("render error: %w", err)
	}
	return nil
}

func timeAxis(results []pipeline.AnalysisResult) []string {
	xs := make([]string, len(results))
	for i, r := range results {
		xs[i] = fmt.Sprintf("%.2f", r.Timestamp)
	}
	return xs
}

func newLine(title, subtitle, yName string) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: title, Width: chartWidth, Height: chartHeight}),
		charts.WithTitleOpts(opts.Title{Title: title, Subtitle: subtitle}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Top: "bottom"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "t (s)", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Name: yName}),
	)
	return line
}

// lineData converts a per-result value into series points. Results without
// a value get a nil point so the line shows a gap.
func lineData(results []pipeline.AnalysisResult, value func(pipeline.AnalysisResult) (float64, bool)) []opts.LineData {
	data := make([]opts.LineData, len(results))
	for i, r := range results {
		if v, ok := value(r); ok {
			data[i] = opts.LineData{Value: v}
		} else {
			data[i] = opts.LineData{Value: nil}
		}
	}
	return data
}

// presentAngles lists the angles seen in at least one result, in the stable
// AngleIDs order.
func presentAngles(results []pipeline.AnalysisResult) []l2geometry.AngleID {
	seen := make(map[l2geometry.AngleID]bool)
	for _, r := range results {
		if r.Pose == nil {
			continue
		}
		for id := range r.Pose.Angles {
			seen[id] = true
		}
	}
	var out []l2geometry.AngleID
	for _, id := range l2geometry.AngleIDs() {
		if seen[id] {
			out = append(out, id)
		}
	}
	return out
}

func angleChart(title, subtitle string, xs []string, results []pipeline.AnalysisResult) *charts.Line {
	line := newLine(title+": joint angles", subtitle, "deg")
	line.SetXAxis(xs)
	for _, id := range presentAngles(results) {
		line.AddSeries(string(id), lineData(results, func(r pipeline.AnalysisResult) (float64, bool) {
			if r.Pose == nil {
				return 0, false
			}
			v, ok := r.Pose.Angles[id]
			return v, ok
		}))
	}
	return line
}

func qualityChart(xs []string, results []pipeline.AnalysisResult) *charts.Line {
	mode := results[0].Exercise.Mode
	line := newLine("Quality", string(mode), "score")
	line.SetXAxis(xs)
	line.AddSeries("overall", lineData(results, func(r pipeline.AnalysisResult) (float64, bool) {
		return r.Overall(), true
	}), charts.WithLineStyleOpts(opts.LineStyle{Width: 3}))
	for _, m := range l6assessment.RelevantMetrics(mode) {
		line.AddSeries(string(m), lineData(results, func(r pipeline.AnalysisResult) (float64, bool) {
			return r.Quality.Value(m), true
		}))
	}
	return line
}

func activationChart(xs []string, results []pipeline.AnalysisResult) *charts.Line {
	line := newLine("Muscle activation", "", "activation")
	line.SetXAxis(xs)
	for _, m := range l5activation.MuscleGroups() {
		present := false
		for _, r := range results {
			if _, ok := r.MuscleActivation[m]; ok {
				present = true
				break
			}
		}
		if !present {
			continue
		}
		line.AddSeries(string(m), lineData(results, func(r pipeline.AnalysisResult) (float64, bool) {
			v, ok := r.MuscleActivation[m]
			return v, ok
		}))
	}
	return line
}

// errorChart counts how many frames flagged each technique error.
func errorChart(results []pipeline.AnalysisResult) *charts.Bar {
	counts := ErrorCounts(results)

	var x []string
	var y []opts.BarData
	for _, code := range l6assessment.ExerciseErrors() {
		if n, ok := counts[code]; ok {
			x = append(x, string(code))
			y = append(y, opts.BarData{Value: n})
		}
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: chartWidth, Height: chartHeight}),
		charts.WithTitleOpts(opts.Title{Title: "Technique errors", Subtitle: "frames flagged"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)
	bar.SetXAxis(x).
		AddSeries("frames", y,
			charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Position: "top"}),
		)
	return bar
}

// ErrorCounts returns, per error code, the number of results that flagged it.
func ErrorCounts(results []pipeline.AnalysisResult) map[l6assessment.ExerciseError]int {
	counts := make(map[l6assessment.ExerciseError]int)
	for _, r := range results {
		for _, e := range r.Errors {
			counts[e]++
		}
	}
	return counts
}
