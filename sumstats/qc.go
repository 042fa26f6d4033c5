package sumstats

import (
	"fmt"
	"os"
	"sort"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// LambdaGC computes the genomic inflation factor from the effect estimates,
// treating them as z-scores: the median observed chi-square over the median
// of the 1-df chi-square distribution. Values far above 1 suggest
// stratification or a mis-specified allele frame.
func LambdaGC(records []MaRecord) float64 {
	if len(records) == 0 {
		return 0
	}

	chis := make([]float64, 0, len(records))
	for _, r := range records {
		chis = append(chis, r.B*r.B)
	}
	sort.Float64s(chis)

	median := stat.Quantile(0.5, stat.Empirical, chis, nil)
	expected := distuv.ChiSquared{K: 1}.Quantile(0.5)
	return median / expected
}

func pValueHistogram(records []MaRecord) *charts.Bar {
	const bins = 20
	counts := make([]int, bins)
	for _, r := range records {
		bin := int(r.P * bins)
		if bin >= bins {
			bin = bins - 1
		}
		if bin < 0 {
			bin = 0
		}
		counts[bin]++
	}

	var labels []string
	var data []opts.BarData
	for i, c := range counts {
		labels = append(labels, fmt.Sprintf("%.2f", float64(i)/bins))
		data = append(data, opts.BarData{Value: c})
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Theme: types.ThemeWesteros}),
		charts.WithTitleOpts(opts.Title{Title: "P-value distribution"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "p"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Count"}),
	)
	bar.SetXAxis(labels).AddSeries("variants", data)
	return bar
}

func freqEffectScatter(records []MaRecord) *charts.Scatter {
	var points []opts.ScatterData
	for _, r := range records {
		points = append(points, opts.ScatterData{Value: []interface{}{r.Freq, r.B}})
	}

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Theme: types.ThemeWesteros}),
		charts.WithTitleOpts(opts.Title{Title: "Effect vs A1 frequency"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "A1 frequency", Type: "value"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Effect (b)"}),
	)
	scatter.AddSeries("variants", points)
	return scatter
}

// WriteQCReport renders an HTML report with the p-value histogram and the
// effect-by-frequency scatter for a normalized statistics file.
func WriteQCReport(records []MaRecord, htmlPath string) error {
	page := components.NewPage()
	page.SetLayout(components.PageFlexLayout)
	page.AddCharts(pValueHistogram(records), freqEffectScatter(records))

	f, err := os.Create(htmlPath)
	if err != nil {
		return err
	}
	defer f.Close()

	return page.Render(f)
}
