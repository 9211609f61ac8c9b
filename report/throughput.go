package report

import (
	"context"
	"fmt"
	"sort"

	"github.com/sarchlab/trafficsim/apps"
	"github.com/sarchlab/trafficsim/datarecording"
	"github.com/sarchlab/trafficsim/sim"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

// ThroughputCollector is a hook that keeps the cumulative number of bytes
// each application has received over time.
type ThroughputCollector struct {
	series map[string]plotter.XYs
}

// NewThroughputCollector creates an empty collector.
func NewThroughputCollector() *ThroughputCollector {
	return &ThroughputCollector{
		series: make(map[string]plotter.XYs),
	}
}

// Func adds a received packet to the series of its application.
func (c *ThroughputCollector) Func(ctx sim.HookCtx) {
	r, ok := ctx.Item.(apps.RxRecord)
	if !ok {
		return
	}

	c.add(r.App, float64(r.Time), r.Size)
}

func (c *ThroughputCollector) add(app string, t float64, size int) {
	pts := c.series[app]

	total := float64(size)
	if len(pts) > 0 {
		total += pts[len(pts)-1].Y
	}

	c.series[app] = append(pts, plotter.XY{X: t, Y: total})
}

// Apps returns the names of the applications that received data, sorted.
func (c *ThroughputCollector) Apps() []string {
	names := make([]string, 0, len(c.series))
	for name := range c.series {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

// Series returns the cumulative received bytes of an application.
func (c *ThroughputCollector) Series(app string) plotter.XYs {
	return c.series[app]
}

// Plot draws one step line of cumulative received bytes per application.
func (c *ThroughputCollector) Plot(title string) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Virtual time (s)"
	p.Y.Label.Text = "Bytes received"
	p.Legend.Top = true
	p.Legend.Left = true

	for i, name := range c.Apps() {
		line, err := plotter.NewLine(c.series[name])
		if err != nil {
			return nil, fmt.Errorf("plotting %s: %w", name, err)
		}

		line.StepStyle = plotter.PreStep
		line.Color = plotutil.Color(i)
		line.Dashes = plotutil.Dashes(i)

		p.Add(line)
		p.Legend.Add(name, line)
	}

	p.Add(plotter.NewGrid())

	return p, nil
}

// SavePlot draws the plot into a file. The format follows the extension
// (.png, .svg, .pdf, ...).
func (c *ThroughputCollector) SavePlot(title, path string) error {
	p, err := c.Plot(title)
	if err != nil {
		return err
	}

	return p.Save(6*vg.Inch, 4*vg.Inch, path)
}

type rxRow struct {
	App  string
	Time float64
	Size int
}

// LoadThroughput rebuilds the cumulative received bytes from the packets a
// run recorded.
func LoadThroughput(
	ctx context.Context,
	reader datarecording.DataReader,
) (*ThroughputCollector, error) {
	reader.MapTable(apps.RxTableName, rxRow{})

	rows, _, err := reader.Query(ctx, apps.RxTableName,
		datarecording.QueryParams{OrderBy: "Time"})
	if err != nil {
		return nil, fmt.Errorf("loading throughput: %w", err)
	}

	c := NewThroughputCollector()
	for _, row := range rows {
		r := row.(*rxRow)
		c.add(r.App, r.Time, r.Size)
	}

	return c, nil
}
