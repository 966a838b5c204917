package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/drelsherif/shaky/internal/models"
	"github.com/drelsherif/shaky/internal/session"
)

// ChartsHandler renders the session report charts server-side.
type ChartsHandler struct {
	log      *zap.Logger
	sessions *session.Manager
}

func NewChartsHandler(log *zap.Logger, sessions *session.Manager) *ChartsHandler {
	return &ChartsHandler{log: log, sessions: sessions}
}

// SessionCharts renders a page with the per-hand tremor magnitude traces
// and the tapping score comparison for the caller's session.
func (h *ChartsHandler) SessionCharts(c *gin.Context) {
	store := sessionIDFromCookie(c)
	if store == "" {
		c.String(http.StatusNotFound, "No assessment session")
		return
	}
	ctrl := h.sessions.Get(store)
	record := ctrl.Record()

	page := components.NewPage()
	page.PageTitle = "Motor Assessment Report"

	if line := generateTremorTraceChart(ctrl); line != nil {
		page.AddCharts(line)
	}
	if bar := generateScoreChart(&record); bar != nil {
		page.AddCharts(bar)
	}
	if len(page.Charts) == 0 {
		c.String(http.StatusNotFound, "No completed phases to chart yet")
		return
	}

	c.Header("Content-Type", "text/html; charset=utf-8")
	if err := page.Render(c.Writer); err != nil {
		h.log.Error("Failed to render session charts", zap.Error(err))
	}
}

// generateTremorTraceChart plots the magnitude series of each completed
// tremor phase. Returns nil when neither hand has run one.
func generateTremorTraceChart(ctrl *session.Controller) *charts.Line {
	left := ctrl.Trace(models.LeftHand, models.TremorTest)
	right := ctrl.Trace(models.RightHand, models.TremorTest)
	if len(left) == 0 && len(right) == 0 {
		return nil
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    "Tremor Magnitude Trace",
			Subtitle: "Acceleration magnitude per sample",
		}),
		charts.WithYAxisOpts(opts.YAxis{Type: "value", Scale: opts.Bool(true)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithDataZoomOpts(opts.DataZoom{Type: "slider"}),
	)

	n := len(left)
	if len(right) > n {
		n = len(right)
	}
	xAxis := make([]string, n)
	for i := range xAxis {
		xAxis[i] = fmt.Sprintf("%d", i)
	}
	line.SetXAxis(xAxis)

	if len(left) > 0 {
		line.AddSeries("Left hand", lineItems(left))
	}
	if len(right) > 0 {
		line.AddSeries("Right hand", lineItems(right))
	}
	line.SetSeriesOptions(charts.WithLineStyleOpts(opts.LineStyle{Width: 2}))
	return line
}

// generateScoreChart compares the per-hand tapping scores. Returns nil when
// no tapping phase has completed.
func generateScoreChart(record *models.SessionRecord) *charts.Bar {
	if record.LeftTapping == nil && record.RightTapping == nil {
		return nil
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Tapping Score by Hand"}),
		charts.WithYAxisOpts(opts.YAxis{Type: "value", Max: 100}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)

	hands := make([]string, 0, 2)
	items := make([]opts.BarData, 0, 2)
	if record.LeftTapping != nil {
		hands = append(hands, "Left")
		items = append(items, opts.BarData{Value: record.LeftTapping.Score})
	}
	if record.RightTapping != nil {
		hands = append(hands, "Right")
		items = append(items, opts.BarData{Value: record.RightTapping.Score})
	}

	bar.SetXAxis(hands).AddSeries("Score", items)
	return bar
}

func lineItems(values []float64) []opts.LineData {
	items := make([]opts.LineData, 0, len(values))
	for _, v := range values {
		items = append(items, opts.LineData{Value: v})
	}
	return items
}
