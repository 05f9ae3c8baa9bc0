package controller

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"weatherdash/internal/modules/weather/charts"
	"weatherdash/internal/modules/weather/repository"
	"weatherdash/internal/modules/weather/types"
	"weatherdash/internal/modules/weather/views"
	"weatherdash/internal/utils"
)

// writePage renders a page or fragment, answering 500 when the template fails.
func writePage(w http.ResponseWriter, area string, render func(io.Writer) error) {
	var buf bytes.Buffer
	if err := render(&buf); err != nil {
		slog.Error(area+": template render failed", "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to render page")
		return
	}
	utils.WriteHTML(w, http.StatusOK, buf.Bytes())
}

func (c *weatherControllerImpl) handleHome(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	data := &views.HomeData{
		Layout:   views.Layout{Title: "Home", Active: "home"},
		ImageURL: homeImageURL,
	}
	info, err := c.service.Info()
	switch {
	case err == nil:
		data.Dataset = &views.DatasetSummary{
			Source: info.Source,
			Rows:   info.Rows,
			First:  info.First.Format("2006-01-02"),
			Last:   info.Last.Format("2006-01-02"),
		}
	case !errors.Is(err, repository.ErrNotLoaded):
		slog.Error("home: get dataset info failed", "error", err)
	}
	writePage(w, "home", func(out io.Writer) error { return views.RenderHome(out, data) })
}

func (c *weatherControllerImpl) handleData(w http.ResponseWriter, r *http.Request) {
	preview, err := c.service.Preview()
	if err != nil {
		slog.Error("data: get preview failed", "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to load dataset")
		return
	}

	data := &views.DataPageData{Layout: views.Layout{Title: "Data", Active: "data"}}
	if info, err := c.service.Info(); err == nil {
		data.Month = info.First.Format("January 2006")
	}
	for _, p := range preview {
		if len(p.Values) == 0 {
			continue
		}
		data.Rows = append(data.Rows, views.PreviewRow{
			Key:          p.Column.Key(),
			Header:       p.Column.Header(),
			SparklineURL: "/charts/preview/" + p.Column.Key(),
			Count:        p.Stats.Count,
			Min:          formatValue(p.Stats.Min),
			Max:          formatValue(p.Stats.Max),
			Mean:         formatValue(p.Stats.Mean),
		})
	}
	writePage(w, "data", func(out io.Writer) error { return views.RenderData(out, data) })
}

func (c *weatherControllerImpl) handleVisualization(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	rng, ok := pageMonthRange(q)
	if !ok {
		slog.Warn("visualization: invalid month range", "from", q.Get("from"), "to", q.Get("to"))
	}
	selected := q.Get("variable")

	options := make([]views.Option, 0, len(types.Variables))
	for _, v := range types.Variables {
		options = append(options, views.Option{Value: string(v), Label: v.Label(), Selected: string(v) == selected})
	}
	data := &views.VisualizationData{
		Layout:    views.Layout{Title: "Visualization", Active: "visualization"},
		Variables: options,
		From:      rng.From,
		To:        rng.To,
		Chart:     c.chartData(selected, rng),
	}
	writePage(w, "visualization", func(out io.Writer) error { return views.RenderVisualization(out, data) })
}

func (c *weatherControllerImpl) handleChartPartial(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	rng, ok := pageMonthRange(q)
	if !ok {
		slog.Warn("chart partial: invalid month range", "from", q.Get("from"), "to", q.Get("to"))
	}
	data := c.chartData(q.Get("variable"), rng)
	writePage(w, "chart partial", func(out io.Writer) error { return views.RenderChartPartial(out, &data) })
}

// chartData builds the chart partial for a variable key. Nothing is shown
// until a variable is chosen.
func (c *weatherControllerImpl) chartData(key string, rng types.MonthRange) views.ChartData {
	data := views.ChartData{Variable: key, From: rng.From, To: rng.To}
	if key == "" {
		return data
	}
	v, ok := types.ParseVariable(key)
	if !ok {
		slog.Warn("chart: unknown variable", "variable", key)
		data.Message = fmt.Sprintf("Unknown variable %q.", key)
		return data
	}
	data.Label = v.Label()

	n, err := c.service.Count(rng)
	if err != nil {
		slog.Error("chart: count observations failed", "error", err)
		data.Message = "Failed to load the dataset."
		return data
	}
	if n == 0 {
		data.Message = fmt.Sprintf("No data for months %d to %d.", rng.From, rng.To)
		return data
	}
	data.Rows = n
	data.URL = chartURL(v, rng)
	return data
}

func (c *weatherControllerImpl) handleFun(w http.ResponseWriter, r *http.Request) {
	data := &views.FunData{Layout: views.Layout{Title: "Fun", Active: "fun"}, Fact: funFact}
	writePage(w, "fun", func(out io.Writer) error { return views.RenderFun(out, data) })
}

func (c *weatherControllerImpl) handleChart(w http.ResponseWriter, r *http.Request) {
	v, ok := types.ParseVariable(r.PathValue("variable"))
	if !ok {
		utils.WriteError(w, http.StatusNotFound, fmt.Sprintf("unknown variable %q", r.PathValue("variable")))
		return
	}
	rng, err := parseMonthRange(r.URL.Query())
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	png, err := c.service.RenderChart(v, rng)
	if err != nil {
		writeRenderError(w, "chart", err)
		return
	}
	utils.WritePNG(w, png)
}

func (c *weatherControllerImpl) handlePreviewChart(w http.ResponseWriter, r *http.Request) {
	col, ok := types.ParseColumn(r.PathValue("column"))
	if !ok {
		utils.WriteError(w, http.StatusNotFound, fmt.Sprintf("unknown column %q", r.PathValue("column")))
		return
	}
	png, err := c.service.RenderPreview(col)
	if err != nil {
		writeRenderError(w, "preview chart", err)
		return
	}
	utils.WritePNG(w, png)
}

func writeRenderError(w http.ResponseWriter, area string, err error) {
	if errors.Is(err, charts.ErrNoData) {
		utils.WriteError(w, http.StatusNotFound, "no data to plot for the selected months")
		return
	}
	slog.Error(area+": render failed", "error", err)
	utils.WriteError(w, http.StatusInternalServerError, "failed to render chart")
}
