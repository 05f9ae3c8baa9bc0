package views

import (
	"bytes"
	"io"
	"strings"
	"testing"
	"testing/fstest"
)

func TestLoadTemplates_success(t *testing.T) {
	err := LoadTemplates()
	if err != nil {
		t.Fatalf("LoadTemplates() = %v; want nil", err)
	}
	if pagesTmpl == nil {
		t.Fatal("LoadTemplates() left pagesTmpl nil")
	}
}

func TestLoadTemplates_failure_sub(t *testing.T) {
	// Empty FS has no "templates" directory; fs.Sub fails.
	emptyFS := fstest.MapFS{}
	err := loadTemplatesFromFS(emptyFS, "templates")
	if err == nil {
		t.Fatal("loadTemplatesFromFS(emptyFS, \"templates\") = nil; want error")
	}
}

func TestLoadTemplates_failure_parse(t *testing.T) {
	badFS := fstest.MapFS{
		"templates/base.html":           {Data: []byte("{{ .")},
		"templates/partials/chart.html": {Data: []byte("")},
	}
	err := loadTemplatesFromFS(badFS, "templates")
	if err == nil {
		t.Fatal("loadTemplatesFromFS(badFS, \"templates\") = nil; want error")
	}
}

func TestRender_notLoaded(t *testing.T) {
	prev := pagesTmpl
	pagesTmpl = nil
	t.Cleanup(func() { pagesTmpl = prev })

	var buf bytes.Buffer
	err := RenderHome(&buf, &HomeData{})
	if err == nil {
		t.Fatal("RenderHome() = nil; want error when templates not loaded")
	}
	if !strings.Contains(err.Error(), "not loaded") {
		t.Errorf("err = %q; want message containing \"not loaded\"", err.Error())
	}
}

func mustLoad(t *testing.T) {
	t.Helper()
	if err := LoadTemplates(); err != nil {
		t.Fatalf("LoadTemplates(): %v", err)
	}
}

func assertContains(t *testing.T, out string, want ...string) {
	t.Helper()
	for _, w := range want {
		if !strings.Contains(out, w) {
			t.Errorf("output missing %q; got %q", w, out)
		}
	}
}

func TestRenderHome(t *testing.T) {
	mustLoad(t)

	var buf bytes.Buffer
	err := RenderHome(&buf, &HomeData{
		Layout:   Layout{Title: "Home", Active: "home"},
		ImageURL: "https://example.com/weather.jpg",
		Dataset:  &DatasetSummary{Source: "open-meteo-subset.csv", Rows: 8760, First: "2023-01-01", Last: "2023-12-31"},
	})
	if err != nil {
		t.Fatalf("RenderHome() = %v; want nil", err)
	}
	assertContains(t, buf.String(),
		"<!DOCTYPE html>",
		"Navigation",
		"Go to",
		`<a href="/" class="active">Home</a>`,
		"Welcome to the Weather Data App",
		"This app allows you to explore and visualize weather data.",
		"https://example.com/weather.jpg",
		"open-meteo-subset.csv",
		"8760 rows",
	)
}

func TestRenderHome_noDataset(t *testing.T) {
	mustLoad(t)

	var buf bytes.Buffer
	if err := RenderHome(&buf, &HomeData{Layout: Layout{Title: "Home", Active: "home"}}); err != nil {
		t.Fatalf("RenderHome() = %v; want nil", err)
	}
	assertContains(t, buf.String(), "No dataset loaded yet.")
}

func TestRenderData(t *testing.T) {
	mustLoad(t)

	var buf bytes.Buffer
	err := RenderData(&buf, &DataPageData{
		Layout: Layout{Title: "Data", Active: "data"},
		Month:  "January 2023",
		Rows: []PreviewRow{{
			Key:          "temperature",
			Header:       "temperature_2m (°C)",
			SparklineURL: "/charts/preview/temperature",
			Count:        744,
			Min:          "-12.3",
			Max:          "8.1",
			Mean:         "-1.4",
		}},
	})
	if err != nil {
		t.Fatalf("RenderData() = %v; want nil", err)
	}
	assertContains(t, buf.String(),
		"Here is the weather data for the first month in the dataset:",
		"Time Series (First Month)",
		"January 2023",
		"temperature_2m (°C)",
		`src="/charts/preview/temperature"`,
		"744",
		`<a href="/data" class="active">Data</a>`,
	)
}

func TestRenderVisualization(t *testing.T) {
	mustLoad(t)

	data := &VisualizationData{
		Layout:    Layout{Title: "Visualization", Active: "visualization"},
		Variables: []Option{{Value: "temperature", Label: "temperature"}, {Value: "all", Label: "All variables", Selected: true}},
		From:      3,
		To:        5,
		Chart:     ChartData{Variable: "all", Label: "All variables", URL: "/charts/all?from=3&to=5", From: 3, To: 5, Rows: 2208},
	}

	var buf bytes.Buffer
	if err := RenderVisualization(&buf, data); err != nil {
		t.Fatalf("RenderVisualization() = %v; want nil", err)
	}
	assertContains(t, buf.String(),
		"What data would you like to visualize?",
		"Select an option",
		`<option value="all" selected>All variables</option>`,
		"Select month",
		`name="from" min="1" max="12" value="3"`,
		`hx-get="/partials/chart"`,
		`src="/charts/all?from=3&amp;to=5"`,
		"to.value = Math.max(this.value, to.value)",
		"from.value = Math.min(this.value, from.value)",
	)
}

func TestRenderVisualization_noSelection(t *testing.T) {
	mustLoad(t)

	var buf bytes.Buffer
	data := &VisualizationData{Layout: Layout{Title: "Visualization", Active: "visualization"}, From: 1, To: 12}
	if err := RenderVisualization(&buf, data); err != nil {
		t.Fatalf("RenderVisualization() = %v; want nil", err)
	}
	out := buf.String()
	if strings.Contains(out, "<figure>") {
		t.Errorf("no chart expected before a variable is chosen; got %q", out)
	}
	assertContains(t, out, `<option value="" selected>Select an option</option>`)
}

func TestRenderChartPartial(t *testing.T) {
	mustLoad(t)

	var buf bytes.Buffer
	if err := RenderChartPartial(&buf, &ChartData{Message: "No data for months 6 to 8."}); err != nil {
		t.Fatalf("RenderChartPartial() = %v; want nil", err)
	}
	out := buf.String()
	if strings.Contains(out, "<!DOCTYPE html>") {
		t.Errorf("partial should not include the layout; got %q", out)
	}
	assertContains(t, out, "No data for months 6 to 8.")
}

func TestRenderFun(t *testing.T) {
	mustLoad(t)

	var buf bytes.Buffer
	if err := RenderFun(&buf, &FunData{Layout: Layout{Title: "Fun", Active: "fun"}, Fact: "Death Valley"}); err != nil {
		t.Fatalf("RenderFun() = %v; want nil", err)
	}
	assertContains(t, buf.String(), "Death Valley", `<a href="/fun" class="active">Fun</a>`)
}

// Ensure renders propagate write errors (e.g. closed writer).
func TestRenderFun_writeError(t *testing.T) {
	mustLoad(t)

	w := &failingWriter{err: io.ErrClosedPipe}
	err := RenderFun(w, &FunData{})
	if err == nil {
		t.Fatal("RenderFun(failingWriter) = nil; want error")
	}
	if err != io.ErrClosedPipe {
		t.Errorf("RenderFun() = %v; want %v", err, io.ErrClosedPipe)
	}
}

type failingWriter struct{ err error }

func (f *failingWriter) Write([]byte) (int, error) { return 0, f.err }
