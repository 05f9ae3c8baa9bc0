package views

import (
	"errors"
	"html/template"
	"io"
	"io/fs"
)

var pagesTmpl *template.Template

var errNotLoaded = errors.New("templates not loaded: call views.LoadTemplates during startup")

// loadTemplatesFromFS loads page templates from the given fs and dir.
// Used by LoadTemplates and by tests to simulate failure scenarios.
func loadTemplatesFromFS(fsys fs.FS, dir string) error {
	sub, err := fs.Sub(fsys, dir)
	if err != nil {
		return err
	}
	pagesTmpl, err = template.ParseFS(sub, "*.html", "partials/*.html")
	if err != nil {
		return err
	}
	return nil
}

// LoadTemplates loads embedded page templates. Call during startup before
// serving requests; if it returns an error, do not start the server.
func LoadTemplates() error {
	return loadTemplatesFromFS(viewsFS, "templates")
}

func render(w io.Writer, name string, data any) error {
	if pagesTmpl == nil {
		return errNotLoaded
	}
	return pagesTmpl.ExecuteTemplate(w, name, data)
}

// Layout is shared by every page: the title and the active sidebar entry.
type Layout struct {
	Title  string
	Active string
}

type HomeData struct {
	Layout
	ImageURL string
	Dataset  *DatasetSummary
}

// DatasetSummary is the loaded dataset as shown on the Home page.
type DatasetSummary struct {
	Source string
	Rows   int
	First  string
	Last   string
}

func RenderHome(w io.Writer, data *HomeData) error {
	return render(w, "home.html", data)
}

// PreviewRow is one column of the Data page table.
type PreviewRow struct {
	Key          string
	Header       string
	SparklineURL string
	Count        int
	Min          string
	Max          string
	Mean         string
}

type DataPageData struct {
	Layout
	Month string
	Rows  []PreviewRow
}

func RenderData(w io.Writer, data *DataPageData) error {
	return render(w, "data.html", data)
}

// Option is an entry of a <select>.
type Option struct {
	Value    string
	Label    string
	Selected bool
}

// ChartData is the view model for the chart partial. An empty URL renders
// the Message instead of an image.
type ChartData struct {
	Variable string
	Label    string
	URL      string
	From     int
	To       int
	Rows     int
	Message  string
}

type VisualizationData struct {
	Layout
	Variables []Option
	From      int
	To        int
	Chart     ChartData
}

func RenderVisualization(w io.Writer, data *VisualizationData) error {
	return render(w, "visualization.html", data)
}

// RenderChartPartial executes only the chart partial into w.
// Use for HTMX fragment refresh.
func RenderChartPartial(w io.Writer, data *ChartData) error {
	return render(w, "partials/chart.html", data)
}

type FunData struct {
	Layout
	Fact string
}

func RenderFun(w io.Writer, data *FunData) error {
	return render(w, "fun.html", data)
}
