package controller

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"weatherdash/internal/modules/weather/repository"
	"weatherdash/internal/modules/weather/types"
	"weatherdash/internal/utils"
)

type variableDTO struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

// observationDTO carries missing cells as null.
type observationDTO struct {
	Time          time.Time `json:"time"`
	Temperature   *float64  `json:"temperature"`
	Precipitation *float64  `json:"precipitation"`
	WindSpeed     *float64  `json:"windSpeed"`
	WindGusts     *float64  `json:"windGusts"`
	WindDirection *float64  `json:"windDirection"`
}

type observationsResponse struct {
	From   int              `json:"from"`
	To     int              `json:"to"`
	Limit  int              `json:"limit"`
	Offset int              `json:"offset"`
	Total  int              `json:"total"`
	Items  []observationDTO `json:"items"`
}

type columnSummaryDTO struct {
	Key    string   `json:"key"`
	Header string   `json:"header"`
	Unit   string   `json:"unit"`
	Count  int      `json:"count"`
	Min    *float64 `json:"min"`
	Max    *float64 `json:"max"`
	Mean   *float64 `json:"mean"`
}

func (c *weatherControllerImpl) handleVariables(w http.ResponseWriter, r *http.Request) {
	out := make([]variableDTO, 0, len(types.Variables))
	for _, v := range types.Variables {
		out = append(out, variableDTO{Key: string(v), Label: v.Label()})
	}
	utils.WriteJSON(w, http.StatusOK, out)
}

func (c *weatherControllerImpl) handleDataset(w http.ResponseWriter, r *http.Request) {
	info, err := c.service.Info()
	if errors.Is(err, repository.ErrNotLoaded) {
		utils.WriteError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	if err != nil {
		slog.Error("dataset: get info failed", "error", err)
		utils.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	utils.WriteJSON(w, http.StatusOK, info)
}

func (c *weatherControllerImpl) handleObservations(w http.ResponseWriter, r *http.Request) {
	rng, limit, offset, err := parseObservationsQuery(r)
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	total, err := c.service.Count(rng)
	if err != nil {
		utils.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	rows, err := c.service.Observations(rng, limit, offset)
	if err != nil {
		utils.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	items := make([]observationDTO, 0, len(rows))
	for _, o := range rows {
		items = append(items, observationDTO{
			Time:          o.Time,
			Temperature:   nullable(o.Temperature),
			Precipitation: nullable(o.Precipitation),
			WindSpeed:     nullable(o.WindSpeed),
			WindGusts:     nullable(o.WindGusts),
			WindDirection: nullable(o.WindDirection),
		})
	}
	utils.WriteJSON(w, http.StatusOK, observationsResponse{
		From:   rng.From,
		To:     rng.To,
		Limit:  limit,
		Offset: offset,
		Total:  total,
		Items:  items,
	})
}

func (c *weatherControllerImpl) handleSummary(w http.ResponseWriter, r *http.Request) {
	rng, err := parseMonthRange(r.URL.Query())
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	summary, err := c.service.Summary(rng)
	if err != nil {
		utils.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	out := make([]columnSummaryDTO, 0, len(summary))
	for _, s := range summary {
		out = append(out, columnSummaryDTO{
			Key:    s.Column.Key(),
			Header: s.Column.Header(),
			Unit:   s.Column.Unit(),
			Count:  s.Count,
			Min:    nullable(s.Min),
			Max:    nullable(s.Max),
			Mean:   nullable(s.Mean),
		})
	}
	utils.WriteJSON(w, http.StatusOK, out)
}
