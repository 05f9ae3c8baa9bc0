package controller

import (
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"

	"weatherdash/internal/modules/weather/types"
)

const (
	defaultLimit = 100
	maxLimit     = 1000

	homeImageURL = "https://t4.ftcdn.net/jpg/02/40/24/81/360_F_240248152_piluBt47ZD46vprw7C0xQ88Lk4zXLg81.jpg"
	funFact      = "Here's a fun fact: The highest temperature ever recorded on Earth was 134°F (56.7°C) in Death Valley, California!"
)

// parseMonthRange reads 'from' and 'to' (1..12). Missing bounds default to
// the full year.
func parseMonthRange(q url.Values) (types.MonthRange, error) {
	rng := types.FullYear
	if s := q.Get("from"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			return types.MonthRange{}, errors.New("invalid 'from' (expected integer)")
		}
		rng.From = n
	}
	if s := q.Get("to"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			return types.MonthRange{}, errors.New("invalid 'to' (expected integer)")
		}
		rng.To = n
	}
	if err := rng.Validate(); err != nil {
		return types.MonthRange{}, err
	}
	return rng, nil
}

func parseObservationsQuery(r *http.Request) (rng types.MonthRange, limit int, offset int, err error) {
	q := r.URL.Query()

	rng, err = parseMonthRange(q)
	if err != nil {
		return types.MonthRange{}, 0, 0, err
	}

	limit = defaultLimit
	if s := q.Get("limit"); s != "" {
		n, convErr := strconv.Atoi(s)
		if convErr != nil {
			return types.MonthRange{}, 0, 0, errors.New("invalid 'limit' (expected integer)")
		}
		if n <= 0 {
			return types.MonthRange{}, 0, 0, errors.New("'limit' must be > 0")
		}
		if n > maxLimit {
			return types.MonthRange{}, 0, 0, fmt.Errorf("'limit' must be <= %d", maxLimit)
		}
		limit = n
	}

	if s := q.Get("offset"); s != "" {
		n, convErr := strconv.Atoi(s)
		if convErr != nil {
			return types.MonthRange{}, 0, 0, errors.New("invalid 'offset' (expected integer)")
		}
		if n < 0 {
			return types.MonthRange{}, 0, 0, errors.New("'offset' must be >= 0")
		}
		offset = n
	}

	return rng, limit, offset, nil
}

// pageMonthRange is parseMonthRange for pages: invalid input falls back to
// the full year.
func pageMonthRange(q url.Values) (types.MonthRange, bool) {
	rng, err := parseMonthRange(q)
	if err != nil {
		return types.FullYear, false
	}
	return rng, true
}

func formatValue(v float64) string {
	if math.IsNaN(v) {
		return "n/a"
	}
	return strconv.FormatFloat(v, 'f', 1, 64)
}

// nullable maps NaN to a JSON null.
func nullable(v float64) *float64 {
	if math.IsNaN(v) {
		return nil
	}
	return &v
}

func chartURL(v types.Variable, rng types.MonthRange) string {
	return fmt.Sprintf("/charts/%s?from=%d&to=%d", v, rng.From, rng.To)
}
