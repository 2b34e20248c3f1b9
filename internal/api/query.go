package api

import (
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/erazemk/armory/internal/model"
)

// queryError reports a malformed query parameter.
func queryError(key string) error {
	return model.Validation("invalid query parameter", key)
}

// parsePage reads page and limit. Missing values fall back to defaults and
// the limit is clamped by the store. Pages past model.MaxPage are rejected.
func parsePage(q url.Values) (model.PageRequest, error) {
	var p model.PageRequest
	for key, dst := range map[string]*int{"page": &p.Page, "limit": &p.Limit} {
		v := q.Get(key)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return p, queryError(key)
		}
		*dst = n
	}
	if p.Page > model.MaxPage {
		return p, queryError("page")
	}
	return p, nil
}

// parseTime accepts a calendar date or an RFC 3339 timestamp. A bare date
// used as an upper bound covers the whole day.
func parseTime(v string, endOfDay bool) (time.Time, error) {
	if t, err := time.Parse(time.DateOnly, v); err == nil {
		if endOfDay {
			t = t.Add(24*time.Hour - time.Nanosecond)
		}
		return t, nil
	}
	return time.Parse(time.RFC3339, v)
}

// parseDateRange reads startDate and endDate.
func parseDateRange(q url.Values) (model.DateRange, error) {
	var r model.DateRange
	if v := q.Get("startDate"); v != "" {
		t, err := parseTime(v, false)
		if err != nil {
			return r, queryError("startDate")
		}
		r.Start = t
	}
	if v := q.Get("endDate"); v != "" {
		t, err := parseTime(v, true)
		if err != nil {
			return r, queryError("endDate")
		}
		r.End = t
	}
	if !r.Start.IsZero() && !r.End.IsZero() && r.End.Before(r.Start) {
		return r, model.Validation("endDate is before startDate", "endDate")
	}
	return r, nil
}

// parseBool reads an optional boolean; nil means the parameter was absent.
func parseBool(q url.Values, key string) (*bool, error) {
	v := q.Get(key)
	if v == "" {
		return nil, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return nil, queryError(key)
	}
	return &b, nil
}

// listQuery holds the parameters shared by the paginated listings.
type listQuery struct {
	BaseID          string
	EquipmentTypeID string
	model.DateRange
	model.PageRequest
}

func parseListQuery(r *http.Request) (listQuery, error) {
	q := r.URL.Query()
	lq := listQuery{BaseID: q.Get("baseId"), EquipmentTypeID: q.Get("equipmentTypeId")}

	var err error
	if lq.PageRequest, err = parsePage(q); err != nil {
		return lq, err
	}
	if lq.DateRange, err = parseDateRange(q); err != nil {
		return lq, err
	}
	return lq, nil
}
