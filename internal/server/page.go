package server

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/glucoscope/predictor/internal/diagnosis"
	"github.com/glucoscope/predictor/internal/patient"
)

type slider struct {
	patient.Field
	Value float64
}

type pageData struct {
	Name    string
	Sliders []slider
	Rows    []patient.Row
	Report  *diagnosis.Report
	Errors  []string
}

// page renders the form and, when the submitted values are valid, the
// report for them. With an empty query the default record is assessed.
func (s *Server) page(c *gin.Context) {
	record := patient.Default()
	if bad := unparsableFields(c); len(bad) > 0 {
		c.HTML(http.StatusUnprocessableEntity, "index.html", s.pageData(patient.Default(), nil, bad))
		return
	}
	if err := c.ShouldBindQuery(&record); err != nil {
		c.HTML(http.StatusUnprocessableEntity, "index.html", s.pageData(patient.Default(), nil, []string{"Could not read the submitted values."}))
		return
	}

	a, err := s.assessor.Assess(record)
	if err != nil {
		var verr *patient.ValidationError
		if errors.As(err, &verr) {
			c.HTML(http.StatusUnprocessableEntity, "index.html", s.pageData(record, nil, verr.Violations))
			return
		}
		s.log.Errorw("assessment failed", "err", err)
		c.HTML(http.StatusInternalServerError, "index.html", s.pageData(record, nil, []string{"Prediction failed. Please try again."}))
		return
	}

	if c.Request.URL.RawQuery != "" {
		s.save(c.Request.Context(), a)
	}
	c.HTML(http.StatusOK, "index.html", s.pageData(record, &a.Report, nil))
}

// unparsableFields names every submitted metric that is not a number.
func unparsableFields(c *gin.Context) []string {
	bad := []string{}
	for _, f := range patient.Fields() {
		raw, ok := c.GetQuery(f.Key)
		if !ok {
			continue
		}
		if _, err := strconv.ParseFloat(strings.TrimSpace(raw), 64); err != nil {
			bad = append(bad, fmt.Sprintf("%s must be a number", f.Label))
		}
	}
	return bad
}

func (s *Server) pageData(r patient.Record, report *diagnosis.Report, errs []string) pageData {
	fields := patient.Fields()
	sliders := make([]slider, 0, len(fields))
	for _, f := range fields {
		v, _ := r.Value(f.Key)
		sliders = append(sliders, slider{Field: f, Value: v})
	}
	return pageData{
		Name:    r.Name,
		Sliders: sliders,
		Rows:    r.Rows(),
		Report:  report,
		Errors:  errs,
	}
}
