package diagnosis

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glucoscope/predictor/internal/model"
	"github.com/glucoscope/predictor/internal/patient"
	"github.com/glucoscope/predictor/internal/preprocess"
)

type fixedScore float64

func (f fixedScore) Predict([]float64) (float64, error) { return float64(f), nil }

type failing struct{}

func (failing) Predict([]float64) (float64, error) { return 0, errors.New("boom") }

func testScaler(t *testing.T) *preprocess.StandardScaler {
	t.Helper()
	s, err := preprocess.Fit(patient.Columns(), [][]float64{
		{0, 100, 70, 20, 80, 25, 0.3, 30},
		{2, 140, 80, 30, 120, 32, 0.6, 50},
	})
	require.NoError(t, err)
	return s
}

func TestClassifyBoundary(t *testing.T) {
	assert.Equal(t, Healthy, Classify(0))
	assert.Equal(t, Healthy, Classify(0.5))
	assert.Equal(t, Diabetic, Classify(0.5000001))
	assert.Equal(t, Diabetic, Classify(1))
}

func TestNewReportPanels(t *testing.T) {
	h := NewReport(0.2)
	assert.Equal(t, "You are healthy 🎉", h.Headline)
	assert.Len(t, h.Advice, 7)
	assert.Empty(t, h.Closing)

	d := NewReport(0.9)
	assert.Equal(t, "You are Diabetic ⚠️", d.Headline)
	assert.Len(t, d.Advice, 8)
	assert.Contains(t, d.Closing, "small consistent steps")

	d.Advice[0] = "changed"
	assert.NotEqual(t, "changed", NewReport(0.9).Advice[0])
}

func TestAssess(t *testing.T) {
	p, err := NewPredictor(testScaler(t), fixedScore(0.73))
	require.NoError(t, err)
	p.now = func() time.Time { return time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC) }

	a, err := p.Assess(patient.Default())
	require.NoError(t, err)
	assert.Equal(t, Diabetic, a.Report.Outcome)
	assert.Equal(t, 0.73, a.Report.Score)
	assert.Len(t, a.Scaled, 8)
	assert.Equal(t, 2024, a.CreatedAt.Year())
	assert.NotEqual(t, uuid.Nil, a.ID)
}

func TestAssessValidation(t *testing.T) {
	p, err := NewPredictor(testScaler(t), fixedScore(0.1))
	require.NoError(t, err)

	r := patient.Default()
	r.Glucose = 400
	_, err = p.Assess(r)
	var verr *patient.ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestAssessClassifierError(t *testing.T) {
	p, err := NewPredictor(testScaler(t), failing{})
	require.NoError(t, err)
	_, err = p.Assess(patient.Default())
	require.ErrorContains(t, err, "predict: boom")
}

func TestNewPredictorRejectsUnknownColumns(t *testing.T) {
	s, err := preprocess.Fit([]string{"Glucose", "Cholesterol"}, [][]float64{{1, 2}, {3, 4}})
	require.NoError(t, err)
	_, err = NewPredictor(s, fixedScore(0))
	require.ErrorIs(t, err, patient.ErrUnknownColumn)
}

func TestNewPredictorRejectsWidthMismatch(t *testing.T) {
	network, err := model.Load(filepath.Join("testdata", "wide.yaml"))
	require.NoError(t, err)
	require.Equal(t, 9, network.InputWidth())

	_, err = NewPredictor(testScaler(t), network)
	require.ErrorIs(t, err, model.ErrInputShape)
}

func TestNewPredictorAcceptsMatchingWidth(t *testing.T) {
	network, err := model.Load(filepath.Join("testdata", "glucose_only.yaml"))
	require.NoError(t, err)

	p, err := NewPredictor(testScaler(t), network)
	require.NoError(t, err)
	_, err = p.Assess(patient.Default())
	require.NoError(t, err)
}

func TestLoad(t *testing.T) {
	p, err := Load(filepath.Join("testdata", "diabetes.csv"), filepath.Join("testdata", "glucose_only.yaml"))
	require.NoError(t, err)

	low := patient.Default()
	low.Glucose = 80
	a, err := p.Assess(low)
	require.NoError(t, err)
	assert.Equal(t, Healthy, a.Report.Outcome)

	high := patient.Default()
	high.Glucose = 200
	a, err = p.Assess(high)
	require.NoError(t, err)
	assert.Equal(t, Diabetic, a.Report.Outcome)
	assert.Greater(t, a.Report.Score, 0.9)
}

func TestLoadWidthMismatch(t *testing.T) {
	_, err := Load(filepath.Join("testdata", "diabetes.csv"), filepath.Join("testdata", "wide.yaml"))
	require.ErrorIs(t, err, model.ErrInputShape)
}
