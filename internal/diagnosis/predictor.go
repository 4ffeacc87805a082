// Package diagnosis turns a validated patient record into a risk report by
// chaining the fitted scaler and the loaded network.
package diagnosis

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/glucoscope/predictor/internal/model"
	"github.com/glucoscope/predictor/internal/patient"
	"github.com/glucoscope/predictor/internal/preprocess"
)

// Classifier is satisfied by *model.Network.
type Classifier interface {
	Predict(x []float64) (float64, error)
}

// widthReporter is implemented by classifiers that know their input width.
type widthReporter interface {
	InputWidth() int
}

type Assessment struct {
	ID        uuid.UUID      `json:"id"`
	Record    patient.Record `json:"record"`
	Scaled    []float64      `json:"scaled"`
	Report    Report         `json:"report"`
	CreatedAt time.Time      `json:"createdAt"`
}

type Predictor struct {
	scaler     *preprocess.StandardScaler
	classifier Classifier
	now        func() time.Time
}

// NewPredictor checks that every scaler column maps to a record field and,
// when the classifier reports its input width, that it matches the scaler.
// Shape mismatches surface at start-up instead of on the first request.
func NewPredictor(scaler *preprocess.StandardScaler, classifier Classifier) (*Predictor, error) {
	if scaler == nil || classifier == nil {
		return nil, fmt.Errorf("predictor needs a scaler and a classifier")
	}
	if _, err := patient.Default().Vector(scaler.Columns); err != nil {
		return nil, fmt.Errorf("scaler columns: %w", err)
	}
	if wr, ok := classifier.(widthReporter); ok && wr.InputWidth() != scaler.Width() {
		return nil, fmt.Errorf("model expects %d inputs, scaler has %d features: %w", wr.InputWidth(), scaler.Width(), model.ErrInputShape)
	}
	return &Predictor{scaler: scaler, classifier: classifier, now: time.Now}, nil
}

// Assess validates the record, scales it and scores it.
func (p *Predictor) Assess(r patient.Record) (Assessment, error) {
	if err := r.Validate(); err != nil {
		return Assessment{}, err
	}

	raw, err := r.Vector(p.scaler.Columns)
	if err != nil {
		return Assessment{}, err
	}
	scaled, err := p.scaler.Transform(raw)
	if err != nil {
		return Assessment{}, err
	}
	score, err := p.classifier.Predict(scaled)
	if err != nil {
		return Assessment{}, fmt.Errorf("predict: %w", err)
	}

	return Assessment{
		ID:        uuid.New(),
		Record:    r,
		Scaled:    scaled,
		Report:    NewReport(score),
		CreatedAt: p.now().UTC(),
	}, nil
}
