package diagnosis

import (
	"fmt"

	"github.com/glucoscope/predictor/internal/dataset"
	"github.com/glucoscope/predictor/internal/model"
	"github.com/glucoscope/predictor/internal/preprocess"
)

// Load fits the scaler on the dataset at datasetPath and pairs it with the
// network stored at modelPath.
func Load(datasetPath, modelPath string) (*Predictor, error) {
	ds, err := dataset.Load(datasetPath)
	if err != nil {
		return nil, err
	}
	columns, matrix, err := ds.Features(dataset.TargetColumn)
	if err != nil {
		return nil, fmt.Errorf("dataset %s: %w", datasetPath, err)
	}
	scaler, err := preprocess.Fit(columns, matrix)
	if err != nil {
		return nil, err
	}

	network, err := model.Load(modelPath)
	if err != nil {
		return nil, err
	}

	return NewPredictor(scaler, network)
}

func (p *Predictor) Scaler() *preprocess.StandardScaler {
	return p.scaler
}
