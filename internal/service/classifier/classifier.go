package classifier

import "context"

// Prediction is the two-field verdict the upstream classifier returns.
type Prediction struct {
	Label       string  `json:"label"`
	Probability float64 `json:"probability"`
}

// Client produces a prediction for a piece of user text.
type Client interface {
	Classify(ctx context.Context, text string) (Prediction, error)
}
