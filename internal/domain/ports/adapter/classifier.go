package adapter

import (
	"context"

	"smart-support-router/internal/domain/model"
)

// Classifier is the port for ticket classification. Implementations return
// a category from the fixed set and an urgency score S in [0,1].
type Classifier interface {
	Classify(ctx context.Context, text string) (model.Category, float64, error)
}
