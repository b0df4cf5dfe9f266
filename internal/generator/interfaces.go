package generator

import "context"

// MockGenerator defines the interface for turning Swift sources into mock
// classes, one Result per protocol found
type MockGenerator interface {
	Generate(unit Unit) ([]Result, error)
	GenerateBatch(ctx context.Context, units []Unit) ([]Result, error)
}
