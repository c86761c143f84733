package vector

import (
	"context"

	"github.com/weaviate/weaviate/entities/models"
)

// ReferenceClass holds the shared baseline lookup data. It is created once at
// bootstrap and only ever appended to; per-request cleanup never touches it.
const ReferenceClass = "MiningReference"

// SchemaClient defines the interface for Weaviate schema operations
type SchemaClient interface {
	ClassExists(ctx context.Context, className string) (bool, error)
	CreateClass(ctx context.Context, class *models.Class) error
	GetClass(ctx context.Context, className string) (*models.Class, error)
	AddProperty(ctx context.Context, className string, property *models.Property) error
}

// EnsureReferenceSchema checks that the reference class exists and creates it
// if not. Creating the class does not populate it; data initialization is a
// separate, idempotent step owned by the mining package.
func EnsureReferenceSchema(ctx context.Context, client SchemaClient) error {
	exists, err := client.ClassExists(ctx, ReferenceClass)
	if err != nil {
		return err
	}

	properties := []*models.Property{
		{
			Name:     "content",
			DataType: []string{"text"},
		},
		{
			Name:     "source",
			DataType: []string{"string"},
		},
		{
			Name:     "isReference",
			DataType: []string{"boolean"},
		},
	}

	if !exists {
		class := &models.Class{
			Class:       ReferenceClass,
			Description: "Baseline region and country reference data",
			Vectorizer:  "none",
			Properties:  properties,
		}
		return client.CreateClass(ctx, class)
	}

	// Class exists, check for missing properties
	class, err := client.GetClass(ctx, ReferenceClass)
	if err != nil {
		return err
	}

	existingProps := make(map[string]bool)
	for _, p := range class.Properties {
		existingProps[p.Name] = true
	}

	for _, p := range properties {
		if !existingProps[p.Name] {
			if err := client.AddProperty(ctx, ReferenceClass, p); err != nil {
				return err
			}
		}
	}

	return nil
}
