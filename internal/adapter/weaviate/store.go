package weaviate

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/weaviate/weaviate-go-client/v5/weaviate"
	"github.com/weaviate/weaviate-go-client/v5/weaviate/graphql"
	"github.com/weaviate/weaviate/entities/models"

	"textmining/worker/internal/mining"
	"textmining/worker/internal/vector"
)

const maxReferenceRecords = 1000

type Store struct {
	client *weaviate.Client
}

func NewStore(client *weaviate.Client) *Store {
	return &Store{client: client}
}

// WorkingSetName derives a per-request class name from the correlation id.
// Weaviate class names must start with an uppercase letter and contain only
// alphanumerics, so the id is stripped down to those.
func WorkingSetName(correlationID string) string {
	var b strings.Builder
	for _, r := range correlationID {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	suffix := b.String()
	if suffix == "" {
		suffix = strings.ReplaceAll(uuid.New().String(), "-", "")
	}
	return "Working" + suffix
}

// Schema-level operations. Store satisfies vector.SchemaClient so the
// bootstrap schema check runs through the same adapter as the data path.

func (s *Store) ClassExists(ctx context.Context, className string) (bool, error) {
	return s.client.Schema().ClassExistenceChecker().WithClassName(className).Do(ctx)
}

func (s *Store) CreateClass(ctx context.Context, class *models.Class) error {
	return s.client.Schema().ClassCreator().WithClass(class).Do(ctx)
}

func (s *Store) GetClass(ctx context.Context, className string) (*models.Class, error) {
	return s.client.Schema().ClassGetter().WithClassName(className).Do(ctx)
}

func (s *Store) AddProperty(ctx context.Context, className string, property *models.Property) error {
	return s.client.Schema().PropertyCreator().WithClassName(className).WithProperty(property).Do(ctx)
}

func (s *Store) deleteClass(ctx context.Context, className string) error {
	return s.client.Schema().ClassDeleter().WithClassName(className).Do(ctx)
}

func (s *Store) ReferenceExists(ctx context.Context) (bool, error) {
	res, err := s.client.GraphQL().Aggregate().
		WithClassName(vector.ReferenceClass).
		WithFields(graphql.Field{Name: "meta", Fields: []graphql.Field{{Name: "count"}}}).
		Do(ctx)
	if err != nil {
		return false, fmt.Errorf("%w: reference count: %v", mining.ErrInfrastructure, err)
	}
	if len(res.Errors) > 0 {
		return false, fmt.Errorf("%w: reference count: %v", mining.ErrInfrastructure, res.Errors[0].Message)
	}

	agg, ok := res.Data["Aggregate"].(map[string]interface{})
	if !ok {
		return false, nil
	}
	rows, ok := agg[vector.ReferenceClass].([]interface{})
	if !ok || len(rows) == 0 {
		return false, nil
	}
	row, ok := rows[0].(map[string]interface{})
	if !ok {
		return false, nil
	}
	meta, ok := row["meta"].(map[string]interface{})
	if !ok {
		return false, nil
	}
	count, _ := meta["count"].(float64)
	return count > 0, nil
}

// CreateReferenceSet appends records to the reference class. Callers must
// check ReferenceExists first; this method does not guard against double
// initialization.
func (s *Store) CreateReferenceSet(ctx context.Context, records []mining.Record) error {
	objects := make([]*models.Object, 0, len(records))
	for _, rec := range records {
		objects = append(objects, &models.Object{
			Class: vector.ReferenceClass,
			Properties: map[string]interface{}{
				"content":     rec.Text,
				"isReference": true,
			},
			Vector: models.C11yVector(rec.Vector),
		})
	}
	return s.batchInsert(ctx, vector.ReferenceClass, objects)
}

func (s *Store) AllReferenceRecords(ctx context.Context) ([]string, error) {
	res, err := s.client.GraphQL().Get().
		WithClassName(vector.ReferenceClass).
		WithFields(graphql.Field{Name: "content"}).
		WithLimit(maxReferenceRecords).
		Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: get reference records: %v", mining.ErrInfrastructure, err)
	}
	if len(res.Errors) > 0 {
		return nil, fmt.Errorf("%w: get reference records: %v", mining.ErrInfrastructure, res.Errors[0].Message)
	}
	return extractContents(res.Data, vector.ReferenceClass), nil
}

// CreateWorkingSet drops any stale class under name and recreates it, so a
// working set always starts clean.
func (s *Store) CreateWorkingSet(ctx context.Context, name string, records []mining.Record) error {
	if name == vector.ReferenceClass {
		return fmt.Errorf("%w: working set may not shadow the reference class", mining.ErrInfrastructure)
	}

	exists, err := s.ClassExists(ctx, name)
	if err != nil {
		return fmt.Errorf("%w: check working set: %v", mining.ErrInfrastructure, err)
	}
	if exists {
		if err := s.deleteClass(ctx, name); err != nil {
			return fmt.Errorf("%w: drop stale working set: %v", mining.ErrInfrastructure, err)
		}
	}

	class := &models.Class{
		Class:      name,
		Vectorizer: "none",
		Properties: []*models.Property{
			{Name: "content", DataType: []string{"text"}},
			{Name: "chunkIndex", DataType: []string{"int"}},
			{Name: "isReference", DataType: []string{"boolean"}},
		},
	}
	if err := s.CreateClass(ctx, class); err != nil {
		return fmt.Errorf("%w: create working set: %v", mining.ErrInfrastructure, err)
	}

	objects := make([]*models.Object, 0, len(records))
	for i, rec := range records {
		objects = append(objects, &models.Object{
			Class: name,
			Properties: map[string]interface{}{
				"content":     rec.Text,
				"chunkIndex":  i,
				"isReference": false,
			},
			Vector: models.C11yVector(rec.Vector),
		})
	}
	return s.batchInsert(ctx, name, objects)
}

// Search returns up to limit records from the named working set, nearest
// first by vector distance.
func (s *Store) Search(ctx context.Context, name string, queryVector []float32, limit int) ([]string, error) {
	nearVector := s.client.GraphQL().NearVectorArgBuilder().WithVector(queryVector)

	res, err := s.client.GraphQL().Get().
		WithClassName(name).
		WithNearVector(nearVector).
		WithLimit(limit).
		WithFields(
			graphql.Field{Name: "content"},
			graphql.Field{Name: "_additional", Fields: []graphql.Field{{Name: "distance"}}},
		).
		Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: search %s: %v", mining.ErrInfrastructure, name, err)
	}
	if len(res.Errors) > 0 {
		return nil, fmt.Errorf("%w: search %s: %v", mining.ErrInfrastructure, name, res.Errors[0].Message)
	}
	return extractContents(res.Data, name), nil
}

// DropWorkingSet removes the named working set. A missing class is a no-op.
// The reference class is never dropped, even if a naming bug hands it in.
func (s *Store) DropWorkingSet(ctx context.Context, name string) error {
	if name == vector.ReferenceClass {
		return fmt.Errorf("%w: refusing to drop the reference class", mining.ErrInfrastructure)
	}

	exists, err := s.ClassExists(ctx, name)
	if err != nil {
		return fmt.Errorf("%w: check working set: %v", mining.ErrInfrastructure, err)
	}
	if !exists {
		return nil
	}
	if err := s.deleteClass(ctx, name); err != nil {
		return fmt.Errorf("%w: drop working set: %v", mining.ErrInfrastructure, err)
	}
	return nil
}

func (s *Store) batchInsert(ctx context.Context, class string, objects []*models.Object) error {
	if len(objects) == 0 {
		return nil
	}
	resp, err := s.client.Batch().ObjectsBatcher().WithObjects(objects...).Do(ctx)
	if err != nil {
		return fmt.Errorf("%w: batch insert into %s: %v", mining.ErrInfrastructure, class, err)
	}
	for _, obj := range resp {
		if obj.Result != nil && obj.Result.Errors != nil && len(obj.Result.Errors.Error) > 0 {
			return fmt.Errorf("%w: batch insert into %s: %s", mining.ErrInfrastructure, class, obj.Result.Errors.Error[0].Message)
		}
	}
	return nil
}

func extractContents(data map[string]models.JSONObject, class string) []string {
	var out []string
	get, ok := data["Get"].(map[string]interface{})
	if !ok {
		return out
	}
	rows, ok := get[class].([]interface{})
	if !ok {
		return out
	}
	for _, r := range rows {
		props, ok := r.(map[string]interface{})
		if !ok {
			continue
		}
		if content, ok := props["content"].(string); ok {
			out = append(out, content)
		}
	}
	return out
}
