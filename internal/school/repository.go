package school

import (
	"context"
	"errors"
	"fmt"

	"schooladmin/internal/docstore"
)

// Repository reads and writes typed records through a document store.
type Repository struct {
	store docstore.Store
}

// NewRepository wraps store.
func NewRepository(store docstore.Store) *Repository {
	return &Repository{store: store}
}

// Store exposes the underlying document store.
func (r *Repository) Store() docstore.Store { return r.store }

func get[T any](ctx context.Context, r *Repository, collection, id string) (T, error) {
	var out T
	if id == "" {
		return out, fmt.Errorf("%s: empty id: %w", collection, ErrNotFound)
	}
	doc, err := r.store.Get(ctx, collection, id)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return out, fmt.Errorf("%s %s: %w", collection, id, ErrNotFound)
		}
		return out, err
	}
	err = docstore.Decode(doc, &out)
	return out, err
}

func list[T any](ctx context.Context, r *Repository, collection string) ([]T, error) {
	docs, err := r.store.List(ctx, collection)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(docs))
	for _, doc := range docs {
		var v T
		if err := docstore.Decode(doc, &v); err != nil {
			return nil, fmt.Errorf("%s %s: %w", collection, doc.ID(), err)
		}
		out = append(out, v)
	}
	return out, nil
}

func (r *Repository) create(ctx context.Context, collection string, v any, extra docstore.Document) (string, error) {
	doc, err := docstore.Encode(v)
	if err != nil {
		return "", err
	}
	for k, val := range extra {
		doc[k] = val
	}
	return r.store.Create(ctx, collection, doc)
}

func (r *Repository) set(ctx context.Context, collection, id string, v any) error {
	doc, err := docstore.Encode(v)
	if err != nil {
		return err
	}
	return r.store.Set(ctx, collection, id, doc)
}

func (r *Repository) update(ctx context.Context, collection, id string, fields ...docstore.Field) error {
	err := r.store.Update(ctx, collection, id, fields...)
	if errors.Is(err, docstore.ErrNotFound) {
		return fmt.Errorf("%s %s: %w", collection, id, ErrNotFound)
	}
	return err
}

func (r *Repository) delete(ctx context.Context, collection, id string) error {
	err := r.store.Delete(ctx, collection, id)
	if errors.Is(err, docstore.ErrNotFound) {
		return fmt.Errorf("%s %s: %w", collection, id, ErrNotFound)
	}
	return err
}

// Student returns a student that has not been soft-deleted.
func (r *Repository) Student(ctx context.Context, id string) (Student, error) {
	s, err := get[Student](ctx, r, Students, id)
	if err != nil {
		return Student{}, err
	}
	if s.DeletedAt != nil {
		return Student{}, fmt.Errorf("%s %s: %w", Students, id, ErrNotFound)
	}
	return s, nil
}

// ActiveStudents lists students without a deletedAt stamp.
func (r *Repository) ActiveStudents(ctx context.Context) ([]Student, error) {
	all, err := list[Student](ctx, r, Students)
	if err != nil {
		return nil, err
	}
	out := all[:0]
	for _, s := range all {
		if s.DeletedAt == nil {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *Repository) Teacher(ctx context.Context, id string) (Teacher, error) {
	return get[Teacher](ctx, r, Teachers, id)
}

func (r *Repository) Teachers(ctx context.Context) ([]Teacher, error) {
	return list[Teacher](ctx, r, Teachers)
}
