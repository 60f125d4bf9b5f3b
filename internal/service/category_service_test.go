package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"book-catalog/internal/domain"
	"book-catalog/internal/repository"

	"github.com/google/uuid"
)

func newTestCategoryService() (CategoryService, *mockCategoryRepository) {
	categoryRepo := newMockCategoryRepository()
	return NewCategoryService(categoryRepo), categoryRepo
}

func TestCreateCategory(t *testing.T) {
	svc, _ := newTestCategoryService()
	ctx := context.Background()

	description := "Software craft"
	category, err := svc.Create(ctx, CreateCategoryInput{Name: "  Programming  ", Description: &description})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if category.Name != "Programming" {
		t.Fatalf("expected trimmed name, got %q", category.Name)
	}
	if category.Description == nil || *category.Description != description {
		t.Fatal("description not persisted")
	}
	if category.ID == uuid.Nil {
		t.Fatal("category was not assigned an ID")
	}
}

func TestCreateCategoryValidation(t *testing.T) {
	svc, _ := newTestCategoryService()
	ctx := context.Background()

	tests := []struct {
		name  string
		input CreateCategoryInput
	}{
		{"empty name", CreateCategoryInput{Name: "   "}},
		{"name too long", CreateCategoryInput{Name: strings.Repeat("x", MaxCategoryNameLength+1)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(ctx, tt.input)
			var validationErr *ValidationError
			if !errors.As(err, &validationErr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
		})
	}
}

func TestCreateCategoryDuplicateName(t *testing.T) {
	svc, categoryRepo := newTestCategoryService()
	ctx := context.Background()

	if _, err := svc.Create(ctx, CreateCategoryInput{Name: "Programming"}); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	_, err := svc.Create(ctx, CreateCategoryInput{Name: "Programming"})
	var conflict *ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected ConflictError, got %v", err)
	}

	if len(categoryRepo.categories) != 1 {
		t.Fatalf("expected 1 persisted category, got %d", len(categoryRepo.categories))
	}
}

func TestUpdateCategoryPartial(t *testing.T) {
	svc, _ := newTestCategoryService()
	ctx := context.Background()

	description := "Old description"
	category, err := svc.Create(ctx, CreateCategoryInput{Name: "Programming", Description: &description})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	// Name-only update keeps the description
	newName := "Software"
	updated, err := svc.Update(ctx, category.ID, UpdateCategoryInput{Name: &newName})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if updated.Name != "Software" {
		t.Fatalf("name not updated: %q", updated.Name)
	}
	if updated.Description == nil || *updated.Description != description {
		t.Fatal("description changed on a name-only update")
	}

	// Explicit null clears the description
	updated, err = svc.Update(ctx, category.ID, UpdateCategoryInput{Description: domain.Null[string]()})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if updated.Description != nil {
		t.Fatal("explicit null did not clear the description")
	}
}

func TestUpdateCategoryNameConflict(t *testing.T) {
	svc, _ := newTestCategoryService()
	ctx := context.Background()

	if _, err := svc.Create(ctx, CreateCategoryInput{Name: "Programming"}); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	other, err := svc.Create(ctx, CreateCategoryInput{Name: "Fiction"})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	taken := "Programming"
	_, err = svc.Update(ctx, other.ID, UpdateCategoryInput{Name: &taken})
	var conflict *ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected ConflictError, got %v", err)
	}
}

func TestCategoryNotFound(t *testing.T) {
	svc, _ := newTestCategoryService()
	ctx := context.Background()

	missing := uuid.New()

	if _, err := svc.Get(ctx, missing); !errors.Is(err, repository.ErrCategoryNotFound) {
		t.Fatalf("expected ErrCategoryNotFound from Get, got %v", err)
	}
	name := "Whatever"
	if _, err := svc.Update(ctx, missing, UpdateCategoryInput{Name: &name}); !errors.Is(err, repository.ErrCategoryNotFound) {
		t.Fatalf("expected ErrCategoryNotFound from Update, got %v", err)
	}
	if _, err := svc.Delete(ctx, missing); !errors.Is(err, repository.ErrCategoryNotFound) {
		t.Fatalf("expected ErrCategoryNotFound from Delete, got %v", err)
	}
}

func TestDeleteCategory(t *testing.T) {
	svc, categoryRepo := newTestCategoryService()
	ctx := context.Background()

	category, err := svc.Create(ctx, CreateCategoryInput{Name: "Programming"})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if _, err := svc.Delete(ctx, category.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if len(categoryRepo.categories) != 0 {
		t.Fatal("category was not removed")
	}
}
