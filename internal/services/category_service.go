package services

import (
	"context"
	"strconv"
	"strings"

	"github.com/mroshb/trivia_bot/internal/services/opentdb"
)

// Category is a playable category. ID is what the question source expects.
type Category struct {
	ID   string
	Name string
}

type remoteCategories interface {
	Categories(ctx context.Context) ([]opentdb.Category, error)
}

type localCategories interface {
	Categories(ctx context.Context) ([]string, error)
}

// CategoryService lists and resolves categories of the configured source.
type CategoryService struct {
	list func(ctx context.Context) ([]Category, error)
}

func NewRemoteCategoryService(src remoteCategories) *CategoryService {
	return &CategoryService{list: func(ctx context.Context) ([]Category, error) {
		remote, err := src.Categories(ctx)
		if err != nil {
			return nil, err
		}
		categories := make([]Category, 0, len(remote))
		for _, c := range remote {
			categories = append(categories, Category{ID: strconv.Itoa(c.ID), Name: c.Name})
		}
		return categories, nil
	}}
}

// NewLocalCategoryService serves the local bank, where a category's name is
// also its id.
func NewLocalCategoryService(src localCategories) *CategoryService {
	return &CategoryService{list: func(ctx context.Context) ([]Category, error) {
		names, err := src.Categories(ctx)
		if err != nil {
			return nil, err
		}
		categories := make([]Category, 0, len(names))
		for _, name := range names {
			if name == "" {
				continue
			}
			categories = append(categories, Category{ID: name, Name: name})
		}
		return categories, nil
	}}
}

func (s *CategoryService) List(ctx context.Context) ([]Category, error) {
	return s.list(ctx)
}

// Find resolves a user's input by id or, failing that, by case-insensitive name.
func (s *CategoryService) Find(ctx context.Context, query string) (Category, bool, error) {
	query = strings.TrimSpace(query)
	categories, err := s.list(ctx)
	if err != nil {
		return Category{}, false, err
	}
	for _, c := range categories {
		if c.ID == query {
			return c, true, nil
		}
	}
	for _, c := range categories {
		if strings.EqualFold(c.Name, query) {
			return c, true, nil
		}
	}
	return Category{}, false, nil
}
