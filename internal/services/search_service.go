package services

import (
	"context"
	"errors"
	"strings"

	"traindesk/internal/models"
	"traindesk/internal/repositories"

	"github.com/google/uuid"
)

// SearchService answers the admin search page: a single term matched against
// course, module, and content titles inside one tenant.
type SearchService interface {
	Search(ctx context.Context, tenantID uuid.UUID, term string) (*models.SearchResults, error)
}

type searchService struct {
	searchRepo repositories.SearchRepository
}

func NewSearchService(searchRepo repositories.SearchRepository) SearchService {
	return &searchService{searchRepo: searchRepo}
}

func (s *searchService) Search(ctx context.Context, tenantID uuid.UUID, term string) (*models.SearchResults, error) {
	term = strings.TrimSpace(term)
	if len(term) < 2 {
		return nil, errors.New("search term must be at least 2 characters")
	}
	return s.searchRepo.Search(ctx, tenantID, term)
}
