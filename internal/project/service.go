package project

import (
	"context"
	"errors"
	"strings"

	"github.com/oakmontlabs/timepunch/internal/repository"
)

var (
	ErrNameRequired = errors.New("project name is required")
	ErrNameTaken    = errors.New("project name already exists")
	ErrNotFound     = errors.New("project not found")
)

type Store interface {
	repository.ProjectRepository
}

type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

// Create adds a project under the user. Names are trimmed and must be
// unique per user; the unique index is the gate, not a prior lookup.
func (s *Service) Create(ctx context.Context, userID, name string) (*repository.Project, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrNameRequired
	}
	p, err := s.store.CreateProject(ctx, repository.CreateProjectInput{UserID: userID, Name: name})
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrNameTaken
		}
		return nil, err
	}
	return p, nil
}

func (s *Service) Rename(ctx context.Context, userID, id, name string) (*repository.Project, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrNameRequired
	}
	p, err := s.store.RenameProject(ctx, userID, id, name)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return nil, ErrNotFound
		case errors.Is(err, repository.ErrDuplicate):
			return nil, ErrNameTaken
		}
		return nil, err
	}
	return p, nil
}

// Delete removes the project. Sessions that referenced it survive with
// a nulled project reference; nothing cascades.
func (s *Service) Delete(ctx context.Context, userID, id string) error {
	err := s.store.DeleteProject(ctx, userID, id)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrNotFound
	}
	return err
}

func (s *Service) List(ctx context.Context, userID string) ([]repository.Project, error) {
	return s.store.ListProjects(ctx, userID)
}
