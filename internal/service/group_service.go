package service

import (
	"context"
	"strings"

	"yatube/internal/models"
	"yatube/internal/repository"
	"yatube/internal/validation"
)

// GroupService is the administrator-facing CRUD over groups.
type GroupService struct {
	groupRepo repository.GroupRepository
}

type GroupInput struct {
	Title       string
	Slug        string
	Description string
}

func NewGroupService(groupRepo repository.GroupRepository) *GroupService {
	return &GroupService{groupRepo: groupRepo}
}

func (s *GroupService) ListGroups(ctx context.Context) ([]*models.Group, error) {
	return s.groupRepo.List(ctx)
}

func (s *GroupService) GetGroup(ctx context.Context, slug string) (*models.Group, error) {
	return s.groupRepo.GetBySlug(ctx, slug)
}

// CreateGroup validates and stores a new group. A taken slug is a conflict.
func (s *GroupService) CreateGroup(ctx context.Context, in GroupInput) (*models.Group, error) {
	group, err := buildGroup(in)
	if err != nil {
		return nil, err
	}
	if err := s.groupRepo.Create(ctx, group); err != nil {
		return nil, err
	}
	return group, nil
}

// UpdateGroup replaces the title, slug and description of the group at slug.
func (s *GroupService) UpdateGroup(ctx context.Context, slug string, in GroupInput) (*models.Group, error) {
	existing, err := s.groupRepo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	updated, err := buildGroup(in)
	if err != nil {
		return nil, err
	}
	updated.ID = existing.ID
	if err := s.groupRepo.Update(ctx, updated); err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteGroup removes the group and every post in it.
func (s *GroupService) DeleteGroup(ctx context.Context, slug string) error {
	group, err := s.groupRepo.GetBySlug(ctx, slug)
	if err != nil {
		return err
	}
	return s.groupRepo.Delete(ctx, group.ID)
}

func buildGroup(in GroupInput) (*models.Group, error) {
	group := &models.Group{
		Title:       strings.TrimSpace(in.Title),
		Slug:        strings.TrimSpace(in.Slug),
		Description: strings.TrimSpace(in.Description),
	}
	if err := validation.ValidateGroupTitle(group.Title); err != nil {
		return nil, models.NewFieldError("title", err.Error())
	}
	if err := validation.ValidateGroupSlug(group.Slug); err != nil {
		return nil, models.NewFieldError("slug", err.Error())
	}
	return group, nil
}
