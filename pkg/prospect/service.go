package prospect

import (
	"context"
	"errors"
	"fmt"
)

type ProspectInput struct {
	Type         Type
	Name         string
	Email        string
	TargetBudget *float64
	Status       Status
	Swimlane     string
	Tags         []string
	Notes        string
	WebsiteURL   string
	ImageURL     string
}

// UpdateInput carries partial updates; nil fields are left untouched.
// ClearTargetBudget removes the budget (a nil TargetBudget alone means "not
// provided").
type UpdateInput struct {
	Type              *Type
	Name              *string
	Email             *string
	TargetBudget      *float64
	ClearTargetBudget bool
	Status            *Status
	Swimlane          *string
	Tags              []string
	Notes             *string
	WebsiteURL        *string
	ImageURL          *string
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// List returns prospects matching the filter. Status and swimlane narrow the
// query; tag filtering is applied here since tags live in a JSON column.
func (s *Service) List(ctx context.Context, filter Filter) ([]Prospect, error) {
	prospects, err := s.repo.List(ctx, Filter{Status: filter.Status, Swimlane: filter.Swimlane})
	if err != nil {
		return nil, err
	}
	if len(filter.Tags) == 0 {
		return prospects, nil
	}

	matched := make([]Prospect, 0, len(prospects))
	for _, p := range prospects {
		if p.Matches(filter) {
			matched = append(matched, p)
		}
	}
	return matched, nil
}

func (s *Service) Get(ctx context.Context, id string) (*Prospect, error) {
	prospect, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return &prospect, nil
}

func (s *Service) Create(ctx context.Context, input ProspectInput) (*Prospect, error) {
	prospect := Prospect{
		Type:         input.Type,
		Name:         input.Name,
		Email:        input.Email,
		TargetBudget: input.TargetBudget,
		Status:       input.Status,
		Swimlane:     input.Swimlane,
		Tags:         dedupeTags(input.Tags),
		Notes:        input.Notes,
		WebsiteURL:   input.WebsiteURL,
		ImageURL:     input.ImageURL,
	}
	if prospect.Type == "" {
		prospect.Type = TypePerson
	}
	if prospect.Status == "" {
		prospect.Status = StatusNew
	}
	if err := prospect.Validate(); err != nil {
		return nil, err
	}

	stored, err := s.repo.Store(ctx, prospect)
	if err != nil {
		return nil, fmt.Errorf("failed to store prospect: %w", err)
	}
	return &stored, nil
}

func (s *Service) Update(ctx context.Context, id string, input UpdateInput) (*Prospect, error) {
	prospect, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Type != nil {
		prospect.Type = *input.Type
	}
	if input.Name != nil {
		prospect.Name = *input.Name
	}
	if input.Email != nil {
		prospect.Email = *input.Email
	}
	if input.ClearTargetBudget {
		prospect.TargetBudget = nil
	} else if input.TargetBudget != nil {
		prospect.TargetBudget = input.TargetBudget
	}
	if input.Status != nil {
		prospect.Status = *input.Status
	}
	if input.Swimlane != nil {
		prospect.Swimlane = *input.Swimlane
	}
	if input.Tags != nil {
		prospect.Tags = dedupeTags(input.Tags)
	}
	if input.Notes != nil {
		prospect.Notes = *input.Notes
	}
	if input.WebsiteURL != nil {
		prospect.WebsiteURL = *input.WebsiteURL
	}
	if input.ImageURL != nil {
		prospect.ImageURL = *input.ImageURL
	}

	if err := prospect.Validate(); err != nil {
		return nil, err
	}

	updated, err := s.repo.Update(ctx, prospect)
	if err != nil {
		return nil, fmt.Errorf("failed to update prospect: %w", err)
	}
	return &updated, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

// MoveSwimlane places the prospect in the named board column.
func (s *Service) MoveSwimlane(ctx context.Context, id string, swimlane string) (*Prospect, error) {
	prospect, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	prospect.Swimlane = swimlane
	updated, err := s.repo.Update(ctx, prospect)
	if err != nil {
		return nil, fmt.Errorf("failed to move prospect: %w", err)
	}
	return &updated, nil
}

// AddTag attaches the tag if not already present.
func (s *Service) AddTag(ctx context.Context, id string, tag string) (*Prospect, error) {
	if tag == "" {
		return nil, errors.New("tag must not be empty")
	}
	prospect, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if prospect.HasTag(tag) {
		return &prospect, nil
	}
	prospect.Tags = append(prospect.Tags, tag)
	updated, err := s.repo.Update(ctx, prospect)
	if err != nil {
		return nil, fmt.Errorf("failed to tag prospect: %w", err)
	}
	return &updated, nil
}

// RemoveTag detaches the tag; removing an absent tag is a no-op.
func (s *Service) RemoveTag(ctx context.Context, id string, tag string) (*Prospect, error) {
	prospect, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !prospect.HasTag(tag) {
		return &prospect, nil
	}
	tags := make([]string, 0, len(prospect.Tags)-1)
	for _, t := range prospect.Tags {
		if t != tag {
			tags = append(tags, t)
		}
	}
	prospect.Tags = tags
	updated, err := s.repo.Update(ctx, prospect)
	if err != nil {
		return nil, fmt.Errorf("failed to untag prospect: %w", err)
	}
	return &updated, nil
}

// EnsurePerson finds the person prospect with the given email or creates a
// new one in the default pipeline stage. Used when a visitor books a slot.
func (s *Service) EnsurePerson(ctx context.Context, name, email string) (*Prospect, error) {
	existing, err := s.repo.FindByEmail(ctx, email)
	if err == nil {
		return &existing, nil
	}
	if !errors.Is(err, ErrProspectNotFound) {
		return nil, err
	}

	return s.Create(ctx, ProspectInput{
		Type:   TypePerson,
		Name:   name,
		Email:  email,
		Status: StatusNew,
	})
}

func dedupeTags(tags []string) []string {
	if tags == nil {
		return nil
	}
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if _, ok := seen[t]; ok || t == "" {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
