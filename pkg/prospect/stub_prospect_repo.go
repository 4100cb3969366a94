package prospect

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
)

type StubProspectRepository struct {
	Prospects map[string]Prospect
	order     []string
}

func NewStubProspectRepository() *StubProspectRepository {
	return &StubProspectRepository{Prospects: map[string]Prospect{}}
}

func (s *StubProspectRepository) Store(ctx context.Context, prospect Prospect) (Prospect, error) {
	if prospect.ID == "" {
		prospect.ID = uuid.NewString()
	}
	if prospect.CreatedAt.IsZero() {
		prospect.CreatedAt = time.Now().Add(time.Duration(len(s.order)) * time.Millisecond)
	}
	s.Prospects[prospect.ID] = prospect
	s.order = append(s.order, prospect.ID)
	return prospect, nil
}

func (s *StubProspectRepository) Get(ctx context.Context, id string) (Prospect, error) {
	prospect, ok := s.Prospects[id]
	if !ok {
		return Prospect{}, ErrProspectNotFound
	}
	return prospect, nil
}

func (s *StubProspectRepository) FindByEmail(ctx context.Context, email string) (Prospect, error) {
	for _, id := range s.order {
		if p, ok := s.Prospects[id]; ok && p.Email == email {
			return p, nil
		}
	}
	return Prospect{}, ErrProspectNotFound
}

func (s *StubProspectRepository) List(ctx context.Context, filter Filter) ([]Prospect, error) {
	var out []Prospect
	for _, p := range s.Prospects {
		if filter.Status != "" && p.Status != filter.Status {
			continue
		}
		if filter.Swimlane != "" && p.Swimlane != filter.Swimlane {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *StubProspectRepository) Update(ctx context.Context, prospect Prospect) (Prospect, error) {
	if _, ok := s.Prospects[prospect.ID]; !ok {
		return Prospect{}, ErrProspectNotFound
	}
	s.Prospects[prospect.ID] = prospect
	return prospect, nil
}

func (s *StubProspectRepository) Delete(ctx context.Context, id string) error {
	if _, ok := s.Prospects[id]; !ok {
		return ErrProspectNotFound
	}
	delete(s.Prospects, id)
	return nil
}
