package booking

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type StubBookingRepository struct {
	Requests []BookingRequest
}

func NewStubBookingRepository() *StubBookingRepository {
	return &StubBookingRepository{}
}

func (s *StubBookingRepository) Store(ctx context.Context, request BookingRequest) (BookingRequest, error) {
	if request.ID == "" {
		request.ID = uuid.NewString()
	}
	if request.CreatedAt.IsZero() {
		request.CreatedAt = time.Now()
	}
	s.Requests = append(s.Requests, request)
	return request, nil
}

func (s *StubBookingRepository) Delete(ctx context.Context, id string) error {
	for i, r := range s.Requests {
		if r.ID == id {
			s.Requests = append(s.Requests[:i], s.Requests[i+1:]...)
			return nil
		}
	}
	return nil
}

func (s *StubBookingRepository) ForEvent(ctx context.Context, eventID string) ([]BookingRequest, error) {
	var out []BookingRequest
	for _, r := range s.Requests {
		if r.CalendarEventID == eventID {
			out = append(out, r)
		}
	}
	return out, nil
}
