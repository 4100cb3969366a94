package prospect

import (
	"errors"
	"fmt"
	"time"
)

type Type string

const (
	TypePerson  Type = "person"
	TypeCompany Type = "company"
)

type Status string

const (
	StatusNew       Status = "new"
	StatusContacted Status = "contacted"
	StatusMeeting   Status = "meeting"
	StatusProposal  Status = "proposal"
	StatusClosed    Status = "closed"
	StatusLost      Status = "lost"
	StatusOther     Status = "other"
)

var ErrProspectNotFound = errors.New("prospect not found")

// Prospect is a CRM record: a person or company being tracked through the
// pipeline. Swimlane is a free-form board column name; Tags is an unordered
// set.
type Prospect struct {
	ID           string
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
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Filter narrows a prospect listing. Zero values match everything; Tags
// requires every listed tag to be present.
type Filter struct {
	Status   Status
	Swimlane string
	Tags     []string
}

func (t Type) valid() bool {
	return t == TypePerson || t == TypeCompany
}

func (s Status) valid() bool {
	switch s {
	case StatusNew, StatusContacted, StatusMeeting, StatusProposal, StatusClosed, StatusLost, StatusOther:
		return true
	}
	return false
}

func (p Prospect) Validate() error {
	if p.Name == "" {
		return errors.New("prospect name is required")
	}
	if !p.Type.valid() {
		return fmt.Errorf("unknown prospect type %q", p.Type)
	}
	if !p.Status.valid() {
		return fmt.Errorf("unknown prospect status %q", p.Status)
	}
	return nil
}

// HasTag reports whether the prospect carries the tag.
func (p Prospect) HasTag(tag string) bool {
	for _, t := range p.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// Matches reports whether the prospect passes the filter.
func (p Prospect) Matches(f Filter) bool {
	if f.Status != "" && p.Status != f.Status {
		return false
	}
	if f.Swimlane != "" && p.Swimlane != f.Swimlane {
		return false
	}
	for _, tag := range f.Tags {
		if !p.HasTag(tag) {
			return false
		}
	}
	return true
}
