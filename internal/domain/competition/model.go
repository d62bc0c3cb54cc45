package competition

import (
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/competition-manager/internal/domain/fielderr"
)

// DateLayout is the calendar date format of start and end dates.
const DateLayout = "2006-01-02"

type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusFinished   Status = "finished"
)

var nextStatus = map[Status]Status{
	StatusPending:    StatusInProgress,
	StatusInProgress: StatusFinished,
}

func ParseStatus(v string) (Status, error) {
	switch s := Status(strings.ToLower(strings.TrimSpace(v))); s {
	case StatusPending, StatusInProgress, StatusFinished:
		return s, nil
	default:
		return "", fmt.Errorf("unknown competition status %q", v)
	}
}

// Next returns the only status reachable from s. Finished is terminal.
func (s Status) Next() (Status, bool) {
	next, ok := nextStatus[s]
	return next, ok
}

// CanTransition allows exactly one step forward.
func CanTransition(from, to Status) bool {
	next, ok := from.Next()
	return ok && next == to
}

// Competition is a tournament owned by one user.
type Competition struct {
	ID        string
	Name      string
	StartDate string
	EndDate   string
	Location  string
	Status    Status
	UserID    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (c Competition) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return fielderr.Required("name")
	}
	if c.Status != "" {
		if _, err := ParseStatus(string(c.Status)); err != nil {
			return fielderr.Invalid("status", err.Error())
		}
	}
	return validateDates(c.StartDate, c.EndDate)
}

// Patch carries the fields of a partial update. Nil fields are left unchanged.
type Patch struct {
	Name      *string
	StartDate *string
	EndDate   *string
	Location  *string
	Status    *Status
}

func (p Patch) IsEmpty() bool {
	return p.Name == nil && p.StartDate == nil && p.EndDate == nil && p.Location == nil && p.Status == nil
}

// Trimmed returns the patch with surrounding spaces removed from its text fields.
func (p Patch) Trimmed() Patch {
	p.Name = trimmed(p.Name)
	p.StartDate = trimmed(p.StartDate)
	p.EndDate = trimmed(p.EndDate)
	p.Location = trimmed(p.Location)
	return p
}

func trimmed(v *string) *string {
	if v == nil {
		return nil
	}
	t := strings.TrimSpace(*v)
	return &t
}

// Apply returns c with the patch merged onto it.
func (p Patch) Apply(c Competition) Competition {
	if p.Name != nil {
		c.Name = *p.Name
	}
	if p.StartDate != nil {
		c.StartDate = *p.StartDate
	}
	if p.EndDate != nil {
		c.EndDate = *p.EndDate
	}
	if p.Location != nil {
		c.Location = *p.Location
	}
	if p.Status != nil {
		c.Status = *p.Status
	}
	return c
}

func validateDates(start, end string) error {
	var startAt, endAt time.Time
	var err error
	if start != "" {
		if startAt, err = time.Parse(DateLayout, start); err != nil {
			return fielderr.Invalid("start_date", "must be YYYY-MM-DD")
		}
	}
	if end != "" {
		if endAt, err = time.Parse(DateLayout, end); err != nil {
			return fielderr.Invalid("end_date", "must be YYYY-MM-DD")
		}
	}
	if start != "" && end != "" && endAt.Before(startAt) {
		return fielderr.Invalid("end_date", "is before start date")
	}
	return nil
}
