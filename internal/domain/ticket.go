package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusOpen       TicketStatus = "open"
	TicketStatusInProgress TicketStatus = "in_progress"
	TicketStatusClosed     TicketStatus = "closed"
)

// ParseTicketStatus validates a status name.
func ParseTicketStatus(value string) (TicketStatus, error) {
	status := TicketStatus(strings.ToLower(strings.TrimSpace(value)))
	switch status {
	case TicketStatusOpen, TicketStatusInProgress, TicketStatusClosed:
		return status, nil
	default:
		return "", fmt.Errorf("unknown status %q", value)
	}
}

// TicketPriority orders tickets; higher values sort first.
type TicketPriority int

const (
	TicketPriorityNone   TicketPriority = 0
	TicketPriorityLow    TicketPriority = 1
	TicketPriorityMedium TicketPriority = 2
	TicketPriorityHigh   TicketPriority = 3
)

var priorityNames = map[TicketPriority]string{
	TicketPriorityNone:   "none",
	TicketPriorityLow:    "low",
	TicketPriorityMedium: "medium",
	TicketPriorityHigh:   "high",
}

// ParseTicketPriority accepts either the name ("high") or the level ("3").
func ParseTicketPriority(value string) (TicketPriority, error) {
	value = strings.ToLower(strings.TrimSpace(value))
	for level, name := range priorityNames {
		if name == value {
			return level, nil
		}
	}
	if level, err := strconv.Atoi(value); err == nil {
		if _, ok := priorityNames[TicketPriority(level)]; ok {
			return TicketPriority(level), nil
		}
	}
	return 0, fmt.Errorf("unknown priority %q", value)
}

func (p TicketPriority) String() string {
	if name, ok := priorityNames[p]; ok {
		return name
	}
	return strconv.Itoa(int(p))
}

// MarshalText renders the priority by name.
func (p TicketPriority) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText parses a priority name or level.
func (p *TicketPriority) UnmarshalText(text []byte) error {
	parsed, err := ParseTicketPriority(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// Ticket is a support request raised within one company.
type Ticket struct {
	ID          int64
	PublicID    string
	CompanyID   int64
	UserID      *int64
	FirstName   string
	LastName    string
	Email       string
	Subject     string
	Description string
	Status      TicketStatus
	Priority    TicketPriority
	AssignedTo  *int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// IsClosed reports whether the ticket reached its terminal state.
func (t *Ticket) IsClosed() bool {
	return t.Status == TicketStatusClosed
}

// AssignedToUser reports whether userID is the current assignee.
func (t *Ticket) AssignedToUser(userID int64) bool {
	return t.AssignedTo != nil && *t.AssignedTo == userID
}

// TicketResolution is the immutable closing note of a ticket.
type TicketResolution struct {
	ID        int64
	TicketID  int64
	Message   string
	CreatedAt time.Time
}
