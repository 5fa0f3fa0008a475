// Package contact validates and stores contact form submissions.
package contact

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/go-drift/nodeward/pkg/errors"
)

// Industries accepted in the industry field.
var Industries = []string{"exchange", "mining", "custody", "defi", "enterprise", "other"}

// MaxMessageLength bounds the free-text message.
const MaxMessageLength = 5000

// Submission is one contact form post.
type Submission struct {
	ID        string    `json:"id,omitempty"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Industry  string    `json:"industry,omitempty"`
	Message   string    `json:"message,omitempty"`
	CreatedAt time.Time `json:"createdAt,omitempty"`
}

// Normalize trims surrounding whitespace and lowercases the industry.
func (s *Submission) Normalize() {
	s.Name = strings.TrimSpace(s.Name)
	s.Email = strings.TrimSpace(s.Email)
	s.Industry = strings.ToLower(strings.TrimSpace(s.Industry))
	s.Message = strings.TrimSpace(s.Message)
}

// Validate checks the submission. It expects a normalized value.
func (s *Submission) Validate() error {
	const op = "contact.Validate"
	if s.Name == "" {
		return errors.Validation(op, fmt.Errorf("name is required"))
	}
	if s.Email == "" {
		return errors.Validation(op, fmt.Errorf("email is required"))
	}
	addr, err := mail.ParseAddress(s.Email)
	if err != nil || addr.Address != s.Email {
		return errors.Validation(op, fmt.Errorf("email %q is not a valid address", s.Email))
	}
	if s.Industry != "" && !validIndustry(s.Industry) {
		return errors.Validation(op, fmt.Errorf("unknown industry %q", s.Industry))
	}
	if len(s.Message) > MaxMessageLength {
		return errors.Validation(op, fmt.Errorf("message longer than %d bytes", MaxMessageLength))
	}
	return nil
}

func validIndustry(v string) bool {
	for _, i := range Industries {
		if i == v {
			return true
		}
	}
	return false
}

// Store persists submissions.
type Store interface {
	// Insert assigns an id and creation time, stores the submission and
	// returns the stored value.
	Insert(ctx context.Context, s Submission) (Submission, error)
	// List returns up to limit submissions, newest first.
	List(ctx context.Context, limit int) ([]Submission, error)
	Close() error
}
