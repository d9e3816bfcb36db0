package core

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ID represents a domain identifier
type ID string

// NewID creates a new unique identifier using UUID v7 for time-ordered generation
func NewID() ID {
	id, err := uuid.NewV7()
	if err != nil {
		// Fallback to v4 if v7 fails
		id = uuid.New()
	}
	return ID(id.String())
}

// String returns the string representation
func (id ID) String() string {
	return string(id)
}

// IsEmpty checks if the ID is empty
func (id ID) IsEmpty() bool {
	return id == ""
}

// Domain-specific ID types
type (
	// RunID identifies one pipeline run.
	RunID ID
	// ParticipantID identifies one study participant (column pid).
	ParticipantID ID
	// FaceID identifies one face stimulus in canonical "face_<n>" form.
	FaceID ID
)

// String conversions for domain IDs
func (id RunID) String() string         { return ID(id).String() }
func (id ParticipantID) String() string { return ID(id).String() }
func (id FaceID) String() string        { return ID(id).String() }

// NewRunID creates a fresh run identifier.
func NewRunID() RunID {
	return RunID(NewID())
}

// ParseParticipantID parses a string into ParticipantID
func ParseParticipantID(s string) (ParticipantID, error) {
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("participant ID cannot be empty")
	}
	return ParticipantID(strings.TrimSpace(s)), nil
}

// ParseFaceID parses a string into FaceID
func ParseFaceID(s string) (FaceID, error) {
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("face ID cannot be empty")
	}
	return FaceID(strings.TrimSpace(s)), nil
}
