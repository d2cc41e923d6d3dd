// Package domain holds the shared identifier and enum primitives. Typed IDs
// keep container, request, and party identifiers from being mixed up at
// compile time.
package domain

import (
	"github.com/google/uuid"

	dErrors "geovault/pkg/domain-errors"
)

// ContainerID identifies a sealed data container.
type ContainerID uuid.UUID

// RequestID identifies an analysis request.
type RequestID uuid.UUID

// OwnerID identifies the data owner that published a container.
type OwnerID uuid.UUID

// ResearcherID identifies the researcher behind an analysis request.
type ResearcherID uuid.UUID

// NewContainerID returns a fresh random container ID.
func NewContainerID() ContainerID { return ContainerID(uuid.New()) }

// NewRequestID returns a fresh random request ID.
func NewRequestID() RequestID { return RequestID(uuid.New()) }

// NewOwnerID returns a fresh random owner ID.
func NewOwnerID() OwnerID { return OwnerID(uuid.New()) }

// NewResearcherID returns a fresh random researcher ID.
func NewResearcherID() ResearcherID { return ResearcherID(uuid.New()) }

// parseUUID enforces the shared invariant: IDs must be valid, non-empty,
// non-nil UUIDs. Call the typed Parse functions at trust boundaries; direct
// casting bypasses validation.
func parseUUID(s string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id cannot be empty")
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id is not a valid UUID")
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id cannot be the nil UUID")
	}
	return u, nil
}

// ParseContainerID constructs a ContainerID from external input.
func ParseContainerID(s string) (ContainerID, error) {
	u, err := parseUUID(s)
	if err != nil {
		return ContainerID{}, err
	}
	return ContainerID(u), nil
}

// ParseRequestID constructs a RequestID from external input.
func ParseRequestID(s string) (RequestID, error) {
	u, err := parseUUID(s)
	if err != nil {
		return RequestID{}, err
	}
	return RequestID(u), nil
}

// ParseOwnerID constructs an OwnerID from external input.
func ParseOwnerID(s string) (OwnerID, error) {
	u, err := parseUUID(s)
	if err != nil {
		return OwnerID{}, err
	}
	return OwnerID(u), nil
}

// ParseResearcherID constructs a ResearcherID from external input.
func ParseResearcherID(s string) (ResearcherID, error) {
	u, err := parseUUID(s)
	if err != nil {
		return ResearcherID{}, err
	}
	return ResearcherID(u), nil
}

func (id ContainerID) String() string  { return uuid.UUID(id).String() }
func (id RequestID) String() string    { return uuid.UUID(id).String() }
func (id OwnerID) String() string      { return uuid.UUID(id).String() }
func (id ResearcherID) String() string { return uuid.UUID(id).String() }

func (id ContainerID) IsNil() bool  { return uuid.UUID(id) == uuid.Nil }
func (id RequestID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }
func (id OwnerID) IsNil() bool      { return uuid.UUID(id) == uuid.Nil }
func (id ResearcherID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }

// The IDs serialize as canonical UUID strings so JSON payloads and cache
// entries stay readable.

func (id ContainerID) MarshalText() ([]byte, error)  { return []byte(id.String()), nil }
func (id RequestID) MarshalText() ([]byte, error)    { return []byte(id.String()), nil }
func (id OwnerID) MarshalText() ([]byte, error)      { return []byte(id.String()), nil }
func (id ResearcherID) MarshalText() ([]byte, error) { return []byte(id.String()), nil }

func (id *ContainerID) UnmarshalText(b []byte) error {
	parsed, err := ParseContainerID(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

func (id *RequestID) UnmarshalText(b []byte) error {
	parsed, err := ParseRequestID(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

func (id *OwnerID) UnmarshalText(b []byte) error {
	parsed, err := ParseOwnerID(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

func (id *ResearcherID) UnmarshalText(b []byte) error {
	parsed, err := ParseResearcherID(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}
