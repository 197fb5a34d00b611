package billing

import (
	"github.com/condoledger/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// PropertyStatus gates whether a property receives receipts
type PropertyStatus string

const (
	PropertyStatusOccupied  PropertyStatus = "OCCUPIED"
	PropertyStatusVacant    PropertyStatus = "VACANT"
	PropertyStatusSuspended PropertyStatus = "SUSPENDED"
)

// IsValid checks if the status is a valid PropertyStatus
func (s PropertyStatus) IsValid() bool {
	switch s {
	case PropertyStatusOccupied, PropertyStatusVacant, PropertyStatusSuspended:
		return true
	}
	return false
}

// IsBillable returns true if properties in this status receive receipts
func (s PropertyStatus) IsBillable() bool {
	return s == PropertyStatusOccupied
}

// Property is the directory snapshot the allocation engine works from.
// The surrounding administration app owns the property records themselves;
// the engine only reads id, ownership, aliquot and billing eligibility.
type Property struct {
	ID            uuid.UUID
	CondominiumID uuid.UUID
	OwnerID       uuid.UUID
	UserID        uuid.UUID // billable identity behind the owner
	Code          string    // unit label, e.g. "PH-3A"
	Aliquot       *valueobject.Aliquot
	Status        PropertyStatus
}

// IsEligible returns true if the property participates in expense allocation
func (p Property) IsEligible() bool {
	return p.Status.IsBillable()
}
