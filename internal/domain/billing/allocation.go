package billing

import (
	"fmt"

	"github.com/condoledger/backend/internal/domain/shared"
	"github.com/condoledger/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// Share is one property's portion of an allocated expense total
type Share struct {
	PropertyID uuid.UUID
	OwnerID    uuid.UUID
	UserID     uuid.UUID
	Aliquot    valueobject.Aliquot
	Amount     valueobject.Money
}

// AllocateExpenses splits a monthly expense total across the billable
// properties of a condominium by their aliquot percentages.
//
// Every eligible property must carry a positive aliquot, a zero aliquot
// counts as unassigned, and the aliquots must sum to 100% within tolerance. Shares are rounded half-up to the minor unit;
// any rounding residue is carried by the property with the largest aliquot
// so that the shares always add back up to the exact input total.
func AllocateExpenses(total valueobject.Money, properties []Property) ([]Share, error) {
	if total.IsNegative() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "expense total cannot be negative")
	}

	eligible := make([]Property, 0, len(properties))
	for _, p := range properties {
		if p.IsEligible() {
			eligible = append(eligible, p)
		}
	}
	if len(eligible) == 0 {
		return nil, shared.NewDomainError("NO_ELIGIBLE_PROPERTIES", "condominium has no billable properties")
	}

	aliquots := make([]valueobject.Aliquot, 0, len(eligible))
	for _, p := range eligible {
		if p.Aliquot == nil || p.Aliquot.IsZero() {
			return nil, shared.NewDomainError("MISSING_ALIQUOT",
				fmt.Sprintf("property %s has no aliquot assigned", p.Code))
		}
		aliquots = append(aliquots, *p.Aliquot)
	}

	sum := valueobject.SumAliquots(aliquots)
	if !valueobject.AliquotSumIsComplete(sum) {
		return nil, shared.NewDomainError("INVALID_ALLOCATION",
			fmt.Sprintf("aliquots sum to %s%%, off 100%% by %s",
				sum.String(), valueobject.AliquotSumDelta(sum).String()))
	}

	shares := make([]Share, 0, len(eligible))
	allocated := valueobject.Zero(total.Currency())
	largest := 0
	for i, p := range eligible {
		amount := p.Aliquot.ShareOf(total).RoundMinorUnit()
		shares = append(shares, Share{
			PropertyID: p.ID,
			OwnerID:    p.OwnerID,
			UserID:     p.UserID,
			Aliquot:    *p.Aliquot,
			Amount:     amount,
		})
		allocated = allocated.MustAdd(amount)
		if p.Aliquot.GreaterThan(*eligible[largest].Aliquot) {
			largest = i
		}
	}

	// rounding residue lands on the largest aliquot
	residue, err := total.Subtract(allocated)
	if err != nil {
		return nil, err
	}
	if !residue.IsZero() {
		shares[largest].Amount = shares[largest].Amount.MustAdd(residue)
		if shares[largest].Amount.IsNegative() {
			return nil, shared.NewDomainError("INVALID_ALLOCATION",
				"rounding residue exceeds the largest share")
		}
	}

	return shares, nil
}
