// Package account implements the registration and credential verification
// workflow over the account table. Accounts move UNREGISTERED -> PENDING
// (approved=NO) -> APPROVED (approved=YES); approval itself is a manual
// edit of the backing table, there is no reverse transition.
package account

import (
	"github.com/facetlabs/facet/internal/common/cnst"
	"github.com/facetlabs/facet/internal/textnorm"
)

// Account is a durable account record. Password is stored as typed (after
// cell cleaning); comparisons use the normalized forms, storage keeps case.
type Account struct {
	Username string
	Password string
	Role     string
	Approved bool
}

// IsAdmin reports whether the account's role is admin, case-insensitively.
func (a *Account) IsAdmin() bool {
	return textnorm.Normalize(a.Role) == cnst.RoleAdmin
}

// IsSupplier reports whether the account's role is supplier.
func (a *Account) IsSupplier() bool {
	return textnorm.Normalize(a.Role) == cnst.RoleSupplier
}

func fromRow(row map[string]string) *Account {
	return &Account{
		Username: row["USERNAME"],
		Password: row["PASSWORD"],
		Role:     row["ROLE"],
		Approved: textnorm.Normalize(row["APPROVED"]) == "yes",
	}
}

func toRow(a *Account) map[string]string {
	approved := cnst.No
	if a.Approved {
		approved = cnst.Yes
	}
	return map[string]string{
		"USERNAME": a.Username,
		"PASSWORD": a.Password,
		"ROLE":     a.Role,
		"APPROVED": approved,
	}
}
