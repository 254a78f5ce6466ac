// Package policy centralises every role/district/ownership decision of the
// report workflow. All checks are pure functions over the request-scoped
// actor identity; each denial carries its own reason so callers and tests
// can tell ownership, district-scope, role, and finalized-state apart.
package policy

import (
	"github.com/omomfi/district-reports-api/internal/models"
	appErrors "github.com/omomfi/district-reports-api/pkg/errors"
)

// Actor is the resolved request identity the core trusts.
type Actor struct {
	Username string
	Role     models.UserRole
	District string
}

// ActorFromClaims builds an Actor from validated JWT claims.
func ActorFromClaims(claims *models.JWTClaims) Actor {
	if claims == nil {
		return Actor{}
	}
	return Actor{
		Username: claims.Username,
		Role:     claims.Role,
		District: claims.District,
	}
}

// CanUpload permits district users (scoped to their own district) and the
// main office; district managers may not upload.
func CanUpload(actor Actor) error {
	switch actor.Role {
	case models.RoleDistrictUser, models.RoleMainOffice:
		return nil
	}
	return appErrors.Clone(appErrors.ErrWrongRole, "only district users or main office can upload reports")
}

// CanEdit permits title/description changes only by the original preparer,
// and only while they hold the district_user role.
func CanEdit(actor Actor, preparedBy string) error {
	if actor.Role != models.RoleDistrictUser {
		return appErrors.Clone(appErrors.ErrWrongRole, "only district users can edit reports")
	}
	if actor.Username != preparedBy {
		return appErrors.Clone(appErrors.ErrNotOwner, "you can only edit your own reports")
	}
	return nil
}

// CanDelete applies the edit ownership rule plus the finalized guard: a
// record that has been checked or approved can no longer be deleted, even
// by its preparer.
func CanDelete(actor Actor, preparedBy string, finalized bool) error {
	if err := CanEdit(actor, preparedBy); err != nil {
		return err
	}
	if finalized {
		return appErrors.ErrFinalized
	}
	return nil
}

// CanSetCheckerStatus permits district managers, and only for reports whose
// preparer belongs to the manager's own district.
func CanSetCheckerStatus(actor Actor, preparerDistrict string) error {
	if actor.Role != models.RoleDistrictManager {
		return appErrors.Clone(appErrors.ErrWrongRole, "only district managers can update checker status")
	}
	if preparerDistrict != actor.District {
		return appErrors.Clone(appErrors.ErrWrongDistrict, "you can only check reports from your own district")
	}
	return nil
}

// CanSetReviewerStatus permits the main office only.
func CanSetReviewerStatus(actor Actor) error {
	if actor.Role != models.RoleMainOffice {
		return appErrors.Clone(appErrors.ErrWrongRole, "only main office can update reviewer status")
	}
	return nil
}

// ListScope returns the district filter for listings: district roles see
// their own district, the main office sees everything.
func ListScope(actor Actor) (district string, all bool) {
	if actor.Role == models.RoleMainOffice {
		return "", true
	}
	return actor.District, false
}

// CanDownload restricts district roles to records of their own district.
func CanDownload(actor Actor, recordDistrict string) error {
	if actor.Role == models.RoleMainOffice {
		return nil
	}
	if recordDistrict != actor.District {
		return appErrors.Clone(appErrors.ErrWrongDistrict, "you can only download reports from your own district")
	}
	return nil
}

// CanViewMerged permits the main office only.
func CanViewMerged(actor Actor) error {
	if actor.Role != models.RoleMainOffice {
		return appErrors.Clone(appErrors.ErrWrongRole, "only main office can view merged reports")
	}
	return nil
}

// CanManageUsers permits the main office only.
func CanManageUsers(actor Actor) error {
	if actor.Role != models.RoleMainOffice {
		return appErrors.Clone(appErrors.ErrWrongRole, "only main office can manage users")
	}
	return nil
}
