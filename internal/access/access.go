// Package access decides what a caller may do with sales.
//
// Admins are superusers over every sale. Regular users can only act on
// sales they own. Every function here is pure: it looks only at the caller
// identity and the sale, never at storage or the request.
package access

import (
	"errors"

	"github.com/mmynk/salesledger/internal/models"
)

var (
	// ErrForbidden is returned when the caller is authenticated but not allowed.
	ErrForbidden = errors.New("you can only access your own sales")
	// ErrOwnerRequired is returned when an admin creates a sale without naming its owner.
	ErrOwnerRequired = errors.New("admin must provide userId to create a sale")
	// ErrForeignOwner is returned when a regular user tries to create a sale for someone else.
	ErrForeignOwner = errors.New("regular users cannot create sales for other users")
)

// ResolveOwner returns the owner a new sale should get.
//
// requested is the owner ID named in the request, or nil if none was given.
// Admins must name an owner. Users may omit it or name themselves.
func ResolveOwner(caller models.Identity, requested *string) (string, error) {
	if caller.IsAdmin() {
		if requested == nil || *requested == "" {
			return "", ErrOwnerRequired
		}
		return *requested, nil
	}

	if requested != nil && *requested != "" && *requested != caller.ID {
		return "", ErrForeignOwner
	}
	return caller.ID, nil
}

// ListScope returns the owner filter for listing sales.
// An empty string means the caller may see every sale.
func ListScope(caller models.Identity) string {
	if caller.IsAdmin() {
		return ""
	}
	return caller.ID
}

// CanView reports whether caller may read sale.
func CanView(caller models.Identity, sale *models.Sale) bool {
	return caller.IsAdmin() || sale.OwnedBy(caller.ID)
}

// CanModify reports whether caller may update or delete sale.
func CanModify(caller models.Identity, sale *models.Sale) bool {
	return caller.IsAdmin() || sale.OwnedBy(caller.ID)
}

// CheckView returns ErrForbidden if caller may not read sale.
func CheckView(caller models.Identity, sale *models.Sale) error {
	if !CanView(caller, sale) {
		return ErrForbidden
	}
	return nil
}

// CheckModify returns ErrForbidden if caller may not update or delete sale.
func CheckModify(caller models.Identity, sale *models.Sale) error {
	if !CanModify(caller, sale) {
		return ErrForbidden
	}
	return nil
}
