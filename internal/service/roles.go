// Package service contains the business logic behind the API handlers
package service

import (
	"slices"

	"agencydesk/creator-api/internal/model"
)

// RoleCreator marks a profile as a self-managed creator. It is exclusive:
// a profile holding it can hold no other additional role.
const RoleCreator = "Creator"

var exclusiveRoles = []string{RoleCreator}

// Permissions are the effective file-level capabilities derived from a
// profile's roles.
type Permissions struct {
	CanEdit     bool `json:"can_edit"`
	CanDelete   bool `json:"can_delete"`
	CanUpload   bool `json:"can_upload"`
	CanDownload bool `json:"can_download"`
}

// PermissionOverride replaces the role-derived defaults wholesale. Used on
// creator-scoped file views where a non-admin shares their own files.
type PermissionOverride Permissions

// EffectivePermissions derives capabilities from the primary role plus any
// additional roles. Without an override everything but download requires
// the Admin primary role.
func EffectivePermissions(primaryRole string, additionalRoles []string, override *PermissionOverride) Permissions {
	if override != nil {
		return Permissions(*override)
	}

	isAdmin := primaryRole == model.RoleAdmin

	return Permissions{
		CanEdit:     isAdmin,
		CanDelete:   isAdmin,
		CanUpload:   isAdmin,
		CanDownload: true,
	}
}

// IsExclusiveRole reports whether r may not coexist with other additional
// roles.
func IsExclusiveRole(r string) bool {
	return slices.Contains(exclusiveRoles, r)
}

// AddRole returns the additional-role set after adding r.
// Adding an exclusive role collapses the set to just it; adding a
// non-exclusive role first strips any exclusive role already present. The
// strip-then-add order is load-bearing: it's what role-editing UIs observe.
func AddRole(set []string, r string) []string {
	if slices.Contains(set, r) {
		return slices.Clone(set)
	}

	if IsExclusiveRole(r) {
		return []string{r}
	}

	out := make([]string, 0, len(set)+1)
	for _, have := range set {
		if !IsExclusiveRole(have) {
			out = append(out, have)
		}
	}

	return append(out, r)
}

// RemoveRole returns the set minus r.
func RemoveRole(set []string, r string) []string {
	out := make([]string, 0, len(set))
	for _, have := range set {
		if have != r {
			out = append(out, have)
		}
	}

	return out
}

// RoleLocked reports whether the control for role r should be disabled:
// true while an exclusive role other than r is in the set.
func RoleLocked(set []string, r string) bool {
	for _, have := range set {
		if IsExclusiveRole(have) && have != r {
			return true
		}
	}

	return false
}

// NormalizeRoles re-applies the exclusivity rules to a set supplied by a
// client in one shot (e.g. the admin role-update call), replaying it as a
// sequence of adds so the end state matches what the UI would produce.
func NormalizeRoles(set []string) []string {
	out := []string{}
	for _, r := range set {
		out = AddRole(out, r)
	}

	return out
}
