// Package policy holds the visibility and authorization rules for
// doubts and answers. Every decision is a pure function of the acting
// identity and the record; no I/O happens here, which keeps the rules
// unit-testable without a database or session layer.
package policy

import (
	"github.com/SAP-F-2025/doubt-service/internal/models"
)

// Identity is the resolved acting user for one operation.
type Identity struct {
	ID   string
	Role models.UserRole
}

func (i Identity) IsInstructor() bool {
	return i.Role == models.RoleInstructor
}

func (i Identity) IsStudent() bool {
	return i.Role == models.RoleStudent
}

// Effect is the outcome of a policy decision. A denied operation
// carries the kind of refusal the caller must surface: Forbidden when
// the actor is known but not allowed, NotFound when the record's
// existence is hidden from the actor, Conflict when the lifecycle
// state forbids the operation.
type Effect int

const (
	Allow Effect = iota
	DenyForbidden
	DenyNotFound
	DenyConflict
)

func (e Effect) Allowed() bool {
	return e == Allow
}

func (e Effect) String() string {
	switch e {
	case Allow:
		return "allow"
	case DenyForbidden:
		return "forbidden"
	case DenyNotFound:
		return "not_found"
	case DenyConflict:
		return "conflict"
	default:
		return "unknown"
	}
}

// Policy is the reconciled access-control contract. StrictResolve
// switches the resolve rule from the historical permissive behavior
// (any authenticated user) to author-or-instructor, matching the
// edit/delete rule.
type Policy struct {
	StrictResolve bool
}

// Default returns the policy matching the historical behavior of the
// application: resolve is open to any authenticated user.
func Default() Policy {
	return Policy{StrictResolve: false}
}

// CanCreateDoubt permits doubt creation for students only.
func (p Policy) CanCreateDoubt(id Identity) Effect {
	if id.IsStudent() {
		return Allow
	}
	return DenyForbidden
}

// CanCreateAnswer permits answering for instructors only. The target
// doubt's status does not matter: answers may be appended to resolved
// doubts (they remain useful knowledge-base additions).
func (p Policy) CanCreateAnswer(id Identity, d *models.Doubt) Effect {
	if id.IsInstructor() {
		return Allow
	}
	return DenyForbidden
}

// CanViewDoubt permits viewing for instructors, the author, and (once
// resolved) every authenticated user: resolved doubts form the public
// knowledge base. Denials are NotFound rather than Forbidden so the
// existence of another student's open doubt is never leaked.
func (p Policy) CanViewDoubt(id Identity, d *models.Doubt) Effect {
	if id.IsInstructor() {
		return Allow
	}
	if d.AuthorID == id.ID {
		return Allow
	}
	if d.Status == models.StatusResolved {
		return Allow
	}
	return DenyNotFound
}

// CanEditDoubt permits title/content updates for the author or any
// instructor, and only while the doubt is OPEN. An identity with no
// claim on the doubt gets Forbidden; an otherwise-permitted actor
// hitting a RESOLVED doubt gets Conflict.
func (p Policy) CanEditDoubt(id Identity, d *models.Doubt) Effect {
	if d.AuthorID != id.ID && !id.IsInstructor() {
		return DenyForbidden
	}
	if d.Status == models.StatusResolved {
		return DenyConflict
	}
	return Allow
}

// CanDeleteDoubt permits deletion for the author or any instructor.
// Unlike edit, deletion is not gated on status: a resolved doubt can
// still be removed by its owner or an instructor.
func (p Policy) CanDeleteDoubt(id Identity, d *models.Doubt) Effect {
	if d.AuthorID != id.ID && !id.IsInstructor() {
		return DenyForbidden
	}
	return Allow
}

// CanExportDoubts permits the spreadsheet export for instructors only.
func (p Policy) CanExportDoubts(id Identity) Effect {
	if id.IsInstructor() {
		return Allow
	}
	return DenyForbidden
}

// CanResolveDoubt governs the OPEN -> RESOLVED transition. Resolving
// an already-resolved doubt is a Conflict for everyone. Under the
// default policy any authenticated identity may resolve; under
// StrictResolve only the author or an instructor may.
func (p Policy) CanResolveDoubt(id Identity, d *models.Doubt) Effect {
	if d.Status == models.StatusResolved {
		return DenyConflict
	}
	if p.StrictResolve && d.AuthorID != id.ID && !id.IsInstructor() {
		return DenyForbidden
	}
	return Allow
}
