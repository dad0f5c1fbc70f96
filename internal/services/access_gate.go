package services

import (
	"github.com/securelearn/backend/internal/auth"
)

// Action is what the actor wants to do with a resource.
type Action string

const (
	// ActionReadMeta covers course metadata, category and listing reads.
	ActionReadMeta Action = "read_meta"
	// ActionReadContent covers lesson and step content reads.
	ActionReadContent Action = "read_content"
	// ActionWrite covers create, update and delete.
	ActionWrite Action = "write"
)

// ResourceKind identifies the entity class a decision is about.
type ResourceKind string

const (
	ResourceCategory ResourceKind = "category"
	ResourceCourse   ResourceKind = "course"
	ResourceLesson   ResourceKind = "lesson"
	ResourceStep     ResourceKind = "step"
	ResourceQuiz     ResourceKind = "quiz"
)

// GateResource carries the already-loaded facts a decision needs. The gate
// itself performs no I/O; callers resolve ownership and enrollment first.
type GateResource struct {
	Kind          ResourceKind
	CourseOwnerID int
	Enrolled      bool
}

// Decision is the outcome of an access check.
type Decision struct {
	Allowed bool
	Reason  string
}

func allow() Decision {
	return Decision{Allowed: true}
}

func deny(reason string) Decision {
	return Decision{Allowed: false, Reason: reason}
}

// Decide evaluates whether actor may perform action on res. Rules are applied
// in precedence order: admin override, then ownership for writes, then
// ownership-or-enrollment for content reads. Metadata and category access is
// open to any authenticated actor.
func Decide(actor auth.Identity, res GateResource, action Action) Decision {
	if actor.UserID == 0 {
		if action == ActionReadMeta {
			return allow()
		}
		return deny("authentication required")
	}

	if actor.IsAdmin() {
		return allow()
	}

	// Categories and course listings are teacher self-service; ownership is
	// enforced only at the course level downward.
	if res.Kind == ResourceCategory {
		return allow()
	}

	switch action {
	case ActionWrite:
		if actor.UserID == res.CourseOwnerID {
			return allow()
		}
		return deny("not course owner")
	case ActionReadContent:
		if actor.UserID == res.CourseOwnerID || res.Enrolled {
			return allow()
		}
		return deny("not enrolled")
	case ActionReadMeta:
		return allow()
	default:
		return deny("unknown action")
	}
}
