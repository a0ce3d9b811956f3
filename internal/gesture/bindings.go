package gesture

import "fmt"

// Role is the canonical part a classifier category plays in the interaction
// vocabulary.
type Role string

const (
	RolePointHover    Role = "point_hover"
	RoleAreaHover     Role = "area_hover"
	RoleSelectArm     Role = "select_arm"
	RoleSelectConfirm Role = "select_confirm"
	RoleDrag          Role = "drag"
	RolePan           Role = "pan"
	RoleZoom          Role = "zoom"
)

// Roles lists every role in a stable order.
var Roles = []Role{
	RolePointHover,
	RoleAreaHover,
	RoleSelectArm,
	RoleSelectConfirm,
	RoleDrag,
	RolePan,
	RoleZoom,
}

// CategoryNone is the classifier's "no gesture" category.
const CategoryNone = "None"

// Bindings maps each role to the classifier category that triggers it.
type Bindings map[Role]string

// DefaultBindings returns the bindings for the stock MediaPipe gesture
// recognizer categories. Pan and zoom share a pose: one hand pans, both
// hands zoom.
func DefaultBindings() Bindings {
	return Bindings{
		RolePointHover:    "Pointing_Up",
		RoleAreaHover:     "Open_Palm",
		RoleSelectArm:     "Victory",
		RoleSelectConfirm: "Thumb_Up",
		RoleDrag:          "Closed_Fist",
		RolePan:           "ILoveYou",
		RoleZoom:          "ILoveYou",
	}
}

// Is reports whether category triggers role.
func (b Bindings) Is(role Role, category string) bool {
	if category == "" || category == CategoryNone {
		return false
	}
	return b[role] == category
}

// sharedPose lists the roles that may be bound to the same category. Pan and
// zoom are told apart by the number of hands in the pose.
var sharedPose = map[Role]Role{
	RolePan:  RoleZoom,
	RoleZoom: RolePan,
}

// Validate checks that every role is bound and that no two roles share a
// pose, apart from pan and zoom. Two handlers reacting to one pose would
// both emit events for the same hand and element in one frame.
func (b Bindings) Validate() error {
	owner := make(map[string]Role, len(Roles))
	for _, r := range Roles {
		category := b[r]
		if category == "" || category == CategoryNone {
			return fmt.Errorf("role %s is not bound", r)
		}
		if prev, ok := owner[category]; ok && sharedPose[prev] != r {
			return fmt.Errorf("roles %s and %s both bound to %s", prev, r, category)
		}
		owner[category] = r
	}
	return nil
}

// Merge returns a copy of b with the entries of o applied on top.
func (b Bindings) Merge(o Bindings) Bindings {
	merged := make(Bindings, len(b)+len(o))
	for k, v := range b {
		merged[k] = v
	}
	for k, v := range o {
		if v != "" {
			merged[k] = v
		}
	}
	return merged
}

// Config holds the tunables of the gesture handlers.
type Config struct {
	Bindings Bindings

	// ConfirmWindow is how many evaluated frames may pass between the last
	// arming frame and the confirming frame of a two-phase select. 1 means
	// the confirm must arrive on the very next frame.
	ConfirmWindow int
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() Config {
	return Config{
		Bindings:      DefaultBindings(),
		ConfirmWindow: 1,
	}
}
