package models

import "fmt"

// Role is a per-project role. The three values form a total order:
// MEMBER < PROJECT_ADMIN < ADMIN.
type Role string

const (
	RoleMember       Role = "MEMBER"
	RoleProjectAdmin Role = "PROJECT_ADMIN"
	RoleAdmin        Role = "ADMIN"
)

var roleRanks = map[Role]int{
	RoleMember:       0,
	RoleProjectAdmin: 1,
	RoleAdmin:        2,
}

// ErrInvalidRole is returned for role tokens outside the closed enum.
type ErrInvalidRole struct {
	Value string
}

func (e *ErrInvalidRole) Error() string {
	return fmt.Sprintf("invalid role: %q", e.Value)
}

// ParseRole validates a role token at the deserialization boundary.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if _, ok := roleRanks[r]; !ok {
		return "", &ErrInvalidRole{Value: s}
	}
	return r, nil
}

// Rank returns the position of r in the role order. Unknown roles are an
// error, never rank 0.
func (r Role) Rank() (int, error) {
	rank, ok := roleRanks[r]
	if !ok {
		return 0, &ErrInvalidRole{Value: string(r)}
	}
	return rank, nil
}

// Valid reports whether r is one of the three defined roles.
func (r Role) Valid() bool {
	_, ok := roleRanks[r]
	return ok
}

// Satisfies reports whether a member holding role actual may perform an
// action gated on required, i.e. rank(actual) >= rank(required).
func Satisfies(actual, required Role) (bool, error) {
	actualRank, err := actual.Rank()
	if err != nil {
		return false, err
	}
	requiredRank, err := required.Rank()
	if err != nil {
		return false, err
	}
	return actualRank >= requiredRank, nil
}
