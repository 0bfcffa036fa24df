package models

// Actor identifies who issues a command. It is passed explicitly into every
// service call.
type Actor struct {
	Username string
	Role     Role
}

func (a Actor) IsElevated() bool {
	return a.Role.IsElevated()
}
