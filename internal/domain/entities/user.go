package entities

// UserContext identifies the caller on write paths.
type UserContext struct {
	UserName string `json:"user_name"`
}

// IsAnonymous reports whether no user is signed on.
func (u UserContext) IsAnonymous() bool {
	return u.UserName == ""
}
