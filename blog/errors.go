package blog

import "fmt"

type (
	UserNotFound struct {
		ID       int64
		Username string
	}

	PostNotFound struct {
		ID int64
	}

	UsernameTaken struct {
		Username string
	}
)

func (u UserNotFound) Error() string {
	if u.Username != "" {
		return fmt.Sprintf("user %v not found", u.Username)
	}
	return fmt.Sprintf("user %v not found", u.ID)
}

func (p PostNotFound) Error() string {
	return fmt.Sprintf("post %v not found", p.ID)
}

func (u UsernameTaken) Error() string {
	return fmt.Sprintf("username %v is already taken", u.Username)
}
