package core

import "fmt"

// NotFoundError reports a lookup for a node, link, or reference id that
// does not exist in the model.
type NotFoundError struct {
	Kind string // "node", "link", "reference"
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s [%s] does not exist in the model", e.Kind, e.ID)
}

// AlreadyExistsError reports an insert with an id already taken.
type AlreadyExistsError struct {
	ID string
}

func (e *AlreadyExistsError) Error() string {
	return fmt.Sprintf("[%s] already exists in the model", e.ID)
}
