package registry

import "fmt"

// AuthError indicates the registry token endpoint rejected a request.
type AuthError struct {
	Repository string
	Err        error
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("token request for %s: %v", e.Repository, e.Err)
}
func (e *AuthError) Unwrap() error { return e.Err }

// ListError indicates a tag-list page request failed. A failure on any page
// fails the whole listing; no partial result is returned.
type ListError struct {
	Repository string
	Err        error
}

func (e *ListError) Error() string {
	return fmt.Sprintf("listing tags for %s: %v", e.Repository, e.Err)
}
func (e *ListError) Unwrap() error { return e.Err }

// NewAuthError creates an AuthError with a formatted message.
func NewAuthError(repository, format string, args ...any) error {
	return &AuthError{Repository: repository, Err: fmt.Errorf(format, args...)}
}

// NewListError creates a ListError with a formatted message.
func NewListError(repository, format string, args ...any) error {
	return &ListError{Repository: repository, Err: fmt.Errorf(format, args...)}
}
