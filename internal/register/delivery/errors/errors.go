package errors

type RegisterError string

func (e RegisterError) Error() string {
	return string(e)
}

func (e RegisterError) Map() map[string]any {
	return map[string]any{"message": e.Error()}
}

const (
	ErrInvalidRegisterRequest RegisterError = "invalid registration request"
	ErrTooManySessions        RegisterError = "too many registration sessions"
	ErrForbiddenRequest       RegisterError = "request rejected: missing or invalid csrf token"
)
