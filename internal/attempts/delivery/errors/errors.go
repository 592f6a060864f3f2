package errors

type AttemptsError string

func (e AttemptsError) Error() string {
	return string(e)
}

func (e AttemptsError) Map() map[string]any {
	return map[string]any{"message": e.Error()}
}

const (
	ErrInvalidLimit AttemptsError = "limit must be a positive integer"
)
