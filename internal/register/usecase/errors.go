package usecase

type FormError string

func (e FormError) Error() string {
	return string(e)
}

const (
	ErrUnknownField FormError = "unknown form field"
	ErrClosed       FormError = "form controller is closed"
)
