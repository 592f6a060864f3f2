package usecase

import (
	"context"

	"github.com/SlavaShagalov/hotel-admin/internal/models"
)

//go:generate mockgen -source=contract.go -destination=mocks/contract.go -package=mocks

type RegistrationAPI interface {
	Register(ctx context.Context, form models.RegistrationForm) (models.RegistrationResponse, error)
}

type Authorizer interface {
	IsAdmin(ctx context.Context) bool
}

type Navigator interface {
	Navigate(path string)
}

type NavigatorFunc func(path string)

func (f NavigatorFunc) Navigate(path string) {
	f(path)
}
