package delivery

import "github.com/SlavaShagalov/hotel-admin/internal/models"

type RegistrationDTO struct {
	FirstName   string `form:"firstName"`
	LastName    string `form:"lastName"`
	Email       string `form:"email"`
	Password    string `form:"password"`
	PhoneNumber string `form:"phoneNumber"`
	Role        string `form:"role"`
}

func (dto RegistrationDTO) Form() models.RegistrationForm {
	return models.RegistrationForm{
		FirstName:   dto.FirstName,
		LastName:    dto.LastName,
		Email:       dto.Email,
		Password:    dto.Password,
		PhoneNumber: dto.PhoneNumber,
		Role:        dto.Role,
	}
}
