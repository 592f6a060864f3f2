package delivery

import (
	"time"

	"github.com/SlavaShagalov/hotel-admin/internal/models"
)

type AttemptResponse struct {
	ID        string    `json:"id"`
	Outcome   string    `json:"outcome"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
}

type AttemptsResponse struct {
	Items []AttemptResponse `json:"items"`
	Total int               `json:"total"`
}

func NewAttemptsResponse(attempts []models.Attempt) AttemptsResponse {
	items := make([]AttemptResponse, 0, len(attempts))
	for _, attempt := range attempts {
		items = append(items, AttemptResponse{
			ID:        attempt.ID,
			Outcome:   string(attempt.Outcome),
			Email:     attempt.Email,
			Role:      attempt.Role,
			Message:   attempt.Message,
			CreatedAt: attempt.CreatedAt,
		})
	}

	return AttemptsResponse{Items: items, Total: len(items)}
}
