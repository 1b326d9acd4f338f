package http

import (
	"time"

	"urban-match/internal/domain"
)

type createUserRequest struct {
	Name      string   `json:"name" binding:"required"`
	Age       *int     `json:"age" binding:"required,min=0"`
	Gender    string   `json:"gender" binding:"required"`
	Email     string   `json:"email" binding:"required,email"`
	City      string   `json:"city" binding:"required"`
	Interests []string `json:"interests" binding:"required"`
}

func (r createUserRequest) toUser() domain.User {
	return domain.User{
		Name:      r.Name,
		Age:       *r.Age,
		Gender:    r.Gender,
		Email:     r.Email,
		City:      r.City,
		Interests: r.Interests,
	}
}

type updateUserRequest struct {
	Name      *string  `json:"name"`
	Age       *int     `json:"age" binding:"omitempty,min=0"`
	Gender    *string  `json:"gender"`
	Email     *string  `json:"email" binding:"omitempty,email"`
	City      *string  `json:"city"`
	Interests []string `json:"interests"`
}

func (r updateUserRequest) toPatch() domain.UserPatch {
	return domain.UserPatch{
		Name:      r.Name,
		Age:       r.Age,
		Gender:    r.Gender,
		Email:     r.Email,
		City:      r.City,
		Interests: r.Interests,
	}
}

type matchPreferencesRequest struct {
	MinAge              *int     `json:"min_age" binding:"omitempty,min=0"`
	MaxAge              *int     `json:"max_age" binding:"omitempty,min=0"`
	PreferredCities     []string `json:"preferred_cities"`
	Interests           []string `json:"interests"`
	StrictInterestMatch bool     `json:"strict_interest_match"`
	GenderPreference    string   `json:"gender_preference"`
}

func (r matchPreferencesRequest) toPreferences() domain.MatchPreferences {
	gender := r.GenderPreference
	if gender == "" {
		gender = domain.GenderAny
	}
	return domain.MatchPreferences{
		MinAge:              r.MinAge,
		MaxAge:              r.MaxAge,
		PreferredCities:     r.PreferredCities,
		Interests:           r.Interests,
		StrictInterestMatch: r.StrictInterestMatch,
		GenderPreference:    gender,
	}
}

type UserResponse struct {
	ID        int64    `json:"id"`
	Name      string   `json:"name"`
	Age       int      `json:"age"`
	Gender    string   `json:"gender"`
	Email     string   `json:"email"`
	City      string   `json:"city"`
	Interests []string `json:"interests"`
	CreatedAt string   `json:"created_at"`
	UpdatedAt string   `json:"updated_at"`
}

func userToResponse(user domain.User) UserResponse {
	interests := user.Interests
	if interests == nil {
		interests = []string{}
	}
	return UserResponse{
		ID:        user.ID,
		Name:      user.Name,
		Age:       user.Age,
		Gender:    user.Gender,
		Email:     user.Email,
		City:      user.City,
		Interests: interests,
		CreatedAt: user.CreatedAt.Format(time.RFC3339),
		UpdatedAt: user.UpdatedAt.Format(time.RFC3339),
	}
}

func usersToResponse(users []domain.User) []UserResponse {
	resp := make([]UserResponse, len(users))
	for i := range users {
		resp[i] = userToResponse(users[i])
	}
	return resp
}
