package handler

import (
	"time"

	"github.com/peliculas/catalog-api/internal/core/domain"
)

// errorResponse is the envelope for every non-validation 4xx/5xx response.
type errorResponse struct {
	Error string `json:"error"`
}

type validationResponse struct {
	Errors []domain.FieldError `json:"errors"`
}

type notFoundResponse struct {
	Error    string `json:"error"`
	Resource string `json:"resource"`
	ID       string `json:"id"`
}

// --- Auth ---

type registerRequest struct {
	Username string `json:"username" validate:"required,max=64"`
	Password string `json:"password" validate:"required"`
	Name     string `json:"name"     validate:"required,max=128"`
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	Token string              `json:"token"`
	User  *domain.UserSummary `json:"user"`
}

type identityResponse struct {
	Username string `json:"username"`
	Role     string `json:"role"`
}

// --- Movies ---

// movieForm is the multipart body of create and update. The images travel
// as repeated "images" file parts.
type movieForm struct {
	Name           string `form:"name"           validate:"required,max=200"`
	Description    string `form:"description"`
	Duration       int    `form:"duration"       validate:"gte=0"`
	Classification string `form:"classification" validate:"required,oneof=siete trece dieciseis dieciocho"`
	CategoryID     string `form:"category_id"    validate:"required"`
}

type pageQuery struct {
	PageNumber int `query:"page_number" validate:"gte=1"`
	PageSize   int `query:"page_size"   validate:"gte=1,max=100"`
}

type movieResponse struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Description    string    `json:"description"`
	Duration       int       `json:"duration"`
	Classification string    `json:"classification"`
	CategoryID     string    `json:"category_id"`
	ImageURLs      []string  `json:"image_urls"`
	CreatedAt      time.Time `json:"created_at"`
}

type pageResponse struct {
	Items      []movieResponse `json:"items"`
	PageNumber int             `json:"page_number"`
	PageSize   int             `json:"page_size"`
	TotalPages int             `json:"total_pages"`
	TotalItems int64           `json:"total_items"`
}

// --- Categories ---

type categoryRequest struct {
	Name string `json:"name" validate:"required,max=100"`
}

type categoryResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}
