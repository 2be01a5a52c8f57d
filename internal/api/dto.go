package api

import (
	"time"

	"github.com/samber/lo"

	"github.com/mmynk/salesledger/internal/auth"
	"github.com/mmynk/salesledger/internal/models"
)

type registerRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type createSaleRequest struct {
	ProductName string   `json:"productName" binding:"required"`
	Amount      *float64 `json:"amount" binding:"required,gte=0"`
	DateOfSale  string   `json:"dateOfSale" binding:"required"`
	Status      string   `json:"status"`
	UserID      *string  `json:"userId"`
}

type updateSaleRequest struct {
	ProductName *string  `json:"productName"`
	Amount      *float64 `json:"amount"`
	DateOfSale  *string  `json:"dateOfSale"`
	Status      *string  `json:"status"`
	// UserID is accepted only to reject it: ownership never changes.
	UserID *string `json:"userId"`
}

type userResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

type tokenResponse struct {
	AccessToken string    `json:"accessToken"`
	TokenType   string    `json:"tokenType"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

type saleResponse struct {
	ID          string  `json:"id"`
	UserID      string  `json:"userId"`
	ProductName string  `json:"productName"`
	Amount      float64 `json:"amount"`
	DateOfSale  string  `json:"dateOfSale"`
	Status      string  `json:"status"`
	CreatedAt   int64   `json:"createdAt"`
	UpdatedAt   int64   `json:"updatedAt"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func toUserResponse(u *models.User) userResponse {
	return userResponse{ID: u.ID, Username: u.Username, Role: string(u.Role)}
}

func toTokenResponse(t *auth.IssuedToken) tokenResponse {
	return tokenResponse{AccessToken: t.Token, TokenType: "Bearer", ExpiresAt: t.ExpiresAt.UTC()}
}

func toSaleResponse(s *models.Sale) saleResponse {
	return saleResponse{
		ID:          s.ID,
		UserID:      s.UserID,
		ProductName: s.ProductName,
		Amount:      s.Amount,
		DateOfSale:  models.FormatDate(s.DateOfSale),
		Status:      string(s.Status),
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
	}
}

func toSaleResponses(sales []*models.Sale) []saleResponse {
	return lo.Map(sales, func(s *models.Sale, _ int) saleResponse {
		return toSaleResponse(s)
	})
}
