package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"taxi/internal/domain"
	"taxi/internal/registry"
	"taxi/internal/repository"
	"taxi/internal/service"
)

// UserHandler handles HTTP requests for users and their wallets.
type UserHandler struct {
	registry *registry.Registry
	wallet   *service.WalletService
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(reg *registry.Registry, wallet *service.WalletService) *UserHandler {
	return &UserHandler{registry: reg, wallet: wallet}
}

// RegisterRequest is the HTTP request body for user registration.
type RegisterRequest struct {
	Username string `json:"username"`
	FullName string `json:"full_name"`
	Phone    string `json:"phone"`
	Role     string `json:"role"`
}

// UserResponse is the HTTP response for user data.
type UserResponse struct {
	ID        int64   `json:"id"`
	Username  string  `json:"username"`
	FullName  string  `json:"full_name"`
	Phone     string  `json:"phone"`
	Role      string  `json:"role"`
	Balance   float64 `json:"balance"`
	Rating    float64 `json:"rating"`
	Active    bool    `json:"active"`
	Available bool    `json:"available,omitempty"`
}

func toUserResponse(u *domain.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		FullName:  u.FullName,
		Phone:     u.Phone,
		Role:      string(u.Role),
		Balance:   u.Balance,
		Rating:    u.Rating,
		Active:    u.Active,
		Available: u.Available,
	}
}

// Register handles POST /v1/users/register
func (h *UserHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	if req.FullName == "" || req.Phone == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "full_name and phone are required"})
		return
	}

	role, err := parseRole(req.Role)
	if err != nil {
		respondError(c, err)
		return
	}

	// Registration is idempotent on phone number.
	existing, err := h.registry.Repos().Users.GetByPhone(c.Request.Context(), req.Phone)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		respondError(c, err)
		return
	}
	if existing != nil {
		c.JSON(http.StatusConflict, gin.H{
			"message": "User already registered",
			"user":    toUserResponse(existing),
		})
		return
	}

	user := &domain.User{
		Username:  req.Username,
		FullName:  req.FullName,
		Phone:     req.Phone,
		Role:      role,
		Rating:    domain.DefaultRating,
		Active:    true,
		CreatedAt: time.Now(),
	}

	if err := h.registry.CreateUser(c.Request.Context(), user); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toUserResponse(user))
}

// Get handles GET /v1/users/:id
func (h *UserHandler) Get(c *gin.Context) {
	userID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	user, err := h.registry.Repos().Users.GetByID(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, toUserResponse(user))
}

// GetAll handles GET /v1/users
func (h *UserHandler) GetAll(c *gin.Context) {
	users, err := h.registry.Repos().Users.GetAll(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]UserResponse, 0, len(users))
	for _, u := range users {
		response = append(response, toUserResponse(u))
	}

	c.JSON(http.StatusOK, response)
}

// AmountRequest is the HTTP request body for deposits and withdrawals.
type AmountRequest struct {
	Amount float64 `json:"amount"`
}

// Deposit handles POST /v1/users/:id/deposit
func (h *UserHandler) Deposit(c *gin.Context) {
	userID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req AmountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	user, err := h.wallet.Deposit(c.Request.Context(), userID, req.Amount)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, toUserResponse(user))
}

// Withdraw handles POST /v1/users/:id/withdraw
func (h *UserHandler) Withdraw(c *gin.Context) {
	userID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req AmountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	user, err := h.wallet.Withdraw(c.Request.Context(), userID, req.Amount)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, toUserResponse(user))
}

// TransactionResponse is the HTTP response for a ledger entry.
type TransactionResponse struct {
	ID          string  `json:"id"`
	Amount      float64 `json:"amount"`
	Type        string  `json:"type"`
	Description string  `json:"description"`
	CreatedAt   string  `json:"created_at"`
}

// Transactions handles GET /v1/users/:id/transactions
func (h *UserHandler) Transactions(c *gin.Context) {
	userID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	txns, err := h.wallet.Statement(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]TransactionResponse, 0, len(txns))
	for _, t := range txns {
		response = append(response, TransactionResponse{
			ID:          t.ID,
			Amount:      t.Amount,
			Type:        string(t.Type),
			Description: t.Description,
			CreatedAt:   t.CreatedAt.UTC().Format(time.RFC3339),
		})
	}

	c.JSON(http.StatusOK, response)
}

func parseRole(s string) (domain.Role, error) {
	if s == "" {
		return domain.RoleRider, nil
	}
	switch domain.Role(s) {
	case domain.RoleRider, domain.RoleDriver, domain.RoleAdmin:
		return domain.Role(s), nil
	default:
		return "", service.ErrInvalidRole
	}
}

// parseIDParam parses a numeric path parameter, responding 400 itself on
// failure.
func parseIDParam(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid " + name})
		return 0, false
	}
	return id, true
}
