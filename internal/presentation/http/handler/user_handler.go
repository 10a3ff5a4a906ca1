package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/sangkips/pos-api/internal/application/service"
	"github.com/sangkips/pos-api/internal/presentation/http/dto/request"
	"github.com/sangkips/pos-api/internal/presentation/http/dto/response"
)

// UserHandler handles user management HTTP requests
type UserHandler struct {
	userService *service.UserService
}

// NewUserHandler creates a new user handler
func NewUserHandler(userService *service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// Register handles an admin creating a user
// @Summary Register User
// @Description Create a user with a generated temporary password that is emailed to them
// @Tags users
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body request.RegisterRequest true "New user"
// @Success 201 {object} response.APIResponse
// @Router /user/register [post]
func (h *UserHandler) Register(c *gin.Context) {
	var req request.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Name, email and phone are required")
		return
	}

	output, err := h.userService.Register(c.Request.Context(), &service.RegisterInput{
		Name:  req.Name,
		Email: req.Email,
		Phone: req.Phone,
		Role:  req.Role,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	data := gin.H{
		"user":      output.User,
		"emailSent": output.EmailSent,
	}
	message := "User created, login details sent by email"
	if output.TemporaryPassword != "" {
		data["temporaryPassword"] = output.TemporaryPassword
		message = "User created, email could not be sent"
	}
	response.Created(c, message, data)
}

// AllUsers handles listing every user
func (h *UserHandler) AllUsers(c *gin.Context) {
	users, err := h.userService.ListUsers(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Users retrieved successfully", users)
}

// BlockUnblock toggles the blocked flag of a user
func (h *UserHandler) BlockUnblock(c *gin.Context) {
	actor, ok := GetActor(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	user, err := h.userService.ToggleBlock(c.Request.Context(), actor, id)
	if err != nil {
		response.Error(c, err)
		return
	}

	message := "User unblocked successfully"
	if user.IsBlocked {
		message = "User blocked successfully"
	}
	response.OK(c, message, user)
}
