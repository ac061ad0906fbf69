package infrastructure

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/mervel/storefront/accounts/application"
	"github.com/mervel/storefront/accounts/domain"
	pkgError "github.com/mervel/storefront/pkg/error"
	"github.com/mervel/storefront/pkg/utils"
)

type AuthHandler struct {
	auth *application.AuthService
}

func NewAuthHandler(auth *application.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
}

type SessionResponse struct {
	Token string       `json:"token"`
	User  *domain.User `json:"user"`
}

func (h *AuthHandler) RegisterRoutes(api fiber.Router) {
	group := api.Group("/auth")
	group.Post("/login", h.Login)
	group.Post("/register", h.Register)
	group.Get("/me", RequireAuth(h.auth), h.Me)
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		utils.PanicIfNeeded(pkgError.ValidationError("invalid request body"))
	}

	token, user, err := h.auth.Login(c.UserContext(), req.Email, req.Password)
	utils.PanicIfNeeded(mapError(err))

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Signed in",
		Results: SessionResponse{Token: token, User: user},
	})
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		utils.PanicIfNeeded(pkgError.ValidationError("invalid request body"))
	}

	token, user, err := h.auth.Register(c.UserContext(), req.Email, req.Password, req.FullName)
	utils.PanicIfNeeded(mapError(err))

	return c.Status(fiber.StatusCreated).JSON(utils.ResponseData{
		Status:  201,
		Code:    "SUCCESS",
		Message: "Account created",
		Results: SessionResponse{Token: token, User: user},
	})
}

// Me returns the signed-in user
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	userID, _ := c.Locals(UserIDLocal).(string)
	user, err := h.auth.Profile(c.UserContext(), userID)
	utils.PanicIfNeeded(mapError(err))

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Profile retrieved",
		Results: user,
	})
}

func mapError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, domain.ErrInvalidCredentials):
		return pkgError.UnauthorizedError(err.Error())
	case errors.Is(err, domain.ErrInactive):
		return pkgError.ForbiddenError(err.Error())
	case errors.Is(err, domain.ErrEmailTaken):
		return pkgError.ConflictError(err.Error())
	case errors.Is(err, domain.ErrUserNotFound):
		return pkgError.NotFoundError(err.Error())
	}
	return err
}
