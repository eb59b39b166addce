// file: internals/features/accounts/controller/account_controller.go
package controller

import (
	"errors"
	"net/url"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"inscription_backend/internals/features/accounts/dto"
	"inscription_backend/internals/features/accounts/service"
	profileDTO "inscription_backend/internals/features/profiles/dto"
	profileService "inscription_backend/internals/features/profiles/service"
	helper "inscription_backend/internals/helpers"
)

type AccountController struct {
	Svc      *service.Service
	Profiles *profileService.Service
}

func NewAccountController(svc *service.Service, profiles *profileService.Service) *AccountController {
	return &AccountController{Svc: svc, Profiles: profiles}
}

func authError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrBadCredentials):
		return helper.JsonError(c, fiber.StatusUnauthorized, "Invalid email or password")
	case errors.Is(err, service.ErrTokensDisabled):
		return helper.JsonError(c, fiber.StatusServiceUnavailable, "Login is disabled")
	}
	return helper.JsonFromError(c, err)
}

// POST /api/account/create
func (ctl *AccountController) Create(c *fiber.Ctx) error {
	var req dto.CreateAccountRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	req.Sanitize()
	if err := req.Validate(); err != nil {
		return helper.JsonFromError(c, err)
	}

	a, err := ctl.Svc.Register(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	return helper.JsonCreated(c, "Account created", dto.FromModel(a))
}

// POST /api/account/login
func (ctl *AccountController) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	req.Sanitize()
	if err := req.Validate(); err != nil {
		return helper.JsonFromError(c, err)
	}

	res, err := ctl.Svc.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return authError(c, err)
	}
	return helper.JsonOK(c, "Logged in", dto.LoginResponse{
		Account:     dto.FromModel(res.Account),
		AccessToken: res.AccessToken,
		TokenType:   "Bearer",
		ExpiresAt:   res.ExpiresAt,
	})
}

// POST /api/account/:email/save-profile
func (ctl *AccountController) SaveProfile(c *fiber.Ctx) error {
	email, err := url.PathUnescape(c.Params("email"))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid email")
	}
	if err := dto.ValidateEmail(email); err != nil {
		return helper.JsonValidationError(c, map[string][]string{"email": {"must be a valid email"}})
	}

	var req dto.SaveProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	req.Sanitize()
	if err := req.Validate(); err != nil {
		return helper.JsonFromError(c, err)
	}

	a, p, err := ctl.Svc.AttachProfile(c.UserContext(), email, uuid.MustParse(req.SessionID), req.Password)
	if err != nil {
		return authError(c, err)
	}
	return helper.JsonOK(c, "Profile saved", fiber.Map{
		"account": dto.FromModel(a),
		"profile": profileDTO.FromModel(p),
	})
}

// GET /api/account/me/profiles
func (ctl *AccountController) MyProfiles(c *fiber.Ctx) error {
	accountID, err := helper.GetAccountIDFromToken(c)
	if err != nil {
		return helper.JsonFromError(c, err)
	}

	paging := helper.ResolvePaging(c, 20, 100)
	rows, total, err := ctl.Profiles.ListByAccount(c.UserContext(), accountID, paging.Limit, paging.Offset)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	return helper.JsonList(c, "Profiles", profileDTO.FromModels(rows), helper.BuildPagination(total, paging, len(rows)))
}

// DELETE /api/account/me
func (ctl *AccountController) DeleteMe(c *fiber.Ctx) error {
	accountID, err := helper.GetAccountIDFromToken(c)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	if err := ctl.Svc.Delete(c.UserContext(), accountID); err != nil {
		return helper.JsonFromError(c, err)
	}
	return helper.JsonDeleted(c, "Account deleted", fiber.Map{"id": accountID})
}
