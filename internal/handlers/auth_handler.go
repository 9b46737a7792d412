package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/BruksfildServices01/volunteer-scheduler/internal/httperr"
	"github.com/BruksfildServices01/volunteer-scheduler/internal/httpresp"
	"github.com/BruksfildServices01/volunteer-scheduler/internal/usecase/account"
	"github.com/BruksfildServices01/volunteer-scheduler/internal/validators"
)

type AuthHandler struct {
	accounts *account.Accounts
	log      zerolog.Logger
}

func NewAuthHandler(accounts *account.Accounts, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{accounts: accounts, log: log}
}

// --------- Requests ---------

type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email,max=120"`
	Username string `json:"username" binding:"required,min=3,max=80"`
	Password string `json:"password" binding:"required,min=8,max=72"`
	FullName string `json:"full_name" binding:"max=120"`
	Phone    string `json:"phone" binding:"max=20"`
}

type RegisterOrganizationRequest struct {
	RegisterRequest

	OrganizationName string `json:"organization_name" binding:"required,max=200"`
	Description      string `json:"description"`
	Website          string `json:"website" binding:"omitempty,url,max=255"`
	OrgPhone         string `json:"organization_phone" binding:"max=20"`
	Address          string `json:"address" binding:"max=200"`
	City             string `json:"city" binding:"max=100"`
	State            string `json:"state" binding:"max=2"`
	ZipCode          string `json:"zip_code" binding:"max=10"`
	Timezone         string `json:"timezone" binding:"omitempty,timezone"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func (r RegisterRequest) input() account.RegisterInput {
	return account.RegisterInput{
		Email:    r.Email,
		Username: r.Username,
		Password: r.Password,
		FullName: r.FullName,
		Phone:    r.Phone,
	}
}

// --------- Handlers ---------

func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", validators.Message(err))
		return
	}

	s, err := h.accounts.Register(c.Request.Context(), req.input())
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	httpresp.Created(c, s)
}

func (h *AuthHandler) RegisterOrganization(c *gin.Context) {
	var req RegisterOrganizationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", validators.Message(err))
		return
	}

	s, err := h.accounts.RegisterOrganization(c.Request.Context(), account.RegisterOrganizationInput{
		RegisterInput:    req.RegisterRequest.input(),
		OrganizationName: req.OrganizationName,
		Description:      req.Description,
		Website:          req.Website,
		OrgPhone:         req.OrgPhone,
		Address:          req.Address,
		City:             req.City,
		State:            req.State,
		ZipCode:          req.ZipCode,
		Timezone:         req.Timezone,
	})
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	httpresp.Created(c, s)
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", validators.Message(err))
		return
	}

	s, err := h.accounts.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	httpresp.OK(c, s)
}
