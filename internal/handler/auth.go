package handler

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/vamosjogar/sports-meetup-api/internal/config"
	"github.com/vamosjogar/sports-meetup-api/internal/repository"
	"github.com/vamosjogar/sports-meetup-api/internal/utils"
)

// AuthHandler bundles dependencies for the registration and login endpoints.
type AuthHandler struct {
	Cfg    config.Config
	Users  UserStore
	Tokens RefreshTokenStore
}

func NewAuthHandler(cfg config.Config, u UserStore, t RefreshTokenStore) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Users: u, Tokens: t}
}

// ----- DTOs -----

type registerReq struct {
	Nome     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}
type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
type refreshReq struct {
	RefreshToken string `json:"refresh_token"`
}

type tokenPart struct {
	Token   string    `json:"token"`
	Expires time.Time `json:"expires"`
}

// userPart is the public projection of a user: id, name and email.  The
// password hash never appears in any response.
type userPart struct {
	ID    uint64 `json:"id"`
	Nome  string `json:"nome"`
	Email string `json:"email"`
}
type authResp struct {
	User    userPart  `json:"user"`
	Access  tokenPart `json:"access"`
	Refresh tokenPart `json:"refresh"`
}

// Register handles POST /users/register.  It validates the three required
// fields and creates the user; a duplicate email is a conflict, not an
// internal error.  No tokens are issued here: the browser client follows
// registration with a login.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, kindValidation, "corpo da requisição inválido")
	}
	req.Nome = strings.TrimSpace(req.Nome)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Nome == "" || req.Email == "" || req.Password == "" {
		return fail(c, http.StatusBadRequest, kindValidation, "todos os campos são obrigatórios")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	uid, err := h.Users.Create(ctx, req.Nome, req.Email, req.Password, h.Cfg.BcryptCost)
	if err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return fail(c, http.StatusConflict, kindConflict, "este email já está cadastrado")
		}
		return fail(c, http.StatusInternalServerError, kindInternal, "erro ao cadastrar usuário")
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"id":      uid,
		"message": "usuário cadastrado com sucesso",
	})
}

// Login handles POST /users/login.  Unknown email and wrong password are
// indistinguishable to the caller: both produce the same generic 401, which
// keeps the endpoint useless for probing which emails are registered.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, kindValidation, "corpo da requisição inválido")
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		return fail(c, http.StatusBadRequest, kindValidation, "email e senha são obrigatórios")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fail(c, http.StatusUnauthorized, kindUnauthorized, "credenciais inválidas")
		}
		return fail(c, http.StatusInternalServerError, kindInternal, "erro ao consultar usuário")
	}
	if !utils.VerifyPassword(u.PasswordHash, req.Password) {
		return fail(c, http.StatusUnauthorized, kindUnauthorized, "credenciais inválidas")
	}

	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, u.ID, u.Nome, h.Cfg.AccessTTLMin)
	if err != nil {
		return fail(c, http.StatusInternalServerError, kindInternal, "erro ao emitir token")
	}
	refresh, err := utils.NewRefreshToken(h.Cfg.RefreshTTLDays)
	if err != nil {
		return fail(c, http.StatusInternalServerError, kindInternal, "erro ao emitir token")
	}
	if err := h.Tokens.StoreRefresh(ctx, u.ID, utils.HashRefreshRaw(refresh.Raw), refresh.Exp); err != nil {
		return fail(c, http.StatusInternalServerError, kindInternal, "erro ao salvar sessão")
	}

	return c.JSON(http.StatusOK, authResp{
		User:    userPart{ID: u.ID, Nome: u.Nome, Email: u.Email},
		Access:  tokenPart{Token: access.Token, Expires: access.Exp},
		Refresh: tokenPart{Token: refresh.Raw, Expires: refresh.Exp}, // raw back to client
	})
}

// Refresh handles POST /users/refresh: validate by hash, revoke the old
// refresh token and issue a new pair (rotation).
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.RefreshToken) == "" {
		return fail(c, http.StatusBadRequest, kindValidation, "refresh_token é obrigatório")
	}
	hash := utils.HashRefreshRaw(strings.TrimSpace(req.RefreshToken))

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	userID, err := h.Tokens.ValidateRefresh(ctx, hash)
	if err != nil {
		return fail(c, http.StatusUnauthorized, kindUnauthorized, "refresh token inválido")
	}
	_ = h.Tokens.RevokeByHash(ctx, hash)

	u, err := h.Users.GetByID(ctx, userID)
	if err != nil {
		return fail(c, http.StatusInternalServerError, kindInternal, "erro ao carregar usuário")
	}

	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, u.ID, u.Nome, h.Cfg.AccessTTLMin)
	if err != nil {
		return fail(c, http.StatusInternalServerError, kindInternal, "erro ao emitir token")
	}
	newRef, err := utils.NewRefreshToken(h.Cfg.RefreshTTLDays)
	if err != nil {
		return fail(c, http.StatusInternalServerError, kindInternal, "erro ao emitir token")
	}
	if err := h.Tokens.StoreRefresh(ctx, u.ID, utils.HashRefreshRaw(newRef.Raw), newRef.Exp); err != nil {
		return fail(c, http.StatusInternalServerError, kindInternal, "erro ao salvar sessão")
	}

	return c.JSON(http.StatusOK, authResp{
		User:    userPart{ID: u.ID, Nome: u.Nome, Email: u.Email},
		Access:  tokenPart{Token: access.Token, Expires: access.Exp},
		Refresh: tokenPart{Token: newRef.Raw, Expires: newRef.Exp},
	})
}

// Logout handles POST /users/logout.  The refresh token from the body is
// validated and revoked; the short-lived access token simply expires.
func (h *AuthHandler) Logout(c echo.Context) error {
	var req refreshReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.RefreshToken) == "" {
		return fail(c, http.StatusBadRequest, kindValidation, "refresh_token é obrigatório")
	}
	hash := utils.HashRefreshRaw(strings.TrimSpace(req.RefreshToken))

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if _, err := h.Tokens.ValidateRefresh(ctx, hash); err != nil {
		return fail(c, http.StatusUnauthorized, kindUnauthorized, "refresh token inválido")
	}
	if err := h.Tokens.RevokeByHash(ctx, hash); err != nil {
		return fail(c, http.StatusInternalServerError, kindInternal, "erro ao encerrar sessão")
	}
	return c.NoContent(http.StatusNoContent)
}
