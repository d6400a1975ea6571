package handler

import (
	"net/http"
	"time"

	"github.com/bookworm/bookworm/application/port/inbound"
	"github.com/bookworm/bookworm/domain/apperror"
	"github.com/bookworm/bookworm/infrastructure/http/middleware"
	"github.com/bookworm/bookworm/infrastructure/http/response"
	"github.com/bookworm/bookworm/infrastructure/http/validator"
)

const RefreshCookieName = "refreshtoken"

type CookieConfig struct {
	Secure bool
	MaxAge time.Duration
}

type AuthHandler struct {
	authUseCase inbound.AuthUseCase
	cookie      CookieConfig
}

func NewAuthHandler(authUseCase inbound.AuthUseCase, cookie CookieConfig) *AuthHandler {
	if cookie.MaxAge <= 0 {
		cookie.MaxAge = 7 * 24 * time.Hour
	}
	return &AuthHandler{
		authUseCase: authUseCase,
		cookie:      cookie,
	}
}

type messageResponse struct {
	Message string `json:"message"`
}

// Register handles POST /users.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) error {
	var req inbound.RegisterRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return err
	}

	if !validator.ValidateEmail(req.Email) {
		return apperror.InvalidInput("Invalid email format")
	}

	res, err := h.authUseCase.Register(r.Context(), req)
	if err != nil {
		return err
	}

	if !res.Created {
		response.JSON(w, http.StatusOK, messageResponse{Message: res.Message})
		return nil
	}
	response.JSON(w, http.StatusCreated, res)
	return nil
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) error {
	var req inbound.LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return err
	}

	if !validator.ValidateRequired(req.Email) {
		return apperror.MissingField("email")
	}
	if !validator.ValidateRequired(req.Password) {
		return apperror.MissingField("password")
	}

	res, err := h.authUseCase.Login(r.Context(), req)
	if err != nil {
		return err
	}

	h.setRefreshCookie(w, res.RefreshToken)
	response.JSON(w, http.StatusOK, res)
	return nil
}

func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) error {
	res, err := h.authUseCase.Refresh(r.Context(), inbound.RefreshRequest{
		RefreshToken: h.refreshCookie(r),
	})
	if err != nil {
		return err
	}

	response.JSON(w, http.StatusOK, res)
	return nil
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) error {
	outcome, err := h.authUseCase.Logout(r.Context(), inbound.LogoutRequest{
		RefreshToken: h.refreshCookie(r),
	})
	if err != nil {
		return err
	}

	if outcome == inbound.LogoutNothingToRevoke {
		return apperror.MissingSessionCookie("No refresh token to revoke")
	}

	h.clearRefreshCookie(w)
	response.NoContent(w)
	return nil
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) error {
	claims := middleware.GetUserClaims(r.Context())
	if claims == nil {
		return apperror.MissingCredential("User not authenticated")
	}

	identity, err := h.authUseCase.Me(r.Context(), claims.UserID)
	if err != nil {
		return err
	}

	response.JSON(w, http.StatusOK, identity)
	return nil
}

func (h *AuthHandler) refreshCookie(r *http.Request) string {
	c, err := r.Cookie(RefreshCookieName)
	if err != nil {
		return ""
	}
	return c.Value
}

func (h *AuthHandler) setRefreshCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     RefreshCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteNoneMode,
		MaxAge:   int(h.cookie.MaxAge.Seconds()),
	})
}

func (h *AuthHandler) clearRefreshCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     RefreshCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteNoneMode,
		MaxAge:   -1,
	})
}
