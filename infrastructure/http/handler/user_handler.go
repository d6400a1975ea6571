package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/bookworm/bookworm/application/port/inbound"
	"github.com/bookworm/bookworm/infrastructure/http/response"
)

type UserHandler struct {
	userManagementUseCase inbound.UserManagementUseCase
}

func NewUserHandler(userManagementUseCase inbound.UserManagementUseCase) *UserHandler {
	return &UserHandler{
		userManagementUseCase: userManagementUseCase,
	}
}

func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) error {
	users, err := h.userManagementUseCase.ListUsers(r.Context())
	if err != nil {
		return err
	}

	response.JSON(w, http.StatusOK, users)
	return nil
}

func (h *UserHandler) DeleteUser(w http.ResponseWriter, r *http.Request) error {
	result, err := h.userManagementUseCase.DeleteUser(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		return err
	}

	response.JSON(w, http.StatusOK, result)
	return nil
}
