package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/bookworm/bookworm/application/port/inbound"
	"github.com/bookworm/bookworm/domain/apperror"
	"github.com/bookworm/bookworm/domain/entity"
	"github.com/bookworm/bookworm/infrastructure/http/response"
	"github.com/bookworm/bookworm/infrastructure/http/validator"
)

// ResourceHandler serves one document collection. The router decides which
// roles may read and write it.
type ResourceHandler struct {
	resources inbound.ResourceUseCase
}

func NewResourceHandler(resources inbound.ResourceUseCase) *ResourceHandler {
	return &ResourceHandler{resources: resources}
}

func documentID(r *http.Request) (string, error) {
	id := mux.Vars(r)["id"]
	if !validator.ValidateCollectionID(id) {
		return "", apperror.InvalidInput("Invalid document id")
	}
	return id, nil
}

func (h *ResourceHandler) List(w http.ResponseWriter, r *http.Request) error {
	docs, err := h.resources.List(r.Context())
	if err != nil {
		return err
	}
	response.JSON(w, http.StatusOK, docs)
	return nil
}

func (h *ResourceHandler) Get(w http.ResponseWriter, r *http.Request) error {
	id, err := documentID(r)
	if err != nil {
		return err
	}

	doc, err := h.resources.Get(r.Context(), id)
	if err != nil {
		return err
	}
	response.JSON(w, http.StatusOK, doc)
	return nil
}

func (h *ResourceHandler) Create(w http.ResponseWriter, r *http.Request) error {
	var doc entity.Document
	if err := decodeJSON(w, r, &doc); err != nil {
		return err
	}

	result, err := h.resources.Create(r.Context(), doc)
	if err != nil {
		return err
	}
	response.JSON(w, http.StatusCreated, result)
	return nil
}

func (h *ResourceHandler) Update(w http.ResponseWriter, r *http.Request) error {
	id, err := documentID(r)
	if err != nil {
		return err
	}

	var fields entity.Document
	if err := decodeJSON(w, r, &fields); err != nil {
		return err
	}

	result, err := h.resources.Update(r.Context(), id, fields)
	if err != nil {
		return err
	}
	response.JSON(w, http.StatusOK, result)
	return nil
}

func (h *ResourceHandler) Delete(w http.ResponseWriter, r *http.Request) error {
	id, err := documentID(r)
	if err != nil {
		return err
	}

	result, err := h.resources.Delete(r.Context(), id)
	if err != nil {
		return err
	}
	response.JSON(w, http.StatusOK, result)
	return nil
}
