package handler

import (
	"github.com/gin-gonic/gin"
	appidentity "github.com/marketplace/backend/internal/application/identity"
)

// ContactHandler manages the caller's delivery contact
type ContactHandler struct {
	BaseHandler
	contactService *appidentity.ContactService
}

// NewContactHandler creates a new contact handler
func NewContactHandler(contactService *appidentity.ContactService) *ContactHandler {
	return &ContactHandler{contactService: contactService}
}

// Get handles GET /user/contact
func (h *ContactHandler) Get(c *gin.Context) {
	actor, ok := h.actorFrom(c)
	if !ok {
		return
	}

	contact, err := h.contactService.GetContact(c.Request.Context(), actor)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, contact)
}

// Create handles POST /user/contact
func (h *ContactHandler) Create(c *gin.Context) {
	actor, ok := h.actorFrom(c)
	if !ok {
		return
	}
	var req appidentity.ContactRequest
	if !bindJSON(c, &req) {
		return
	}

	contact, err := h.contactService.CreateContact(c.Request.Context(), actor, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, contact)
}

// Update handles PUT /user/contact
func (h *ContactHandler) Update(c *gin.Context) {
	actor, ok := h.actorFrom(c)
	if !ok {
		return
	}
	var req appidentity.ContactRequest
	if !bindJSON(c, &req) {
		return
	}

	contact, err := h.contactService.UpdateContact(c.Request.Context(), actor, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, contact)
}

// Delete handles DELETE /user/contact
func (h *ContactHandler) Delete(c *gin.Context) {
	actor, ok := h.actorFrom(c)
	if !ok {
		return
	}

	if err := h.contactService.DeleteContact(c.Request.Context(), actor); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}
