package guestmodule

import (
	"crypto/rand"
	"math/big"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/ervall/mediavault/internal/database"
	apperrors "github.com/ervall/mediavault/internal/errors"
	"github.com/ervall/mediavault/internal/events"
	"github.com/ervall/mediavault/internal/logger"
)

// PINLength is the number of digits in a generated guest PIN.
const PINLength = 8

// PINSender delivers a PIN to a guest out of band.
type PINSender interface {
	SendPIN(email, pin string, name *string)
}

// Handler serves the guest REST endpoints.
type Handler struct {
	db       *gorm.DB
	mail     PINSender
	eventBus events.EventBus
}

// NewHandler creates a guest handler.
func NewHandler(db *gorm.DB, mail PINSender, bus events.EventBus) *Handler {
	return &Handler{db: db, mail: mail, eventBus: bus}
}

type createRequest struct {
	Email    string  `json:"email" binding:"required,email"`
	Name     *string `json:"name"`
	IsActive *bool   `json:"is_active"`
}

// Create registers a guest, generates the PIN and dispatches the invitation
// mail in the background. The PIN is returned so the admin can relay it
// manually if delivery fails.
func (h *Handler) Create(c *gin.Context) {
	var req createRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.NewValidationError("a valid email is required", "email").ToGinResponse(c)
		return
	}

	var existing database.Guest
	if err := h.db.Where("email = ?", req.Email).First(&existing).Error; err == nil {
		apperrors.NewValidationError("Email already registered", "email").ToGinResponse(c)
		return
	}

	pin, err := GeneratePIN(PINLength)
	if err != nil {
		apperrors.NewInternalError("failed to generate PIN", err).ToGinResponse(c)
		return
	}

	guest := database.Guest{
		Email:    req.Email,
		Name:     req.Name,
		IsActive: true,
		PIN:      pin,
	}
	if req.IsActive != nil {
		guest.IsActive = *req.IsActive
	}

	if err := h.db.Create(&guest).Error; err != nil {
		apperrors.NewDatabaseError("create guest", err).ToGinResponse(c)
		return
	}

	go h.mail.SendPIN(guest.Email, guest.PIN, guest.Name)

	if h.eventBus != nil {
		h.eventBus.Publish(events.New(events.EventGuestCreated, ModuleID,
			events.GuestEventData{GuestID: guest.ID, Email: guest.Email}))
	}
	logger.Info("Guest invited", []logger.Field{
		logger.Uint("id", guest.ID),
		logger.String("email", guest.Email),
	})
	c.JSON(200, guest)
}

// List returns all guests, PIN included: the admin may need to re-send it.
func (h *Handler) List(c *gin.Context) {
	var guests []database.Guest
	if err := h.db.Order("created_at DESC").Find(&guests).Error; err != nil {
		apperrors.NewDatabaseError("list guests", err).ToGinResponse(c)
		return
	}
	c.JSON(200, guests)
}

// Delete revokes a guest's access.
func (h *Handler) Delete(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		apperrors.NewValidationError("id must be an integer", "id").ToGinResponse(c)
		return
	}

	var guest database.Guest
	if err := h.db.First(&guest, uint(id)).Error; err != nil {
		apperrors.NewNotFoundError("guest", c.Param("id")).ToGinResponse(c)
		return
	}

	if err := h.db.Delete(&guest).Error; err != nil {
		apperrors.NewDatabaseError("delete guest", err).ToGinResponse(c)
		return
	}

	if h.eventBus != nil {
		h.eventBus.Publish(events.New(events.EventGuestDeleted, ModuleID,
			events.GuestEventData{GuestID: guest.ID, Email: guest.Email}))
	}
	c.JSON(200, gin.H{"ok": true})
}

// GeneratePIN returns a random numeric PIN of the given length.
func GeneratePIN(length int) (string, error) {
	digits := make([]byte, length)
	for i := range digits {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", err
		}
		digits[i] = byte('0' + n.Int64())
	}
	return string(digits), nil
}
