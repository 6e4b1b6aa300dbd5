package settingsmodule

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/ervall/mediavault/internal/auth"
	"github.com/ervall/mediavault/internal/database"
	apperrors "github.com/ervall/mediavault/internal/errors"
	"github.com/ervall/mediavault/internal/events"
)

// Handler serves the system settings endpoints.
type Handler struct {
	db       *gorm.DB
	eventBus events.EventBus
}

// NewHandler creates a settings handler.
func NewHandler(db *gorm.DB, bus events.EventBus) *Handler {
	return &Handler{db: db, eventBus: bus}
}

// Get returns the singleton row, creating the default when missing. The admin
// PIN hash never leaves the server; the response only reports whether an
// override is set.
func (h *Handler) Get(c *gin.Context) {
	settings, err := h.load()
	if err != nil {
		apperrors.NewDatabaseError("load settings", err).ToGinResponse(c)
		return
	}
	c.JSON(200, h.view(settings))
}

type updateRequest struct {
	SMTPHost     *string `json:"smtp_host"`
	SMTPPort     *int    `json:"smtp_port"`
	SMTPUser     *string `json:"smtp_user"`
	SMTPPassword *string `json:"smtp_password"`
	SMTPTLS      *bool   `json:"smtp_tls"`
	SenderEmail  *string `json:"sender_email"`
	SenderName   *string `json:"sender_name"`
	Domain       *string `json:"domain"`
	AdminPIN     *string `json:"admin_pin"`
}

// Update overwrites the mail settings and, when a non-empty admin_pin is
// supplied, rotates the admin PIN override (stored as a bcrypt hash).
func (h *Handler) Update(c *gin.Context) {
	var req updateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.NewValidationError("invalid JSON body", "body").ToGinResponse(c)
		return
	}

	settings, err := h.load()
	if err != nil {
		apperrors.NewDatabaseError("load settings", err).ToGinResponse(c)
		return
	}

	settings.SMTPHost = req.SMTPHost
	settings.SMTPUser = req.SMTPUser
	settings.SMTPPassword = req.SMTPPassword
	settings.SenderEmail = req.SenderEmail
	settings.Domain = req.Domain
	if req.SMTPPort != nil {
		settings.SMTPPort = *req.SMTPPort
	}
	if req.SMTPTLS != nil {
		settings.SMTPTLS = *req.SMTPTLS
	}
	if req.SenderName != nil && *req.SenderName != "" {
		settings.SenderName = *req.SenderName
	}

	if req.AdminPIN != nil && *req.AdminPIN != "" {
		hash, err := auth.HashPIN(*req.AdminPIN)
		if err != nil {
			apperrors.NewInternalError("failed to hash PIN", err).ToGinResponse(c)
			return
		}
		settings.AdminPINHash = &hash
	}

	if err := h.db.Save(settings).Error; err != nil {
		apperrors.NewDatabaseError("save settings", err).ToGinResponse(c)
		return
	}

	if h.eventBus != nil {
		h.eventBus.Publish(events.New(events.EventSettingsUpdated, ModuleID, nil))
	}
	c.JSON(200, h.view(settings))
}

func (h *Handler) load() (*database.SystemSettings, error) {
	var settings database.SystemSettings
	err := h.db.First(&settings).Error
	if err == gorm.ErrRecordNotFound {
		settings = database.SystemSettings{
			SMTPPort:   587,
			SMTPTLS:    true,
			SenderName: "Media Vault",
		}
		if err := h.db.Create(&settings).Error; err != nil {
			return nil, err
		}
		return &settings, nil
	}
	if err != nil {
		return nil, err
	}
	return &settings, nil
}

func (h *Handler) view(s *database.SystemSettings) gin.H {
	return gin.H{
		"id":            s.ID,
		"smtp_host":     s.SMTPHost,
		"smtp_port":     s.SMTPPort,
		"smtp_user":     s.SMTPUser,
		"smtp_password": s.SMTPPassword,
		"smtp_tls":      s.SMTPTLS,
		"sender_email":  s.SenderEmail,
		"sender_name":   s.SenderName,
		"domain":        s.Domain,
		"admin_pin_set": s.AdminPINHash != nil && *s.AdminPINHash != "",
	}
}
