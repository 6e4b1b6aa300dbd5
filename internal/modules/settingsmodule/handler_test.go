package settingsmodule

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/ervall/mediavault/internal/database"
	"github.com/ervall/mediavault/internal/events"
)

func setupTest(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&database.SystemSettings{}))

	h := NewHandler(db, events.NewBus())
	r := gin.New()
	r.GET("/api/v1/settings", h.Get)
	r.PUT("/api/v1/settings", h.Update)
	return r, db
}

func getSettings(t *testing.T, r *gin.Engine) map[string]interface{} {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/settings", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func putSettings(r *gin.Engine, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPut, "/api/v1/settings", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestGetCreatesSingletonWithDefaults(t *testing.T) {
	r, db := setupTest(t)

	body := getSettings(t, r)
	assert.Equal(t, "Media Vault", body["sender_name"])
	assert.Equal(t, false, body["admin_pin_set"])

	// A second read hits the same row.
	getSettings(t, r)
	var count int64
	db.Model(&database.SystemSettings{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestUpdateStoresSMTPSettings(t *testing.T) {
	r, _ := setupTest(t)

	w := putSettings(r, `{
		"smtp_host": "mail.example.com",
		"smtp_port": 465,
		"smtp_user": "vault",
		"smtp_tls": true,
		"sender_email": "vault@example.com"
	}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	body := getSettings(t, r)
	assert.Equal(t, "mail.example.com", body["smtp_host"])
	assert.Equal(t, float64(465), body["smtp_port"])
	assert.Equal(t, true, body["smtp_tls"])
}

func TestUpdateRotatesAdminPIN(t *testing.T) {
	r, db := setupTest(t)

	w := putSettings(r, `{"admin_pin": "99990000"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var settings database.SystemSettings
	require.NoError(t, db.First(&settings).Error)
	require.NotNil(t, settings.AdminPINHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(*settings.AdminPINHash), []byte("99990000")))

	// The hash never appears in the response, only the flag.
	body := getSettings(t, r)
	assert.Equal(t, true, body["admin_pin_set"])
	_, leaked := body["admin_pin_hash"]
	assert.False(t, leaked)
	assert.NotContains(t, w.Body.String(), *settings.AdminPINHash)
}

func TestUpdateEmptyPINKeepsExistingHash(t *testing.T) {
	r, db := setupTest(t)

	require.Equal(t, http.StatusOK, putSettings(r, `{"admin_pin": "11112222"}`).Code)
	var before database.SystemSettings
	require.NoError(t, db.First(&before).Error)
	require.NotNil(t, before.AdminPINHash)

	// An update without a PIN (or with an empty one) leaves the override.
	require.Equal(t, http.StatusOK, putSettings(r, `{"admin_pin": "", "smtp_host": "x"}`).Code)
	var after database.SystemSettings
	require.NoError(t, db.First(&after).Error)
	require.NotNil(t, after.AdminPINHash)
	assert.Equal(t, *before.AdminPINHash, *after.AdminPINHash)
}

func TestUpdateRejectsInvalidBody(t *testing.T) {
	r, _ := setupTest(t)

	w := putSettings(r, `{not json`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
