package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func authTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/api/auth/signup", Signup)
	r.POST("/api/auth/signin", Signin)
	return r
}

func TestSignup_DuplicateEmail(t *testing.T) {
	SetupTestDB()
	r := authTestRouter()

	payload := gin.H{
		"email":       "dup@example.com",
		"phoneNumber": "+1 (555) 010-0001",
		"password":    "Password1!",
		"fullName":    "First Signup",
	}
	w := postJSON(r, "/api/auth/signup", payload)
	assert.Equal(t, http.StatusCreated, w.Code)

	var created struct {
		Token string `json:"token"`
		User  struct {
			ID          string `json:"id"`
			PhoneNumber string `json:"phoneNumber"`
		} `json:"user"`
	}
	json.Unmarshal(w.Body.Bytes(), &created)
	assert.NotEmpty(t, created.Token)
	assert.Equal(t, "+15550100001", created.User.PhoneNumber)

	payload["fullName"] = "Second Signup"
	w = postJSON(r, "/api/auth/signup", payload)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var resp map[string]string
	json.Unmarshal(w.Body.Bytes(), &resp)
	assert.Equal(t, "email", resp["field"])
}

func TestSignin(t *testing.T) {
	SetupTestDB()
	r := authTestRouter()

	w := postJSON(r, "/api/auth/signup", gin.H{
		"email":       "login@example.com",
		"phoneNumber": "+15550100002",
		"password":    "Password1!",
		"fullName":    "Login User",
	})
	assert.Equal(t, http.StatusCreated, w.Code)

	w = postJSON(r, "/api/auth/signin", gin.H{
		"email":    "login@example.com",
		"password": "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = postJSON(r, "/api/auth/signin", gin.H{
		"email":    "login@example.com",
		"password": "Password1!",
	})
	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Token string `json:"token"`
	}
	json.Unmarshal(w.Body.Bytes(), &resp)
	assert.NotEmpty(t, resp.Token)

	// Password hash never serializes
	assert.NotContains(t, w.Body.String(), "Password1!")
	assert.NotContains(t, w.Body.String(), "\"password\"")
}
