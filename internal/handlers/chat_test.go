package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/devjasani79/WhatsUpDev/internal/database"
	"github.com/devjasani79/WhatsUpDev/internal/models"
)

func seedContactPair(idA, idB string) (models.User, models.User) {
	a := models.User{ID: idA, Email: idA + "@example.com", PhoneNumber: "+1555" + idA, Password: "x", FullName: idA}
	b := models.User{ID: idB, Email: idB + "@example.com", PhoneNumber: "+1555" + idB, Password: "x", FullName: idB}
	database.DB.Create(&a)
	database.DB.Create(&b)
	database.DB.Model(&a).Association("Contacts").Append(&b)
	database.DB.Model(&b).Association("Contacts").Append(&a)
	return a, b
}

func postJSON(r *gin.Engine, path string, payload interface{}) *httptest.ResponseRecorder {
	body, _ := json.Marshal(payload)
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func TestCreateChat_GetOrCreate(t *testing.T) {
	SetupTestDB()
	a, b := seedContactPair("cc_a", "cc_b")

	r := authedRouter(a.ID, func(r *gin.Engine) {
		r.POST("/api/chats", CreateChat)
	})

	w1 := postJSON(r, "/api/chats", gin.H{"participantId": b.ID})
	assert.Equal(t, http.StatusCreated, w1.Code)

	var resp1 struct {
		Chat models.Chat `json:"chat"`
	}
	json.Unmarshal(w1.Body.Bytes(), &resp1)
	assert.NotEmpty(t, resp1.Chat.ID)
	assert.Len(t, resp1.Chat.Participants, 2)

	// Second create for the same pair lands on the same chat
	w2 := postJSON(r, "/api/chats", gin.H{"participantId": b.ID})
	assert.Equal(t, http.StatusOK, w2.Code)

	var resp2 struct {
		Chat models.Chat `json:"chat"`
	}
	json.Unmarshal(w2.Body.Bytes(), &resp2)
	assert.Equal(t, resp1.Chat.ID, resp2.Chat.ID)

	var count int64
	database.DB.Model(&models.Chat{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestCreateChat_NotInContacts(t *testing.T) {
	SetupTestDB()
	a := models.User{ID: "nc_a", Email: "nc_a@example.com", PhoneNumber: "+15551", Password: "x", FullName: "A"}
	stranger := models.User{ID: "nc_s", Email: "nc_s@example.com", PhoneNumber: "+15552", Password: "x", FullName: "S"}
	database.DB.Create(&a)
	database.DB.Create(&stranger)

	r := authedRouter(a.ID, func(r *gin.Engine) {
		r.POST("/api/chats", CreateChat)
	})

	w := postJSON(r, "/api/chats", gin.H{"participantId": stranger.ID})
	assert.Equal(t, http.StatusForbidden, w.Code)

	var resp map[string]string
	json.Unmarshal(w.Body.Bytes(), &resp)
	assert.Equal(t, "NOT_IN_CONTACTS", resp["errorCode"])

	var count int64
	database.DB.Model(&models.Chat{}).Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestCreateChat_WithSelf(t *testing.T) {
	SetupTestDB()
	a := models.User{ID: "self_a", Email: "self_a@example.com", PhoneNumber: "+15553", Password: "x", FullName: "A"}
	database.DB.Create(&a)

	r := authedRouter(a.ID, func(r *gin.Engine) {
		r.POST("/api/chats", CreateChat)
	})

	w := postJSON(r, "/api/chats", gin.H{"participantId": a.ID})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListChats_OnlyCallersChats(t *testing.T) {
	SetupTestDB()
	a, b := seedContactPair("lc_a", "lc_b")
	c := models.User{ID: "lc_c", Email: "lc_c@example.com", PhoneNumber: "+15554", Password: "x", FullName: "C"}
	database.DB.Create(&c)

	mine := models.Chat{ID: "lc_chat1", Participants: []models.User{a, b}}
	theirs := models.Chat{ID: "lc_chat2", Participants: []models.User{b, c}}
	database.DB.Create(&mine)
	database.DB.Create(&theirs)
	database.DB.Create(&[]models.ChatMember{
		{ChatID: mine.ID, UserID: a.ID, UnreadCount: 3},
		{ChatID: mine.ID, UserID: b.ID, UnreadCount: 7},
		{ChatID: theirs.ID, UserID: b.ID},
		{ChatID: theirs.ID, UserID: c.ID},
	})

	r := authedRouter(a.ID, func(r *gin.Engine) {
		r.GET("/api/chats", ListChats)
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/chats", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Chats []models.Chat `json:"chats"`
	}
	json.Unmarshal(w.Body.Bytes(), &resp)
	assert.Len(t, resp.Chats, 1)
	if len(resp.Chats) == 1 {
		assert.Equal(t, mine.ID, resp.Chats[0].ID)

		// Only the caller's own member row rides along; the other side's
		// unread counter stays private
		assert.Len(t, resp.Chats[0].Members, 1)
		if len(resp.Chats[0].Members) == 1 {
			assert.Equal(t, a.ID, resp.Chats[0].Members[0].UserID)
			assert.Equal(t, 3, resp.Chats[0].Members[0].UnreadCount)
		}
	}
}

func TestCreateGroupChat(t *testing.T) {
	SetupTestDB()
	a, b := seedContactPair("gc_a", "gc_b")
	c := models.User{ID: "gc_c", Email: "gc_c@example.com", PhoneNumber: "+15555", Password: "x", FullName: "C"}
	database.DB.Create(&c)

	r := authedRouter(a.ID, func(r *gin.Engine) {
		r.POST("/api/chats/group", CreateGroupChat)
	})

	w := postJSON(r, "/api/chats/group", gin.H{"name": "dev chatter", "userIds": []string{b.ID, c.ID}})
	assert.Equal(t, http.StatusCreated, w.Code)

	var resp struct {
		Chat models.Chat `json:"chat"`
	}
	json.Unmarshal(w.Body.Bytes(), &resp)
	assert.True(t, resp.Chat.IsGroup)
	assert.Equal(t, "dev chatter", resp.Chat.GroupName)
	assert.Len(t, resp.Chat.Participants, 3)
	if assert.NotNil(t, resp.Chat.GroupAdminID) {
		assert.Equal(t, a.ID, *resp.Chat.GroupAdminID)
	}

	// Unknown member fails the whole create
	w2 := postJSON(r, "/api/chats/group", gin.H{"name": "ghosts", "userIds": []string{b.ID, "gc_nobody"}})
	assert.Equal(t, http.StatusNotFound, w2.Code)
}
