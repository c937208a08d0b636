package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/devjasani79/WhatsUpDev/internal/database"
	"github.com/devjasani79/WhatsUpDev/internal/models"
)

func seedDirectChat(id string, a, b models.User) models.Chat {
	chat := models.Chat{ID: id, Participants: []models.User{a, b}}
	database.DB.Create(&chat)
	database.DB.Create(&[]models.ChatMember{
		{ChatID: chat.ID, UserID: a.ID},
		{ChatID: chat.ID, UserID: b.ID},
	})
	return chat
}

func messageRouter(userID string) *gin.Engine {
	return authedRouter(userID, func(r *gin.Engine) {
		r.GET("/api/chats/:chatId/messages", ListMessages)
		r.POST("/api/chats/:chatId/messages", SendMessage)
		r.DELETE("/api/messages/:messageId", DeleteMessage)
	})
}

func TestSendMessage_UpdatesChatState(t *testing.T) {
	SetupTestDB()
	a, b := seedContactPair("sm_a", "sm_b")
	chat := seedDirectChat("sm_chat", a, b)

	r := messageRouter(a.ID)
	w := postJSON(r, "/api/chats/"+chat.ID+"/messages", gin.H{"content": "hello there"})
	assert.Equal(t, http.StatusCreated, w.Code)

	var resp struct {
		Message models.Message `json:"message"`
	}
	json.Unmarshal(w.Body.Bytes(), &resp)
	assert.Equal(t, "hello there", resp.Message.Content)
	assert.Equal(t, models.MessageText, resp.Message.Type)
	assert.Equal(t, models.StatusSent, resp.Message.Status)
	assert.Equal(t, a.ID, resp.Message.Sender.ID)
	// Participants ride along so the client can fan out over the socket
	if assert.NotNil(t, resp.Message.Chat) {
		assert.Len(t, resp.Message.Chat.Participants, 2)
	}

	var stored models.Chat
	database.DB.First(&stored, "id = ?", chat.ID)
	if assert.NotNil(t, stored.LastMessageID) {
		assert.Equal(t, resp.Message.ID, *stored.LastMessageID)
	}

	// Recipient's badge moves, the sender's does not
	var mine, theirs models.ChatMember
	database.DB.First(&mine, "chat_id = ? AND user_id = ?", chat.ID, a.ID)
	database.DB.First(&theirs, "chat_id = ? AND user_id = ?", chat.ID, b.ID)
	assert.Equal(t, 0, mine.UnreadCount)
	assert.Equal(t, 1, theirs.UnreadCount)
}

func TestSendMessage_NotParticipant(t *testing.T) {
	SetupTestDB()
	a, b := seedContactPair("np_a", "np_b")
	chat := seedDirectChat("np_chat", a, b)

	outsider := models.User{ID: "np_out", Email: "np_out@example.com", PhoneNumber: "+15556", Password: "x", FullName: "Out"}
	database.DB.Create(&outsider)

	r := messageRouter(outsider.ID)
	w := postJSON(r, "/api/chats/"+chat.ID+"/messages", gin.H{"content": "let me in"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	var resp map[string]string
	json.Unmarshal(w.Body.Bytes(), &resp)
	assert.Equal(t, "NOT_CHAT_PARTICIPANT", resp["errorCode"])

	var count int64
	database.DB.Model(&models.Message{}).Where("chat_id = ?", chat.ID).Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestSendMessage_MediaValidation(t *testing.T) {
	SetupTestDB()
	a, b := seedContactPair("mv_a", "mv_b")
	chat := seedDirectChat("mv_chat", a, b)

	r := messageRouter(a.ID)

	// Media content must be an attachment URL
	w := postJSON(r, "/api/chats/"+chat.ID+"/messages", gin.H{
		"content": "not a url",
		"type":    "image",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Metadata MIME must match the declared type
	w = postJSON(r, "/api/chats/"+chat.ID+"/messages", gin.H{
		"content":      "https://cdn.example.com/chat/x.mp4",
		"type":         "image",
		"fileMetadata": gin.H{"fileName": "x.mp4", "fileSize": 10, "mimeType": "video/mp4"},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = postJSON(r, "/api/chats/"+chat.ID+"/messages", gin.H{
		"content":      "https://cdn.example.com/chat/x.png",
		"type":         "image",
		"fileMetadata": gin.H{"fileName": "x.png", "fileSize": 10, "mimeType": "image/png"},
	})
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestListMessages_OldestFirst(t *testing.T) {
	SetupTestDB()
	a, b := seedContactPair("lm_a", "lm_b")
	chat := seedDirectChat("lm_chat", a, b)

	now := time.Now()
	database.DB.Create(&models.Message{ID: "lm_m2", ChatID: chat.ID, SenderID: b.ID, Content: "second", Type: models.MessageText, CreatedAt: now.Add(-1 * time.Minute)})
	database.DB.Create(&models.Message{ID: "lm_m1", ChatID: chat.ID, SenderID: a.ID, Content: "first", Type: models.MessageText, CreatedAt: now.Add(-2 * time.Minute)})
	database.DB.Create(&models.Message{ID: "lm_m3", ChatID: chat.ID, SenderID: a.ID, Content: "third", Type: models.MessageText, CreatedAt: now})

	r := messageRouter(a.ID)
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/chats/"+chat.ID+"/messages", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Messages []models.Message `json:"messages"`
	}
	json.Unmarshal(w.Body.Bytes(), &resp)
	assert.Len(t, resp.Messages, 3)
	if len(resp.Messages) == 3 {
		assert.Equal(t, "lm_m1", resp.Messages[0].ID)
		assert.Equal(t, "lm_m2", resp.Messages[1].ID)
		assert.Equal(t, "lm_m3", resp.Messages[2].ID)
	}
}

func TestDeleteMessage_RecomputesPointer(t *testing.T) {
	SetupTestDB()
	a, b := seedContactPair("dm_a", "dm_b")
	chat := seedDirectChat("dm_chat", a, b)

	now := time.Now()
	older := models.Message{ID: "dm_m1", ChatID: chat.ID, SenderID: a.ID, Content: "older", Type: models.MessageText, CreatedAt: now.Add(-1 * time.Minute)}
	latest := models.Message{ID: "dm_m2", ChatID: chat.ID, SenderID: a.ID, Content: "latest", Type: models.MessageText, CreatedAt: now}
	database.DB.Create(&older)
	database.DB.Create(&latest)
	database.DB.Model(&chat).UpdateColumn("last_message_id", latest.ID)

	r := messageRouter(a.ID)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("DELETE", "/api/messages/"+latest.ID, nil)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	var stored models.Chat
	database.DB.First(&stored, "id = ?", chat.ID)
	if assert.NotNil(t, stored.LastMessageID) {
		assert.Equal(t, older.ID, *stored.LastMessageID)
	}

	// Deleting the only remaining message clears the pointer
	w = httptest.NewRecorder()
	req, _ = http.NewRequest("DELETE", "/api/messages/"+older.ID, nil)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	database.DB.First(&stored, "id = ?", chat.ID)
	assert.Nil(t, stored.LastMessageID)
}

func TestDeleteMessage_SenderOnly(t *testing.T) {
	SetupTestDB()
	a, b := seedContactPair("do_a", "do_b")
	chat := seedDirectChat("do_chat", a, b)

	msg := models.Message{ID: "do_m1", ChatID: chat.ID, SenderID: a.ID, Content: "mine", Type: models.MessageText}
	database.DB.Create(&msg)

	r := messageRouter(b.ID)
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("DELETE", "/api/messages/"+msg.ID, nil)
	r.ServeHTTP(w, req)

	// Indistinguishable from a missing message
	assert.Equal(t, http.StatusNotFound, w.Code)

	var count int64
	database.DB.Model(&models.Message{}).Where("id = ?", msg.ID).Count(&count)
	assert.Equal(t, int64(1), count)
}
