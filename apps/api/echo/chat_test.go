package echoapi

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/praveengyadahalli143-byte/TechpG/core/chat"
	"github.com/praveengyadahalli143-byte/TechpG/core/project"
)

func Test_chatApi_access(t *testing.T) {
	env := setup(t)
	ctx := context.Background()

	owner := env.createUser(t, "Jane Doe", "jane@test.cd", "s3cret1")
	stranger := env.createUser(t, "John Roe", "john@test.cd", "s3cret1")
	proj, err := env.projSvc.Create(ctx, owner.ID, "major", "A placement tracker")
	require.NoError(t, err)
	_, err = env.projSvc.Invite(ctx, proj.ID, "mate@test.cd")
	require.NoError(t, err)
	mate := env.createUser(t, "Mate Moe", "mate@test.cd", "s3cret1")
	adm := env.createAdmin(t, "boss@test.cd", "s3cret1")

	path := "/v1/projects/" + proj.ID + "/messages"

	tests := []struct {
		name  string
		token string
		want  int
	}{
		{name: "anonymous", token: "", want: http.StatusUnauthorized},
		{name: "owner", token: env.userToken(t, owner), want: http.StatusOK},
		{name: "team member", token: env.userToken(t, mate), want: http.StatusOK},
		{name: "admin", token: env.adminToken(t, adm), want: http.StatusOK},
		{name: "stranger", token: env.userToken(t, stranger), want: http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(t, http.MethodGet, path, tt.token, nil)
			assert.Equal(t, tt.want, rec.Code)
		})
	}

	// an unknown project is a 404, not a 403
	rec := env.do(t, http.MethodGet, "/v1/projects/nope/messages", env.userToken(t, owner), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func Test_chatApi_sendAndRead(t *testing.T) {
	env := setup(t)
	ctx := context.Background()

	usr := env.createUser(t, "Jane Doe", "jane@test.cd", "s3cret1")
	proj, err := env.projSvc.Create(ctx, usr.ID, "major", "A placement tracker")
	require.NoError(t, err)
	adm := env.createAdmin(t, "boss@test.cd", "s3cret1")

	base := "/v1/projects/" + proj.ID

	rec := env.do(t, http.MethodPost, base+"/messages", env.userToken(t, usr),
		sendMessageRequest{Content: "  When is the review?  "})
	require.Equal(t, http.StatusCreated, rec.Code)

	var msg chat.Message
	decode(t, rec, &msg)
	assert.Equal(t, "When is the review?", msg.Content)
	assert.Equal(t, chat.SenderUser, msg.SenderType)
	assert.False(t, msg.IsRead)

	// a blank message is rejected
	rec = env.do(t, http.MethodPost, base+"/messages", env.userToken(t, usr),
		sendMessageRequest{Content: "   "})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// an admin reply is attributed to the admin but keyed to the owner's
	// account, never the admin's
	rec = env.do(t, http.MethodPost, base+"/messages", env.adminToken(t, adm),
		sendMessageRequest{Content: "Friday at noon."})
	require.Equal(t, http.StatusCreated, rec.Code)

	var reply chat.Message
	decode(t, rec, &reply)
	assert.Equal(t, chat.SenderAdmin, reply.SenderType)
	assert.Equal(t, usr.ID, reply.UserID)
	assert.NotEqual(t, adm.ID, reply.UserID)

	// the admin reads the thread and marks the student messages read
	rec = env.do(t, http.MethodPost, base+"/messages/read", env.adminToken(t, adm), nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	msgs, err := env.chatSvc.History(ctx, proj.ID)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.True(t, msgs[0].IsRead)
}

func Test_chatApi_typing(t *testing.T) {
	env := setup(t)
	ctx := context.Background()

	usr := env.createUser(t, "Jane Doe", "jane@test.cd", "s3cret1")
	proj, err := env.projSvc.Create(ctx, usr.ID, "major", "A placement tracker")
	require.NoError(t, err)

	base := "/v1/projects/" + proj.ID
	token := env.userToken(t, usr)

	events, cancel := env.hub.Subscribe("chat:" + proj.ID)
	defer cancel()

	rec := env.do(t, http.MethodPost, base+"/typing", token, typingRequest{Typing: true})
	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.True(t, env.typing.IsTyping(typingKey(proj.ID, chat.SenderUser)))

	select {
	case evt := <-events:
		assert.Equal(t, "typing", evt.Kind)
	default:
		t.Fatal("expected a typing event on the project channel")
	}

	// sending a message clears the indicator
	rec = env.do(t, http.MethodPost, base+"/messages", token, sendMessageRequest{Content: "hi"})
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.False(t, env.typing.IsTyping(typingKey(proj.ID, chat.SenderUser)))
}

func Test_chatApi_members(t *testing.T) {
	env := setup(t)
	ctx := context.Background()

	usr := env.createUser(t, "Jane Doe", "jane@test.cd", "s3cret1")
	proj, err := env.projSvc.Create(ctx, usr.ID, "major", "A placement tracker")
	require.NoError(t, err)
	token := env.userToken(t, usr)

	base := "/v1/projects/" + proj.ID

	rec := env.do(t, http.MethodPost, base+"/members", token, inviteRequest{Email: "Mate@Test.CD"})
	require.Equal(t, http.StatusCreated, rec.Code)

	var mbr project.Member
	decode(t, rec, &mbr)
	assert.Equal(t, "mate@test.cd", mbr.Email)

	// inviting the same address twice fails
	rec = env.do(t, http.MethodPost, base+"/members", token, inviteRequest{Email: "mate@test.cd"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodGet, base+"/members", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var members []project.Member
	decode(t, rec, &members)
	assert.Len(t, members, 1)
}

func Test_chatApi_uploadFile(t *testing.T) {
	env := setup(t)
	ctx := context.Background()

	usr := env.createUser(t, "Jane Doe", "jane@test.cd", "s3cret1")
	proj, err := env.projSvc.Create(ctx, usr.ID, "major", "A placement tracker")
	require.NoError(t, err)

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fw, err := w.CreateFormFile("file", "notes.txt")
	require.NoError(t, err)
	_, err = fw.Write([]byte("review notes"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/v1/projects/"+proj.ID+"/files", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+env.userToken(t, usr))
	rec := httptest.NewRecorder()
	env.server.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp struct {
		FileURL  string `json:"file_url"`
		FileName string `json:"file_name"`
	}
	decode(t, rec, &resp)
	assert.True(t, strings.HasPrefix(resp.FileURL, "/uploads/"), resp.FileURL)
	assert.True(t, strings.HasSuffix(resp.FileURL, "-notes.txt"), resp.FileURL)
	assert.Equal(t, "notes.txt", resp.FileName)

	// without a file part the request is rejected
	rec = env.do(t, http.MethodPost, "/v1/projects/"+proj.ID+"/files", env.userToken(t, usr), nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
