package echoapi

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/praveengyadahalli143-byte/TechpG/core/chat"
	"github.com/praveengyadahalli143-byte/TechpG/core/notification"
	"github.com/praveengyadahalli143-byte/TechpG/core/project"
)

func Test_adminApi_login(t *testing.T) {
	env := setup(t)
	env.createAdmin(t, "boss@test.cd", "s3cret1")

	rec := env.do(t, http.MethodPost, "/v1/admin/login", "", LoginRequest{Email: "boss@test.cd", Password: "s3cret1"})
	require.Equal(t, http.StatusOK, rec.Code)
	var resp LoginResponse
	decode(t, rec, &resp)
	assert.NotEmpty(t, resp.Token)

	rec = env.do(t, http.MethodPost, "/v1/admin/login", "", LoginRequest{Email: "boss@test.cd", Password: "nope"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func Test_adminApi_guards(t *testing.T) {
	env := setup(t)
	usr := env.createUser(t, "Jane Doe", "jane@test.cd", "s3cret1")

	rec := env.do(t, http.MethodGet, "/v1/admin/projects", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// a student token does not open the back office
	rec = env.do(t, http.MethodGet, "/v1/admin/projects", env.userToken(t, usr), nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func Test_adminApi_projectQuery(t *testing.T) {
	env := setup(t)
	ctx := context.Background()

	jane := env.createUser(t, "Jane Doe", "jane@test.cd", "s3cret1")
	john := env.createUser(t, "John Roe", "john@other.cd", "s3cret1")
	_, err := env.projSvc.Create(ctx, jane.ID, "major", "A placement tracker")
	require.NoError(t, err)
	johnsProj, err := env.projSvc.Create(ctx, john.ID, "mini", "A hostel mess app")
	require.NoError(t, err)
	_, err = env.projSvc.UpdateStatus(ctx, johnsProj.ID, project.StatusApproved, "", "adm")
	require.NoError(t, err)

	token := env.adminToken(t, env.createAdmin(t, "boss@test.cd", "s3cret1"))

	tests := []struct {
		name  string
		path  string
		want  int
		owner string
	}{
		{name: "all", path: "/v1/admin/projects", want: 2},
		{name: "by status", path: "/v1/admin/projects?status=approved", want: 1, owner: john.ID},
		{name: "by type", path: "/v1/admin/projects?type=major", want: 1, owner: jane.ID},
		{name: "by search", path: "/v1/admin/projects?search=jane", want: 1, owner: jane.ID},
		{name: "no match", path: "/v1/admin/projects?search=nobody", want: 0},
		{name: "ordered", path: "/v1/admin/projects?ordering=-registration_date", want: 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(t, http.MethodGet, tt.path, token, nil)
			require.Equal(t, http.StatusOK, rec.Code)

			var projects []project.Project
			decode(t, rec, &projects)
			require.Len(t, projects, tt.want)
			if tt.owner != "" {
				assert.Equal(t, tt.owner, projects[0].UserID)
			}
		})
	}
}

func Test_adminApi_updateStatus(t *testing.T) {
	env := setup(t)
	ctx := context.Background()

	usr := env.createUser(t, "Jane Doe", "jane@test.cd", "s3cret1")
	proj, err := env.projSvc.Create(ctx, usr.ID, "major", "A placement tracker")
	require.NoError(t, err)

	adm := env.createAdmin(t, "boss@test.cd", "s3cret1")
	token := env.adminToken(t, adm)

	rec := env.do(t, http.MethodPatch, "/v1/admin/projects/"+proj.ID+"/status", token,
		statusUpdateRequest{Status: project.StatusApproved})
	require.Equal(t, http.StatusOK, rec.Code)

	var got project.Project
	decode(t, rec, &got)
	assert.Equal(t, project.StatusApproved, got.Status)

	// the owner was notified with the approval type
	notifs, err := env.notifSvc.QueryByUser(ctx, usr.ID)
	require.NoError(t, err)
	require.Len(t, notifs, 1)
	assert.Equal(t, notification.TypeApproval, notifs[0].Type)
	assert.Equal(t, adm.ID, notifs[0].SentBy)

	// and congratulated in the chat
	msgs, err := env.chatSvc.History(ctx, proj.ID)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, chat.SenderAdmin, msgs[0].SenderType)
	assert.Contains(t, msgs[0].Content, "APPROVED")

	rec = env.do(t, http.MethodPatch, "/v1/admin/projects/"+proj.ID+"/status", token,
		statusUpdateRequest{Status: "bogus"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodPatch, "/v1/admin/projects/nope/status", token,
		statusUpdateRequest{Status: project.StatusRejected})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func Test_adminApi_members(t *testing.T) {
	env := setup(t)
	ctx := context.Background()

	usr := env.createUser(t, "Jane Doe", "jane@test.cd", "s3cret1")
	proj, err := env.projSvc.Create(ctx, usr.ID, "major", "A placement tracker")
	require.NoError(t, err)
	token := env.adminToken(t, env.createAdmin(t, "boss@test.cd", "s3cret1"))

	rec := env.do(t, http.MethodPost, "/v1/admin/projects/"+proj.ID+"/members", token,
		inviteRequest{Email: "Mate@Test.CD"})
	require.Equal(t, http.StatusCreated, rec.Code)

	var mbr project.Member
	decode(t, rec, &mbr)
	assert.Equal(t, "mate@test.cd", mbr.Email)

	// same email again is rejected as a field error
	rec = env.do(t, http.MethodPost, "/v1/admin/projects/"+proj.ID+"/members", token,
		inviteRequest{Email: "mate@test.cd"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodGet, "/v1/admin/projects/"+proj.ID+"/members", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var members []project.Member
	decode(t, rec, &members)
	assert.Len(t, members, 1)
}

func Test_adminApi_deleteProject(t *testing.T) {
	env := setup(t)
	ctx := context.Background()

	usr := env.createUser(t, "Jane Doe", "jane@test.cd", "s3cret1")
	proj, err := env.projSvc.Create(ctx, usr.ID, "major", "A placement tracker")
	require.NoError(t, err)
	token := env.adminToken(t, env.createAdmin(t, "boss@test.cd", "s3cret1"))

	rec := env.do(t, http.MethodDelete, "/v1/admin/projects/"+proj.ID, token, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	_, err = env.projSvc.Get(ctx, proj.ID)
	assert.Equal(t, project.ErrNotFound, err)
}

func Test_adminApi_updatesAndUnreadCounts(t *testing.T) {
	env := setup(t)
	ctx := context.Background()

	usr := env.createUser(t, "Jane Doe", "jane@test.cd", "s3cret1")
	proj, err := env.projSvc.Create(ctx, usr.ID, "major", "A placement tracker")
	require.NoError(t, err)
	_, err = env.projSvc.UpdateStatus(ctx, proj.ID, project.StatusInProgress, "Kickoff done", "adm")
	require.NoError(t, err)

	_, err = env.chatSvc.Send(ctx, chat.NewMessage{
		ProjectID:  proj.ID,
		UserID:     usr.ID,
		SenderType: chat.SenderUser,
		Content:    "When do we start?",
	})
	require.NoError(t, err)

	token := env.adminToken(t, env.createAdmin(t, "boss@test.cd", "s3cret1"))

	rec := env.do(t, http.MethodGet, "/v1/admin/updates", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var updates []project.Update
	decode(t, rec, &updates)
	require.Len(t, updates, 1)
	assert.Equal(t, "Kickoff done", updates[0].UpdateText)

	rec = env.do(t, http.MethodGet, "/v1/admin/unread-counts", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var counts map[string]int
	decode(t, rec, &counts)
	assert.Equal(t, 1, counts[proj.ID])
}

func Test_adminApi_sendNotification(t *testing.T) {
	env := setup(t)
	ctx := context.Background()

	usr := env.createUser(t, "Jane Doe", "jane@test.cd", "s3cret1")
	adm := env.createAdmin(t, "boss@test.cd", "s3cret1")
	token := env.adminToken(t, adm)

	rec := env.do(t, http.MethodPost, "/v1/admin/notifications", token, notification.NewNotification{
		UserID:    usr.ID,
		ProjectID: "p1",
		Title:     "Submit documents",
		Message:   "Please submit the required documents.",
		Type:      notification.TypeActionRequired,
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	notifs, err := env.notifSvc.QueryByUser(ctx, usr.ID)
	require.NoError(t, err)
	require.Len(t, notifs, 1)
	assert.Equal(t, adm.ID, notifs[0].SentBy)

	rec = env.do(t, http.MethodGet, "/v1/admin/notification-templates", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var templates []notification.Template
	decode(t, rec, &templates)
	assert.Len(t, templates, len(notification.Templates))
}

func Test_statsApi(t *testing.T) {
	env := setup(t)

	for i := 0; i < 3; i++ {
		rec := env.do(t, http.MethodGet, "/v1/track", "", nil)
		require.Equal(t, http.StatusNoContent, rec.Code)
	}

	token := env.adminToken(t, env.createAdmin(t, "boss@test.cd", "s3cret1"))
	rec := env.do(t, http.MethodGet, "/v1/admin/stats", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var summary struct {
		TotalVisitors int `json:"total_visitors"`
		TodayVisitors int `json:"today_visitors"`
	}
	decode(t, rec, &summary)
	assert.Equal(t, 3, summary.TotalVisitors)
	assert.Equal(t, 3, summary.TodayVisitors)

	// stats are admin-only
	rec = env.do(t, http.MethodGet, "/v1/admin/stats", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func Test_adminApi_projectDetail(t *testing.T) {
	env := setup(t)
	ctx := context.Background()

	usr := env.createUser(t, "Jane Doe", "jane@test.cd", "s3cret1")
	proj, err := env.projSvc.Create(ctx, usr.ID, "major", "A placement tracker")
	require.NoError(t, err)
	token := env.adminToken(t, env.createAdmin(t, "boss@test.cd", "s3cret1"))

	rec := env.do(t, http.MethodGet, "/v1/admin/projects/"+proj.ID, token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var got project.Project
	decode(t, rec, &got)
	assert.Equal(t, proj.ID, got.ID)
	assert.Equal(t, usr.ID, got.UserID)

	rec = env.do(t, http.MethodGet, "/v1/admin/projects/nope", token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
