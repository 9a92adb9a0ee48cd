package echoapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/praveengyadahalli143-byte/TechpG/core"
	"github.com/praveengyadahalli143-byte/TechpG/core/admin"
	"github.com/praveengyadahalli143-byte/TechpG/core/chat"
	"github.com/praveengyadahalli143-byte/TechpG/core/notification"
	"github.com/praveengyadahalli143-byte/TechpG/core/project"
	"github.com/praveengyadahalli143-byte/TechpG/core/registration"
	"github.com/praveengyadahalli143-byte/TechpG/core/stats"
	"github.com/praveengyadahalli143-byte/TechpG/core/user"
	filesvc "github.com/praveengyadahalli143-byte/TechpG/services/files"
	realtimesvc "github.com/praveengyadahalli143-byte/TechpG/services/realtime"
	inmemrepos "github.com/praveengyadahalli143-byte/TechpG/storage/database/inmem"
)

type testLogger struct{}

func (testLogger) Debug(string, ...interface{}) {}
func (testLogger) Info(string, ...interface{})  {}
func (testLogger) Warn(string, ...interface{})  {}
func (testLogger) Error(string, ...interface{}) {}
func (testLogger) Fatal(string, ...interface{}) {}

type testEnv struct {
	server   Server
	conf     *core.Config
	usrSvc   *user.Service
	admSvc   *admin.Service
	projSvc  *project.Service
	chatSvc  *chat.Service
	notifSvc *notification.Service
	statsSvc *stats.Service
	sessions *registration.SessionStore
	hub      *realtimesvc.Hub
	typing   *chat.TypingTracker
}

func setup(t *testing.T) *testEnv {
	t.Helper()

	conf := &core.Config{
		TestMode:  true,
		AppName:   "TechpG",
		SecretKey: "t3st-s3cret",
		Server: core.ServerConfig{
			JWTExpirationDelta:     time.Hour,
			TypingExpiry:           3 * time.Second,
			RegistrationSessionTTL: 30 * time.Minute,
		},
	}

	db := inmemrepos.Open()
	hub := realtimesvc.NewHub()
	typing := chat.NewTypingTracker(conf.Server.TypingExpiry)

	validate, translator := core.NewValidator()
	user.InitValidators(validate, translator)

	usrSvc := user.NewService(inmemrepos.NewUserRepository(db), conf)
	admSvc := admin.NewService(inmemrepos.NewAdminRepository(db))
	chatSvc := chat.NewService(inmemrepos.NewChatRepository(db), hub)
	notifSvc := notification.NewService(inmemrepos.NewNotificationRepository(db))
	projSvc := project.NewService(inmemrepos.NewProjectRepository(db), usrSvc, chatSvc, notifSvc, testLogger{})
	statsSvc := stats.NewService(inmemrepos.NewStatsRepository(db))

	pipeline := registration.NewPipeline(usrSvc, projSvc, validate, nil, conf, testLogger{})
	sessions := registration.NewSessionStore(registration.NewInMemDraftStore(), conf.Server.RegistrationSessionTTL)

	files, err := filesvc.NewLocalStore(t.TempDir(), "/uploads")
	require.NoError(t, err)

	env := &testEnv{
		conf:     conf,
		usrSvc:   usrSvc,
		admSvc:   admSvc,
		projSvc:  projSvc,
		chatSvc:  chatSvc,
		notifSvc: notifSvc,
		statsSvc: statsSvc,
		sessions: sessions,
		hub:      hub,
		typing:   typing,
	}
	env.server = NewServer(ServerDeps{
		Conf:           conf,
		Logger:         testLogger{},
		UserSvc:        usrSvc,
		AdminSvc:       admSvc,
		ProjectSvc:     projSvc,
		ChatSvc:        chatSvc,
		NotifSvc:       notifSvc,
		StatsSvc:       statsSvc,
		Sessions:       sessions,
		Lookup:         registration.EmailChecker{Users: usrSvc},
		Pipeline:       pipeline,
		Hub:            hub,
		Typing:         typing,
		Files:          files,
		Validate:       validate,
		Translator:     translator,
		DisableReqLogs: true,
	})
	return env
}

func (env *testEnv) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	env.server.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), dst))
}

func (env *testEnv) createUser(t *testing.T, name, email, pwd string) user.User {
	t.Helper()
	usr, err := env.usrSvc.Create(context.Background(), user.NewUser{
		FullName:     name,
		Email:        email,
		PhoneNumber:  "9876543210",
		CollegeName:  "ABC College",
		CourseBranch: "B.Tech CSE",
		Password:     pwd,
	})
	require.NoError(t, err)
	return usr
}

func (env *testEnv) createAdmin(t *testing.T, email, pwd string) admin.AdminUser {
	t.Helper()
	adm, err := env.admSvc.Create(context.Background(), email, admin.RoleProjectCoordinator, pwd)
	require.NoError(t, err)
	return adm
}

func (env *testEnv) userToken(t *testing.T, usr user.User) string {
	t.Helper()
	token, err := GenerateToken(GetUserClaims(env.conf, usr))
	require.NoError(t, err)
	return token
}

func (env *testEnv) adminToken(t *testing.T, adm admin.AdminUser) string {
	t.Helper()
	token, err := GenerateToken(GetAdminClaims(env.conf, adm))
	require.NoError(t, err)
	return token
}
