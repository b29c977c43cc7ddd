package echoapi_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/trezcool/masomo/apps/stubapi/echo"
	"github.com/trezcool/masomo/core/course"
	"github.com/trezcool/masomo/core/progress"
	"github.com/trezcool/masomo/core/user"
	emailsvc "github.com/trezcool/masomo/services/email"
	inmemdb "github.com/trezcool/masomo/storage/inmem"
	"github.com/trezcool/masomo/tests"
)

var secretKey = []byte("test-secret")

type fixture struct {
	app    Server
	seeded inmemdb.Seeded
}

func setup(t *testing.T) fixture {
	t.Helper()
	db, err := inmemdb.Open()
	require.NoError(t, err)
	seeded, err := inmemdb.Seed(db)
	require.NoError(t, err)

	courseRepo := inmemdb.NewCourseRepository(db)
	app := NewServer(
		&Options{
			AppName:        "Masomo",
			DisableReqLogs: true,
			SecretKey:      secretKey,
			TokenTTL:       time.Hour,
		},
		nil, /* shutdown */
		&Deps{
			UserSvc:     user.NewService(inmemdb.NewUserRepository(db), emailsvc.NewConsoleServiceMock("Masomo", testutil.NopLogger{}), "Masomo"),
			CourseSvc:   course.NewService(courseRepo, inmemdb.NewEnrollmentRepository(db)),
			ProgressSvc: progress.NewService(inmemdb.NewProgressRepository(db), courseRepo),
			Logger:      testutil.NopLogger{},
		},
	)
	return fixture{app: app, seeded: seeded}
}

type envelope struct {
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     interface{}
	token    string
	wantCode int
	wantMsg  string
}

func (f fixture) do(t *testing.T, method, path, token string, body interface{}) (*httptest.ResponseRecorder, envelope) {
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
	f.app.ServeHTTP(rec, req)

	var env envelope
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	}
	return rec, env
}

func (f fixture) run(t *testing.T, tests []httpTest) {
	t.Helper()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			method := tt.method
			if method == "" {
				method = http.MethodGet
			}
			rec, env := f.do(t, method, tt.path, tt.token, tt.body)
			assert.Equal(t, tt.wantCode, rec.Code, rec.Body.String())
			if tt.wantMsg != "" {
				assert.Equal(t, tt.wantMsg, env.Message)
			}
		})
	}
}

func getToken(t *testing.T, usr user.User) string {
	t.Helper()
	token, err := user.SignToken(user.NewClaims(usr, "Masomo", time.Hour), secretKey)
	require.NoError(t, err)
	return token
}

func decode(t *testing.T, env envelope, dst interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(env.Data, dst))
}
