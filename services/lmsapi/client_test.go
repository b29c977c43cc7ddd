package lmsapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	echoapi "github.com/trezcool/masomo/apps/stubapi/echo"
	"github.com/trezcool/masomo/core"
	"github.com/trezcool/masomo/core/course"
	"github.com/trezcool/masomo/core/player"
	"github.com/trezcool/masomo/core/progress"
	"github.com/trezcool/masomo/core/user"
	emailsvc "github.com/trezcool/masomo/services/email"
	inmemdb "github.com/trezcool/masomo/storage/inmem"
	"github.com/trezcool/masomo/tests"
)

func init() {
	retryWaitTime = time.Millisecond
	retryMaxWaitTime = 5 * time.Millisecond
}

// startStubAPI serves a seeded stub API for the duration of the test.
func startStubAPI(t *testing.T) (core.APIConfig, inmemdb.Seeded) {
	t.Helper()
	db, err := inmemdb.Open()
	require.NoError(t, err)
	seeded, err := inmemdb.Seed(db)
	require.NoError(t, err)

	courseRepo := inmemdb.NewCourseRepository(db)
	app := echoapi.NewServer(
		&echoapi.Options{AppName: "Masomo", DisableReqLogs: true, SecretKey: []byte("secret"), TokenTTL: time.Hour},
		nil,
		&echoapi.Deps{
			UserSvc:     user.NewService(inmemdb.NewUserRepository(db), emailsvc.NewConsoleServiceMock("Masomo", testutil.NopLogger{}), "Masomo"),
			CourseSvc:   course.NewService(courseRepo, inmemdb.NewEnrollmentRepository(db)),
			ProgressSvc: progress.NewService(inmemdb.NewProgressRepository(db), courseRepo),
			Logger:      testutil.NopLogger{},
		},
	)
	srv := httptest.NewServer(app)
	t.Cleanup(srv.Close)
	return core.APIConfig{BaseURL: srv.URL + "/api", Timeout: 5 * time.Second}, seeded
}

func login(t *testing.T, conf core.APIConfig, email string) *Client {
	t.Helper()
	token, err := New(conf, nil).Login(context.Background(), user.Credentials{Email: email, Password: inmemdb.SeedPassword})
	require.NoError(t, err)
	return New(conf, StaticToken(token))
}

func TestClient_auth(t *testing.T) {
	conf, _ := startStubAPI(t)
	ctx := context.Background()
	anon := New(conf, nil)

	_, err := anon.Login(ctx, user.Credentials{Email: "munir@gmail.com", Password: "wrong"})
	assert.True(t, HasStatus(err, http.StatusUnauthorized), "Login() error = %v", err)

	usr, err := anon.Register(ctx, user.NewUser{Name: "Jane", Email: "jane@test.cd", Password: "Secret123"})
	require.NoError(t, err)
	assert.Equal(t, user.RoleUser, usr.Role)

	_, err = anon.Register(ctx, user.NewUser{Name: "Jane", Email: "jane@test.cd", Password: "Secret123"})
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Contains(t, apiErr.Fields, "email")

	token, err := anon.Login(ctx, user.Credentials{Email: "jane@test.cd", Password: "Secret123"})
	require.NoError(t, err)
	claims, err := user.ParseClaims(token)
	require.NoError(t, err)
	assert.Equal(t, usr.ID, claims.Subject)

	_, err = anon.ListEnrollments(ctx)
	assert.True(t, HasStatus(err, http.StatusUnauthorized))
}

func TestClient_catalogAndProgress(t *testing.T) {
	conf, seeded := startStubAPI(t)
	ctx := context.Background()
	client := login(t, conf, "munir@gmail.com")

	courses, err := client.ListCourses(ctx)
	require.NoError(t, err)
	require.Len(t, courses, 1)

	crs, err := client.FetchCourseDetail(ctx, seeded.Course.ID)
	require.NoError(t, err)
	assert.Equal(t, seeded.Course, crs)

	_, err = client.FetchCourseDetail(ctx, "nope")
	assert.True(t, HasStatus(err, http.StatusNotFound))

	seq, err := course.Flatten(crs)
	require.NoError(t, err)
	ids, err := client.FetchCompletedLectureIDs(ctx, crs.ID, seq.IDs())
	require.NoError(t, err)
	assert.Empty(t, ids)

	first := seq.At(0).Lecture.ID
	require.NoError(t, client.PersistCompletion(ctx, first))
	require.NoError(t, client.PersistCompletion(ctx, first))
	ids, err = client.FetchCompletedLectureIDs(ctx, crs.ID, seq.IDs())
	require.NoError(t, err)
	assert.Equal(t, []string{first}, ids)

	_, err = client.Enroll(ctx, crs.ID)
	require.NoError(t, err)
	_, err = client.Enroll(ctx, crs.ID)
	assert.Equal(t, ErrAlreadyEnrolled, err)

	enrolled, err := client.ListEnrolledCourses(ctx)
	require.NoError(t, err)
	require.Len(t, enrolled, 1)
	assert.Equal(t, crs.ID, enrolled[0].ID)
}

func TestClient_admin(t *testing.T) {
	conf, seeded := startStubAPI(t)
	ctx := context.Background()
	admin := login(t, conf, "admin@gmail.com")

	crs, err := admin.CreateCourse(ctx, course.NewCourse{Title: "Rust", Thumbnail: "https://img.test/rust.png", Price: 10})
	require.NoError(t, err)
	mod, err := admin.CreateModule(ctx, course.NewModule{CourseID: crs.ID, Title: "Ownership"})
	require.NoError(t, err)
	assert.Equal(t, 1, mod.ModuleNumber)
	lec, err := admin.CreateLecture(ctx, course.NewLecture{ModuleID: mod.ID, Title: "Borrowing", VideoURL: "https://videos.test/b"})
	require.NoError(t, err)

	got, err := admin.GetLecture(ctx, lec.ID)
	require.NoError(t, err)
	assert.Equal(t, lec, got)

	lectures, err := admin.ListLectures(ctx, course.LectureFilter{CourseID: crs.ID})
	require.NoError(t, err)
	assert.Equal(t, []course.Lecture{lec}, lectures)

	mods, err := admin.ListModules(ctx, crs.ID)
	require.NoError(t, err)
	require.Len(t, mods, 1)
	assert.Len(t, mods[0].Lectures, 1)

	require.NoError(t, admin.DeleteLecture(ctx, lec.ID))
	require.NoError(t, admin.DeleteModule(ctx, mod.ID))
	require.NoError(t, admin.DeleteCourse(ctx, crs.ID))
	assert.True(t, HasStatus(admin.DeleteCourse(ctx, crs.ID), http.StatusNotFound))

	users, err := admin.ListUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 2)

	usr, err := admin.SetUserRole(ctx, seeded.Learner.ID, user.RoleAdmin)
	require.NoError(t, err)
	assert.True(t, usr.IsAdmin())
	require.NoError(t, admin.DeleteUser(ctx, seeded.Learner.ID))

	_, err = New(conf, nil).Login(ctx, user.Credentials{Email: seeded.Learner.Email, Password: inmemdb.SeedPassword})
	assert.True(t, HasStatus(err, http.StatusUnauthorized), "deleted user logged in")
}

func TestClient_retries(t *testing.T) {
	var attempts int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if atomic.AddInt32(&attempts, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"message":"try later"}`))
			return
		}
		_, _ = w.Write([]byte(`{"data":[{"_id":"c1","title":"Go"}]}`))
	}))
	defer srv.Close()

	conf := core.APIConfig{BaseURL: srv.URL, Timeout: time.Second, Retries: 2}
	courses, err := New(conf, nil).ListCourses(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []course.Course{{ID: "c1", Title: "Go"}}, courses)
	assert.EqualValues(t, 3, atomic.LoadInt32(&attempts))

	atomic.StoreInt32(&attempts, -10)
	_, err = New(conf, nil).ListCourses(context.Background())
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "lms api: 503 try later", apiErr.Error())
}

func TestClient_retriesOnlyIdempotentRequests(t *testing.T) {
	var mu sync.Mutex
	hits := make(map[string]int)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		hits[r.Method+" "+r.URL.Path]++
		mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(`{"message":"upstream down"}`))
	}))
	defer srv.Close()

	client := New(core.APIConfig{BaseURL: srv.URL, Timeout: time.Second, Retries: 2}, StaticToken("t"))
	ctx := context.Background()

	_, err := client.CreateCourse(ctx, course.NewCourse{Title: "Go", Thumbnail: "https://img.test/go.png"})
	assert.True(t, HasStatus(err, http.StatusBadGateway))
	_, err = client.Enroll(ctx, "c1")
	assert.True(t, HasStatus(err, http.StatusBadGateway))
	_, err = client.FetchCourseDetail(ctx, "c1")
	assert.True(t, HasStatus(err, http.StatusBadGateway))
	err = client.PersistCompletion(ctx, "L1")
	assert.True(t, HasStatus(err, http.StatusBadGateway))

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, map[string]int{
		"POST /course":            1,
		"POST /enrollments":       1,
		"GET /course/c1":          3,
		"POST /progress/complete": 3,
	}, hits)
}

// The player runs against the REST client end to end.
func TestClient_playerSession(t *testing.T) {
	conf, seeded := startStubAPI(t)
	ctx := context.Background()
	client := login(t, conf, "munir@gmail.com")

	sess := player.NewSession(client, client, progress.PolicySequential, testutil.NopLogger{})
	require.NoError(t, sess.Load(ctx, seeded.Course.ID))

	mod1 := seeded.Course.Modules[0].Lectures
	mod2 := seeded.Course.Modules[1].Lectures

	st, err := sess.UnlockState(mod1[1].ID)
	require.NoError(t, err)
	assert.Equal(t, progress.Locked, st)

	for _, lec := range mod1 {
		_, err := sess.SelectLecture(lec.ID)
		require.NoError(t, err)
		require.NoError(t, sess.MarkComplete(ctx, lec.ID))
	}
	st, err = sess.UnlockState(mod2[0].ID)
	require.NoError(t, err)
	assert.Equal(t, progress.UnlockedUnvisited, st, "unlock crosses into the next module")

	// a new session sees the persisted progress
	other := player.NewSession(client, client, progress.PolicySequential, testutil.NopLogger{})
	require.NoError(t, other.Load(ctx, seeded.Course.ID))
	sum, err := other.Summary()
	require.NoError(t, err)
	assert.Equal(t, len(mod1), sum.Completed)
	assert.Equal(t, seeded.Course.LectureCount(), sum.Total)
}
