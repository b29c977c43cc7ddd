package emailsvc

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/mail"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/masomo/core"
	"github.com/trezcool/masomo/tests"
)

func welcome(to string) *core.EmailMessage {
	return &core.EmailMessage{
		To:           []mail.Address{{Name: "Jane", Address: to}},
		Subject:      "Welcome aboard",
		TemplateName: "welcome",
		TemplateData: map[string]interface{}{"AppName": "Masomo", "Name": "Jane", "Email": to},
	}
}

func TestConsoleServiceMock(t *testing.T) {
	svc := NewConsoleServiceMock("Masomo", testutil.NopLogger{})

	tests := []struct {
		name     string
		msg      *core.EmailMessage
		wantSent bool
	}{
		{name: "templated", msg: welcome("jane@test.cd"), wantSent: true},
		{name: "plain body", msg: &core.EmailMessage{To: []mail.Address{{Address: "a@test.cd"}}, BodyStr: "hello"}, wantSent: true},
		{name: "no recipient", msg: &core.EmailMessage{BodyStr: "hello"}},
		{name: "no content", msg: &core.EmailMessage{To: []mail.Address{{Address: "a@test.cd"}}}},
		{name: "unknown template", msg: &core.EmailMessage{To: []mail.Address{{Address: "a@test.cd"}}, TemplateName: "lol"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			SentMessages = nil // reset
			svc.SendMessages(tt.msg)
			if !tt.wantSent {
				assert.Empty(t, SentMessages)
				return
			}
			require.Len(t, SentMessages, 1)
			assert.Equal(t, tt.msg.To, SentMessages[0].To)
		})
	}

	t.Run("rendering", func(t *testing.T) {
		msg := welcome("jane@test.cd")
		require.NoError(t, msg.Render())
		assert.Equal(t, "Hi Jane,\n\nWelcome to Masomo! Log in with jane@test.cd to enroll in a course and start learning.\n\n--\nMasomo\n", msg.TextContent)
		assert.Contains(t, msg.HTMLContent, "<b>jane@test.cd</b>")
	})
}

func TestSendgridService(t *testing.T) {
	var got map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, endpoint, r.URL.Path)
		assert.Equal(t, "Bearer sg-key", r.Header.Get("Authorization"))
		body, _ := io.ReadAll(r.Body)
		assert.NoError(t, json.Unmarshal(body, &got))
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()
	origHost := host
	host = srv.URL
	defer func() { host = origHost }()

	conf := &core.Config{AppName: "Masomo", Email: core.EmailConfig{
		DefaultFromEmail: mail.Address{Name: "Masomo", Address: "no-reply@masomo.cd"},
		SendgridApiKey:   "sg-key",
	}}
	svc := NewSendgridService(conf, testutil.NopLogger{}).(*sendgridService)

	msg := welcome("jane@test.cd")
	require.NoError(t, msg.Render())
	require.NoError(t, svc.send(*msg))

	assert.Equal(t, map[string]interface{}{"name": "Masomo", "email": "no-reply@masomo.cd"}, got["from"])
	pers := got["personalizations"].([]interface{})[0].(map[string]interface{})
	assert.Equal(t, "[Masomo] Welcome aboard", pers["subject"])
	assert.Len(t, got["content"], 2)

	t.Run("error status", func(t *testing.T) {
		failing := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		}))
		defer failing.Close()
		host = failing.URL
		assert.EqualError(t, svc.send(*msg), "sendgrid status 401: ")
	})
}
