package email

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/duedate/reminder/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResendSender_Send(t *testing.T) {
	var (
		gotAuth string
		gotPath string
		gotBody map[string]interface{}
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"49a3999c-0ce1-4ea6-ab68-afcd6dc2e794"}`))
	}))
	defer srv.Close()

	sender, err := NewResendSender(ResendConfig{
		APIKey:      "re_test",
		FromAddress: "reminders@example.com",
		FromName:    "Reminder System",
		BaseURL:     srv.URL + "/",
	})
	require.NoError(t, err)

	id, err := sender.Send(context.Background(), Message{
		To:       "asha@acme.test",
		ToName:   "Asha Rao",
		Subject:  "GST filing due 2024-01-10",
		HTMLBody: "<p>Hi Asha</p>",
	})
	require.NoError(t, err)

	assert.Equal(t, "49a3999c-0ce1-4ea6-ab68-afcd6dc2e794", id)
	assert.Equal(t, "Bearer re_test", gotAuth)
	assert.Equal(t, "/emails", gotPath)
	assert.Equal(t, "Reminder System <reminders@example.com>", gotBody["from"])
	assert.Equal(t, []interface{}{"asha@acme.test"}, gotBody["to"])
	assert.Equal(t, "GST filing due 2024-01-10", gotBody["subject"])
	assert.Equal(t, "<p>Hi Asha</p>", gotBody["html"])
}

func TestResendSender_SendRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"statusCode":422,"name":"validation_error","message":"Invalid to field"}`))
	}))
	defer srv.Close()

	sender, err := NewResendSender(ResendConfig{APIKey: "re_test", FromAddress: "a@example.com", BaseURL: srv.URL + "/"})
	require.NoError(t, err)

	_, err = sender.Send(context.Background(), Message{To: "not-an-address", Subject: "s", HTMLBody: "b"})
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), "resend:"))
}

func TestNewResendSender_Validation(t *testing.T) {
	_, err := NewResendSender(ResendConfig{FromAddress: "a@example.com"})
	assert.Error(t, err)

	_, err = NewResendSender(ResendConfig{APIKey: "re_test"})
	assert.Error(t, err)
}

func TestNew_SelectsProvider(t *testing.T) {
	ctx := context.Background()

	s, err := New(ctx, config.EmailConfig{Provider: "resend", APIKey: "re_test", FromAddress: "a@example.com"})
	require.NoError(t, err)
	assert.IsType(t, &ResendSender{}, s)

	s, err = New(ctx, config.EmailConfig{Provider: "sendgrid", APIKey: "SG.test", FromAddress: "a@example.com"})
	require.NoError(t, err)
	assert.IsType(t, &SendGridSender{}, s)

	s, err = New(ctx, config.EmailConfig{
		Provider:    "ses",
		FromAddress: "a@example.com",
		SES:         config.SESEmailConfig{Region: "eu-west-1", AccessKeyID: "AKIA", SecretAccessKey: "secret"},
	})
	require.NoError(t, err)
	assert.IsType(t, &SESSender{}, s)

	s, err = New(ctx, config.EmailConfig{Provider: "sendgrid", FromAddress: "a@example.com"})
	assert.Error(t, err)
	assert.Nil(t, s)

	_, err = New(ctx, config.EmailConfig{Provider: "pigeon"})
	assert.ErrorIs(t, err, ErrUnknownProvider)
}

func TestBuildMIME(t *testing.T) {
	html := buildMIME("Reminders <r@example.com>", "a@example.com", Message{Subject: "Due soon", HTMLBody: "<p>x</p>"})
	assert.Contains(t, html, "From: Reminders <r@example.com>\r\n")
	assert.Contains(t, html, "To: a@example.com\r\n")
	assert.Contains(t, html, "Subject: Due soon\r\n")
	assert.Contains(t, html, "Content-Type: text/html; charset=UTF-8\r\n\r\n<p>x</p>")

	multipart := buildMIME("r@example.com", "a@example.com", Message{Subject: "s", HTMLBody: "<p>x</p>", TextBody: "x"})
	assert.Contains(t, multipart, "multipart/alternative")
	assert.Contains(t, multipart, "--boundary_reminder_email--")

	encoded := buildMIME("r@example.com", "a@example.com", Message{Subject: "Rappel échéance", TextBody: "x"})
	assert.Contains(t, encoded, "Subject: =?utf-8?q?")
	assert.Contains(t, encoded, "Content-Type: text/plain")
}

func TestFormatAddress(t *testing.T) {
	assert.Equal(t, "a@example.com", formatAddress("", "a@example.com"))
	assert.Equal(t, "Team <a@example.com>", formatAddress("Team", "a@example.com"))
}

func TestTextFromHTML(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain text", "  Hi Acme, due 2024-01-10 ", "Hi Acme, due 2024-01-10"},
		{"paragraphs", "<p>Hi Acme,</p><p>GST filing is due on <b>2024-01-10</b>.</p>", "Hi Acme,\nGST filing is due on 2024-01-10."},
		{"line breaks and entities", "Dear A &amp; B<br/>Regards<BR>Team", "Dear A & B\nRegards\nTeam"},
		{"collapses blank runs", "<div>one</div><br><br><br><div>two</div>", "one\n\ntwo"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TextFromHTML(tt.in))
		})
	}
}
