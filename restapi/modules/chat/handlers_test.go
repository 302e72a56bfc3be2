package chat

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/ortelius/media-provisioner/internal/commands"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type echoHandler struct {
	calls int
}

func (h *echoHandler) Handle(_ context.Context, principal int64, text string) commands.Reply {
	h.calls++
	return commands.Reply{Status: commands.StatusHelp, Text: text}
}

const hookSecret = "hook-secret"

func post(t *testing.T, app *fiber.App, body string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/hook", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(SecretHeader, hookSecret)
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp
}

func TestWebhook_IgnoresUpdatesWithoutText(t *testing.T) {
	handler := &echoHandler{}
	app := fiber.New()
	app.Post("/hook", Webhook(handler, hookSecret, zaptest.NewLogger(t)))

	for _, body := range []string{
		`{"update_id":1}`,
		`{"update_id":2,"message":{"chat":{"id":1},"from":{"id":5}}}`,
		`{"update_id":3,"message":{"chat":{"id":1},"text":"/adduser bob"}}`,
	} {
		resp := post(t, app, body)
		assert.Equal(t, http.StatusOK, resp.StatusCode, body)
	}
	assert.Zero(t, handler.calls)
}

func TestWebhook_RepliesInline(t *testing.T) {
	handler := &echoHandler{}
	app := fiber.New()
	app.Post("/hook", Webhook(handler, hookSecret, zaptest.NewLogger(t)))

	resp := post(t, app, `{"update_id":1,"message":{"chat":{"id":9},"from":{"id":5},"text":"hello"}}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.JSONEq(t, `{"method":"sendMessage","chat_id":9,"text":"hello"}`, string(raw))

	assert.Equal(t, http.StatusBadRequest, post(t, app, `[`).StatusCode)
}

func TestWebhook_RejectsWithoutSecret(t *testing.T) {
	handler := &echoHandler{}
	update := `{"update_id":1,"message":{"chat":{"id":9},"from":{"id":5},"text":"/deluser victim"}}`

	unset := fiber.New()
	unset.Post("/hook", Webhook(handler, "", zaptest.NewLogger(t)))
	req := httptest.NewRequest(http.MethodPost, "/hook", strings.NewReader(update))
	req.Header.Set("Content-Type", "application/json")
	resp, err := unset.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, "empty secret accepts nothing")

	app := fiber.New()
	app.Post("/hook", Webhook(handler, hookSecret, zaptest.NewLogger(t)))
	req = httptest.NewRequest(http.MethodPost, "/hook", strings.NewReader(update))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(SecretHeader, "wrong")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	assert.Zero(t, handler.calls)
}
