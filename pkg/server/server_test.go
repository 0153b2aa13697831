package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mymmrac/telego"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Saterlix/Nova/pkg/bridge"
	"github.com/Saterlix/Nova/pkg/leads"
)

type fakeWebhook struct {
	updates []telego.Update
	err     error
}

func (f *fakeWebhook) HandleUpdate(_ context.Context, update telego.Update) error {
	f.updates = append(f.updates, update)
	return f.err
}

type fakeBridge struct {
	polled  []string
	batch   []bridge.Message
	sent    []string
	sendErr error
}

func (f *fakeBridge) Poll(_ context.Context, sessionID string) []bridge.Message {
	f.polled = append(f.polled, sessionID)
	if f.batch == nil {
		return []bridge.Message{}
	}
	return f.batch
}

func (f *fakeBridge) Send(_ context.Context, text string) error {
	if f.sendErr != nil {
		return f.sendErr
	}
	f.sent = append(f.sent, text)
	return nil
}

type fakeRelay struct {
	subs   []leads.Submission
	errors map[string]string
}

func (f *fakeRelay) Submit(_ context.Context, sub leads.Submission) map[string]string {
	f.subs = append(f.subs, sub)
	return f.errors
}

func newTestServer(webhook WebhookHandler, chatBridge ChatBridge, leadRelay LeadRelay) *httptest.Server {
	return httptest.NewServer(New("127.0.0.1:0", webhook, chatBridge, leadRelay, nil).Router())
}

func decodeBody(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
	resp.Body.Close()
}

func TestHealthz(t *testing.T) {
	ts := newTestServer(nil, nil, nil)
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]string
	decodeBody(t, resp, &body)
	assert.Equal(t, "ok", body["status"])
}

func TestWebhookAcknowledgesUpdate(t *testing.T) {
	webhook := &fakeWebhook{}
	ts := newTestServer(webhook, nil, nil)
	defer ts.Close()

	payload := `{"update_id": 42, "message": {"message_id": 7, "text": "/start", "chat": {"id": 111}}}`
	resp, err := http.Post(ts.URL+"/bot/webhook", "application/json", strings.NewReader(payload))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]bool
	decodeBody(t, resp, &body)
	assert.True(t, body["ok"])

	require.Len(t, webhook.updates, 1)
	assert.Equal(t, 42, webhook.updates[0].UpdateID)
}

func TestWebhookRejectsMalformedPayload(t *testing.T) {
	webhook := &fakeWebhook{}
	ts := newTestServer(webhook, nil, nil)
	defer ts.Close()

	resp, err := http.Post(ts.URL+"/bot/webhook", "application/json", strings.NewReader("{not json"))
	require.NoError(t, err)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)

	var body map[string]string
	decodeBody(t, resp, &body)
	assert.Equal(t, "Internal Server Error", body["error"])
	assert.Empty(t, webhook.updates)
}

func TestWebhookHandlerFailure(t *testing.T) {
	webhook := &fakeWebhook{err: errors.New("boom")}
	ts := newTestServer(webhook, nil, nil)
	defer ts.Close()

	resp, err := http.Post(ts.URL+"/bot/webhook", "application/json", strings.NewReader(`{"update_id": 1}`))
	require.NoError(t, err)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}

func TestWebhookUnconfigured(t *testing.T) {
	ts := newTestServer(nil, nil, nil)
	defer ts.Close()

	resp, err := http.Post(ts.URL+"/bot/webhook", "application/json", strings.NewReader(`{"update_id": 1}`))
	require.NoError(t, err)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)

	var body map[string]string
	decodeBody(t, resp, &body)
	assert.Contains(t, body["error"], "configuration missing")
}

func TestPollReturnsBatch(t *testing.T) {
	chatBridge := &fakeBridge{batch: []bridge.Message{
		{ID: 9, Text: "Hello from staff", Date: 1700000000, From: "NOVA Team"},
	}}
	ts := newTestServer(nil, chatBridge, nil)
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/chat/poll?sessionId=sess_abc123")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string][]bridge.Message
	decodeBody(t, resp, &body)
	require.Len(t, body["updates"], 1)
	assert.Equal(t, "Hello from staff", body["updates"][0].Text)
	assert.Equal(t, []string{"sess_abc123"}, chatBridge.polled)
}

func TestPollWithoutSessionID(t *testing.T) {
	chatBridge := &fakeBridge{}
	ts := newTestServer(nil, chatBridge, nil)
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/chat/poll")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string][]bridge.Message
	decodeBody(t, resp, &body)
	assert.NotNil(t, body["updates"])
	assert.Empty(t, body["updates"])
	assert.Empty(t, chatBridge.polled, "upstream must not be hit without a session id")
}

func TestPollUnconfigured(t *testing.T) {
	ts := newTestServer(nil, nil, nil)
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/chat/poll?sessionId=sess_abc123")
	require.NoError(t, err)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}

func TestSendRelaysText(t *testing.T) {
	chatBridge := &fakeBridge{}
	ts := newTestServer(nil, chatBridge, nil)
	defer ts.Close()

	resp, err := http.Post(ts.URL+"/chat/send", "application/json", strings.NewReader(`{"text": "need help"}`))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]bool
	decodeBody(t, resp, &body)
	assert.True(t, body["success"])
	assert.Equal(t, []string{"need help"}, chatBridge.sent)
}

func TestSendRejectsEmptyText(t *testing.T) {
	chatBridge := &fakeBridge{}
	ts := newTestServer(nil, chatBridge, nil)
	defer ts.Close()

	resp, err := http.Post(ts.URL+"/chat/send", "application/json", strings.NewReader(`{"text": ""}`))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Empty(t, chatBridge.sent)
}

func TestSendUpstreamFailure(t *testing.T) {
	chatBridge := &fakeBridge{sendErr: errors.New("telegram: 502")}
	ts := newTestServer(nil, chatBridge, nil)
	defer ts.Close()

	resp, err := http.Post(ts.URL+"/chat/send", "application/json", strings.NewReader(`{"text": "hi"}`))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
}

func TestLeadsAccepted(t *testing.T) {
	relay := &fakeRelay{}
	ts := newTestServer(nil, nil, relay)
	defer ts.Close()

	payload := `{"name": "Jane", "phone": "+1234567890", "company": "Acme", "type": "site"}`
	resp, err := http.Post(ts.URL+"/api/leads", "application/json", strings.NewReader(payload))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]any
	decodeBody(t, resp, &body)
	assert.Equal(t, true, body["success"])

	require.Len(t, relay.subs, 1)
	assert.Equal(t, "Jane", relay.subs[0].Name)
}

func TestLeadsValidationErrors(t *testing.T) {
	relay := &fakeRelay{errors: map[string]string{"phone": "Enter a valid phone number"}}
	ts := newTestServer(nil, nil, relay)
	defer ts.Close()

	payload := `{"name": "Jane", "phone": "123", "company": "Acme"}`
	resp, err := http.Post(ts.URL+"/api/leads", "application/json", strings.NewReader(payload))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var body struct {
		Success bool              `json:"success"`
		Errors  map[string]string `json:"errors"`
	}
	decodeBody(t, resp, &body)
	assert.False(t, body.Success)
	assert.Equal(t, "Enter a valid phone number", body.Errors["phone"])
}
