package n8n

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSend(t *testing.T) {
	var captured map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"success","response":{"reply":"done"}}`))
	}))
	defer server.Close()

	client, err := NewClient(ClientOptions{WebhookUrl: server.URL})
	require.NoError(t, err)

	result, err := client.Send(context.Background(), Event{
		Agent:     "SOL",
		Message:   "new subaccount provisioned",
		SessionId: "session-1",
		RequestId: "req-1",
		Extra:     map[string]any{"locationId": "loc_42"},
	})
	require.NoError(t, err)
	require.Equal(t, "success", result.Status)
	require.JSONEq(t, `{"reply":"done"}`, string(result.Response))

	require.Equal(t, "SOL", captured["agent"])
	require.Equal(t, "session-1", captured["sessionId"])
	require.Equal(t, "req-1", captured["requestId"])
	require.Equal(t, "loc_42", captured["locationId"])

	_, err = time.Parse(time.RFC3339, captured["timestamp"].(string))
	require.NoError(t, err)
}

func TestSendPlainTextReply(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("Workflow was started"))
	}))
	defer server.Close()

	client, err := NewClient(ClientOptions{WebhookUrl: server.URL})
	require.NoError(t, err)

	result, err := client.Send(context.Background(), Event{Agent: "SOL"})
	require.NoError(t, err)
	require.Equal(t, "ok", result.Status)
	require.Equal(t, "Workflow was started", string(result.Response))
}

func TestSendErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("workflow crashed"))
	}))
	defer server.Close()

	client, err := NewClient(ClientOptions{WebhookUrl: server.URL})
	require.NoError(t, err)

	_, err = client.Send(context.Background(), Event{Agent: "SOL"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "workflow crashed")
}

func TestMissingWebhookUrl(t *testing.T) {
	_, err := NewClient(ClientOptions{})
	require.Error(t, err)
}

func TestMissingAgent(t *testing.T) {
	client, err := NewClient(ClientOptions{WebhookUrl: "http://localhost:0"})
	require.NoError(t, err)

	_, err = client.Send(context.Background(), Event{Message: "no agent"})
	require.Error(t, err)
}
