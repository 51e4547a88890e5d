package notifications

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/miradorstack/aura/internal/catalog"
)

func TestSlackNotifierPostsEscalation(t *testing.T) {
	var got slackMessage
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	s, err := catalog.Default().Lookup("security_vulnerability")
	require.NoError(t, err)

	n := NewSlackNotifier(srv.URL, "#ops", 0)
	require.NoError(t, n.Escalate(context.Background(), Escalation{SessionID: "s-1", Scenario: s}))

	assert.Equal(t, "#ops", got.Channel)
	assert.Contains(t, got.Text, "Escalating to human operators")
	require.Len(t, got.Attachments, 1)
	assert.Equal(t, "danger", got.Attachments[0].Color)
	assert.Equal(t, s.Title, got.Attachments[0].Title)
}

func TestSlackNotifierNon200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	err := NewSlackNotifier(srv.URL, "", 0).Escalate(context.Background(), Escalation{})
	assert.ErrorContains(t, err, "403")
}
