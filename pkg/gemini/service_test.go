package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// newTestService points a Service at a stub generateContent endpoint that
// replies with the given candidate text.
func newTestService(t *testing.T, reply string, status int) (*Service, *string) {
	t.Helper()
	var lastPrompt string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Contains(t, r.URL.Path, "/models/"+model+":generateContent")
		require.Equal(t, "test-key", r.URL.Query().Get("key"))

		var payload struct {
			Contents []struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"contents"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		lastPrompt = payload.Contents[0].Parts[0].Text

		w.Header().Set("Content-Type", "application/json")
		if status != http.StatusOK {
			w.WriteHeader(status)
			fmt.Fprint(w, `{"error":{"message":"quota exceeded"}}`)
			return
		}
		body, err := json.Marshal(map[string]interface{}{
			"candidates": []map[string]interface{}{
				{"content": map[string]interface{}{
					"parts": []map[string]string{{"text": reply}},
				}},
			},
		})
		require.NoError(t, err)
		w.Write(body)
	}))
	t.Cleanup(srv.Close)

	svc := NewService("test-key")
	svc.baseURL = srv.URL
	return svc, &lastPrompt
}

func TestClassifyEmailParsesJSONWithProse(t *testing.T) {
	reply := "Sure! Here is the JSON:\n```json\n{\"category\": \"Work\", \"summary\": \"An invoice.\"}\n```"
	svc, prompt := newTestService(t, reply, http.StatusOK)

	result, err := svc.ClassifyEmail(context.Background(), "Invoice", "Pay now")
	require.NoError(t, err)
	require.Equal(t, "work", result.Category)
	require.Equal(t, "An invoice.", result.Summary)
	require.Contains(t, *prompt, "Subject: Invoice")
	require.Contains(t, *prompt, "productivity, scam, newsletters, work, other")
}

func TestClassifyEmailUnknownCategoryFallsBackToOther(t *testing.T) {
	svc, _ := newTestService(t, `{"category": "finance", "summary": "Money stuff."}`, http.StatusOK)

	result, err := svc.ClassifyEmail(context.Background(), "s", "b")
	require.NoError(t, err)
	require.Equal(t, "other", result.Category)
	require.Equal(t, "Money stuff.", result.Summary)
}

func TestClassifyEmailNonJSONReplyDegrades(t *testing.T) {
	svc, _ := newTestService(t, strings.Repeat("The email looks fine. ", 10), http.StatusOK)

	result, err := svc.ClassifyEmail(context.Background(), "s", "b")
	require.NoError(t, err)
	require.Equal(t, "other", result.Category)
	require.True(t, strings.HasPrefix(result.Summary, "Summary unavailable. Content: "))
	require.True(t, strings.HasSuffix(result.Summary, "..."))
}

func TestClassifyEmailAPIErrorSurfaces(t *testing.T) {
	svc, _ := newTestService(t, "", http.StatusTooManyRequests)

	_, err := svc.ClassifyEmail(context.Background(), "s", "b")
	require.Error(t, err)
	require.Contains(t, err.Error(), "Gemini API error")
}

func TestGenerateDigest(t *testing.T) {
	reply := `{
		"narrative_summary": "A busy week.",
		"category_counts": {"work": 3, "newsletters": 1},
		"highlights": ["Job offer from X"],
		"clusters": {"Recruiters": ["a", "b"]}
	}`
	svc, prompt := newTestService(t, reply, http.StatusOK)

	data, err := svc.GenerateDigest(context.Background(), []DigestEmail{
		{Subject: "Offer", Category: "work"},
	})
	require.NoError(t, err)
	require.Equal(t, "A busy week.", data.NarrativeSummary)
	require.Equal(t, 3, data.CategoryCounts["work"])
	require.Equal(t, []string{"Job offer from X"}, data.Highlights)
	require.Contains(t, *prompt, `"subject": "Offer"`)
}

func TestGenerateDigestNonJSONReplyFails(t *testing.T) {
	svc, _ := newTestService(t, "I could not produce a digest.", http.StatusOK)

	_, err := svc.GenerateDigest(context.Background(), []DigestEmail{{Subject: "s"}})
	require.Error(t, err)
	require.Contains(t, err.Error(), "failed to parse digest response")
}

func TestChat(t *testing.T) {
	svc, prompt := newTestService(t, `You got one invoice: "Invoice" (ID: e1)`, http.StatusOK)

	answer, err := svc.Chat(context.Background(), "any invoices?", "Email: \"Invoice\" (ID: e1)")
	require.NoError(t, err)
	require.Contains(t, answer, "(ID: e1)")
	require.Contains(t, *prompt, "User query: any invoices?")
	require.Contains(t, *prompt, `Email: "Invoice" (ID: e1)`)
}

func TestExtractJSON(t *testing.T) {
	require.Equal(t, []byte(`{"a":1}`), extractJSON("prefix {\"a\":1} suffix"))
	require.Equal(t, []byte("no braces here"), extractJSON("no braces here"))
}
