package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// model used for classification, chat and digest generation
const model = "gemini-2.0-flash"

// Service is a thin client for the Gemini generateContent REST endpoint.
type Service struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

func NewService(apiKey string) *Service {
	return &Service{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		client:  &http.Client{},
	}
}

// Classification is the constrained JSON shape the classification prompt
// asks the model to produce.
type Classification struct {
	Category string `json:"category"`
	Summary  string `json:"summary"`
}

// DigestEmail is the flattened view of one email fed into the digest prompt.
type DigestEmail struct {
	Subject   string `json:"subject"`
	TextBody  string `json:"text_body"`
	FromEmail string `json:"from_email"`
	FromName  string `json:"from_name"`
	Category  string `json:"category"`
	Date      string `json:"date"`
}

// DigestData is the structured weekly report the digest prompt asks for.
type DigestData struct {
	NarrativeSummary string              `json:"narrative_summary"`
	CategoryCounts   map[string]int      `json:"category_counts"`
	Highlights       []string            `json:"highlights"`
	Clusters         map[string][]string `json:"clusters"`
}

var validCategories = map[string]bool{
	"productivity": true,
	"scam":         true,
	"newsletters":  true,
	"work":         true,
	"other":        true,
}

// ClassifyEmail asks the model for a category plus a 1-2 sentence summary.
// A reply that cannot be parsed as the constrained JSON degrades to the
// "other" category with a placeholder summary; only transport/API failures
// surface as errors.
func (s *Service) ClassifyEmail(ctx context.Context, subject, body string) (Classification, error) {
	prompt := fmt.Sprintf(`Categorize this email and summarize it in 1-2 sentences.
Categories must be exactly one of these: productivity, scam, newsletters, work, other.

Subject: %s
Body: %s

Respond as JSON: {
  "category": <category>,
  "summary": <summary>
}`, subject, body)

	text, err := s.generate(ctx, prompt)
	if err != nil {
		return Classification{}, err
	}

	var result Classification
	if err := json.Unmarshal(extractJSON(text), &result); err != nil {
		if text == "" {
			return Classification{Category: "other", Summary: "No summary available"}, nil
		}
		return Classification{
			Category: "other",
			Summary:  fmt.Sprintf("Summary unavailable. Content: %s...", truncate(text, 100)),
		}, nil
	}

	result.Category = strings.ToLower(result.Category)
	if !validCategories[result.Category] {
		result.Category = "other"
	}
	return result, nil
}

// GenerateDigest asks the model for a structured weekly report over the
// given emails.
func (s *Service) GenerateDigest(ctx context.Context, emails []DigestEmail) (*DigestData, error) {
	emailData, err := json.MarshalIndent(emails, "", "  ")
	if err != nil {
		return nil, err
	}

	prompt := fmt.Sprintf(`Using the last 7 days of email data for a user:

1. Summarize the week's emails like a friendly newsletter:
Make it story-style (e.g., "This week, the user received 12 emails. Notably, a few newsletters stood out...")
Highlight important or repeated senders, newsletter topics, or patterns.

2. Pie chart data output:
Return category counts in the JSON.

3. Bullet points of highlights:
3-5 quick highlights (e.g., "Received a job offer from X", "Got 2 new newsletters on AI").

4. Mind palace idea (optional cluster suggestions):
Group emails by topics or sender (e.g., "All newsletters from Substack", "3 emails from recruiter@example.com").

Output Format: Return structured JSON output like:
{
  "narrative_summary": "...",
  "category_counts": {
    "productivity": x,
    "scam": y,
    "newsletters": z,
    "work": w,
    "other": v
  },
  "highlights": [
    "First highlight",
    "Second highlight",
    "Third highlight"
  ],
  "clusters": {
    "Cluster Name 1": ["Item 1", "Item 2"],
    "Cluster Name 2": ["Item 3", "Item 4"]
  }
}

Here are the emails:
%s`, string(emailData))

	text, err := s.generate(ctx, prompt)
	if err != nil {
		return nil, err
	}

	var result DigestData
	if err := json.Unmarshal(extractJSON(text), &result); err != nil {
		return nil, fmt.Errorf("failed to parse digest response: %w", err)
	}
	return &result, nil
}

// Chat answers a free-text query using the caller-supplied email context.
func (s *Service) Chat(ctx context.Context, query, emailContext string) (string, error) {
	prompt := fmt.Sprintf(`You are an email assistant that helps users understand and interact with their emails.
The user has the following emails (most recent first):

%s

Based on this data, answer the user's query. When referring to emails, primarily use the email subject in quotes,
followed by the Email ID in parentheses for reference, like this: "Subject of the email" (ID: 123)

If the query asks for a summary of newsletters, provide a concise overview of newsletter emails.
When mentioning emails, always include both the subject (in quotes) and the ID (in parentheses).
Keep your answers concise and useful.

User query: %s`, emailContext, query)

	return s.generate(ctx, prompt)
}

// generate calls generateContent and returns the first candidate's text.
func (s *Service) generate(ctx context.Context, prompt string) (string, error) {
	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", s.baseURL, model, s.apiKey)

	payload := map[string]interface{}{
		"contents": []map[string]interface{}{
			{"parts": []map[string]string{{"text": prompt}}},
		},
	}

	body, _ := json.Marshal(payload)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("Gemini API error: %s", string(respBody))
	}

	var result struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
	}
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", err
	}

	if len(result.Candidates) == 0 || len(result.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("no content returned")
	}
	return strings.TrimSpace(result.Candidates[0].Content.Parts[0].Text), nil
}

// extractJSON locates the first '{' .. last '}' span so prose around the
// model's JSON reply does not break parsing.
func extractJSON(text string) []byte {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start >= 0 && end > start {
		return []byte(text[start : end+1])
	}
	return []byte(text)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
