package postmark

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

const defaultBaseURL = "https://api.postmarkapp.com"

// Client sends transactional email through the Postmark API.
type Client struct {
	serverToken string
	baseURL     string
	client      *http.Client
}

func NewClient(serverToken string) *Client {
	return &Client{
		serverToken: serverToken,
		baseURL:     defaultBaseURL,
		client:      &http.Client{},
	}
}

// Attachment is a base64-encoded file attached to an outbound message.
type Attachment struct {
	Name        string `json:"Name"`
	Content     string `json:"Content"`
	ContentType string `json:"ContentType"`
}

// Message is one outbound email in Postmark's wire format.
type Message struct {
	From        string       `json:"From"`
	To          string       `json:"To"`
	Subject     string       `json:"Subject"`
	TextBody    string       `json:"TextBody,omitempty"`
	HTMLBody    string       `json:"HtmlBody,omitempty"`
	Attachments []Attachment `json:"Attachments,omitempty"`
}

// SendEmail delivers one message. Any non-200 response is an error.
func (c *Client) SendEmail(ctx context.Context, msg Message) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/email", bytes.NewBuffer(body))
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Postmark-Server-Token", c.serverToken)

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("Postmark API error: status %d, body: %s", resp.StatusCode, string(respBody))
	}
	return nil
}
