package api

import (
	"context"

	"github.com/nhle/adchat/internal/model"
)

// ChatRequest is the body sent to the chat endpoint.
type ChatRequest struct {
	Message string `json:"message"`
}

// ChatResponse is the answer returned by the chat endpoint. Sources is
// only populated when the backend answered from its retrieval index.
type ChatResponse struct {
	Response string                 `json:"response"`
	Sources  []model.SourceCitation `json:"sources,omitempty"`
}

// SendMessage posts a user message to /api/chat and returns the bot
// answer together with any retrieved-document citations.
func (c *Client) SendMessage(
	ctx context.Context,
	message string,
) (*ChatResponse, error) {
	var resp ChatResponse
	err := c.Post(ctx, "/api/chat", ChatRequest{Message: message}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}
