package api

import (
	"context"
	"net/http"

	"github.com/doeshing/widgera/internal/domain"
)

// Submit implements ports.PromptService.
func (c *Client) Submit(ctx context.Context, req domain.SubmissionRequest) (domain.SubmissionResponse, error) {
	var resp domain.SubmissionResponse
	if err := c.postJSON(ctx, pathPrompt, req, &resp); err != nil {
		return domain.SubmissionResponse{}, err
	}
	return resp, nil
}

// History implements ports.HistoryFetcher.
func (c *Client) History(ctx context.Context) ([]domain.HistoryRecord, error) {
	var records []domain.HistoryRecord
	if err := c.do(ctx, http.MethodGet, pathHistory, "", nil, &records); err != nil {
		return nil, err
	}
	if records == nil {
		records = []domain.HistoryRecord{}
	}
	return records, nil
}
