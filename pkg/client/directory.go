package client

import (
	"context"
	"fmt"
	"net/http"
)

// DirectoryClient resolves party display names from the profile directory
// service. Lookups are enrichment only; callers are expected to tolerate
// failures.
type DirectoryClient struct {
	http *HttpClient
}

func NewDirectoryClient(baseURL string) *DirectoryClient {
	return &DirectoryClient{
		http: NewHttpClient(baseURL),
	}
}

type partyResponse struct {
	Data struct {
		ID          string `json:"id"`
		DisplayName string `json:"display_name"`
	} `json:"data"`
}

func (c *DirectoryClient) DisplayName(ctx context.Context, partyID string) (string, error) {
	resp, err := c.http.GET(ctx, "/api/v1/parties/"+partyID)
	if err != nil {
		return "", err
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("directory lookup for party %s returned status %d", partyID, resp.StatusCode)
	}

	var party partyResponse
	if err := resp.DecodeJSON(&party); err != nil {
		return "", fmt.Errorf("failed to decode directory response: %w", err)
	}

	return party.Data.DisplayName, nil
}
