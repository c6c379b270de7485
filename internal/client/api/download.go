package api

import (
	"context"
	"fmt"
	"io"
	"net/http"
)

// maxTranscriptSize caps how much of a transcript is read into memory.
const maxTranscriptSize = 16 << 20

// DownloadTranscript fetches a presigned transcript URL. The bearer token is
// not sent: the URL carries its own signature.
func (c *Client) DownloadTranscript(ctx context.Context, link string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, link, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, classify(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download failed: %s", resp.Status)
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxTranscriptSize))
}
