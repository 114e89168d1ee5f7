// Package spoc provides a client for the SPOC course-content API used by the
// web video player to report viewing progress.
package spoc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"spoc-progress/pkg/httpclient"
	"spoc-progress/pkg/interfaces"
	"spoc-progress/pkg/logging"
	"spoc-progress/pkg/types"
)

// Endpoint paths relative to the API base URL.
const (
	PathAddRecord      = "/kcnr/addNrydjlb"
	PathSaveUser       = "/zxyh/saveYh"
	PathUpdateOnline   = "/kcnr/updKczxrs"
	PathUpdateProgress = "/kcnr/updKcnrSfydNew"
)

// StatusError is returned when the server answers with anything but 200.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d: %s", e.Code, e.Body)
}

type addRecordRequest struct {
	ContentID   string `json:"kcnrid"`
	CourseID    string `json:"kcid"`
	ContentType string `json:"nrlx"`
}

type onlineCountRequest struct {
	CourseID string `json:"kcid"`
}

// Client is a SPOC API client.
type Client struct {
	baseURL    string
	origin     string
	httpClient interfaces.HTTPClient
	log        *logging.Logger
}

// NewClient creates a new SPOC client. baseURL has no trailing slash.
func NewClient(baseURL, origin string, httpClient interfaces.HTTPClient, log *logging.Logger) *Client {
	return &Client{
		baseURL:    baseURL,
		origin:     origin,
		httpClient: httpClient,
		log:        log.WithComponent("spoc"),
	}
}

// AddRecord registers that the learner opened the content item.
func (c *Client) AddRecord(ctx context.Context, s types.Session, contentType string) bool {
	if contentType == "" {
		contentType = types.DefaultContentType
	}
	body := addRecordRequest{
		ContentID:   s.ContentID,
		CourseID:    s.CourseID,
		ContentType: contentType,
	}
	return c.report(PathAddRecord, c.post(ctx, s, PathAddRecord, body))
}

// SaveUser refreshes the learner presence signal.
func (c *Client) SaveUser(ctx context.Context, s types.Session) bool {
	query := url.Values{"yhdm": []string{s.LearnerID}}
	return c.report(PathSaveUser, c.do(ctx, s, http.MethodGet, PathSaveUser+"?"+query.Encode(), nil))
}

// UpdateOnlineCount bumps the course's live-viewer counter.
func (c *Client) UpdateOnlineCount(ctx context.Context, s types.Session) bool {
	return c.report(PathUpdateOnline, c.post(ctx, s, PathUpdateOnline, onlineCountRequest{CourseID: s.CourseID}))
}

// UpdateProgress reports a playback position.
func (c *Client) UpdateProgress(ctx context.Context, s types.Session, percent int, elapsed float64, fullyRead string) bool {
	body := types.ProgressUpdate{
		Percent:     percent,
		ContentID:   s.ContentID,
		CourseID:    s.CourseID,
		FullyRead:   fullyRead,
		Elapsed:     elapsed,
		DirectoryID: s.DirectoryID,
	}
	err := c.post(ctx, s, PathUpdateProgress, body)
	if err == nil {
		c.log.Debug("progress updated", "percent", percent, "elapsed", fmt.Sprintf("%.2f", elapsed), "sfyd", fullyRead)
	}
	return c.report(PathUpdateProgress, err)
}

// report logs a failed call and collapses the outcome to a bool.
func (c *Client) report(endpoint string, err error) bool {
	if err != nil {
		c.log.Warn("request failed", "endpoint", endpoint, "error", err)
		return false
	}
	return true
}

func (c *Client) post(ctx context.Context, s types.Session, path string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}
	return c.do(ctx, s, http.MethodPost, path, body)
}

func (c *Client) do(ctx context.Context, s types.Session, method, path string, body []byte) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	applyHeaders(req, c.origin, s.Token, s.Cookie)

	log := c.log.CallLogger(method, path).WithURL(req.URL.String())
	log.Debug("sending request", "headers", httpclient.RedactedHeaders(req.Header))

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	log.WithDuration(time.Since(start)).Debug("response received", "status", resp.StatusCode)

	if resp.StatusCode != http.StatusOK {
		return &StatusError{Code: resp.StatusCode, Body: string(respBody)}
	}
	return nil
}

var _ interfaces.ProgressAPI = (*Client)(nil)
