package submission

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2/clientcredentials"
)

var ErrRemoteRejected = errors.New("remote endpoint rejected submission")

type ClientConfig struct {
	URL     string
	Timeout time.Duration

	// Optional OAuth2 client credentials; plain HTTP when TokenURL is empty.
	TokenURL     string
	ClientID     string
	ClientSecret string
}

// Client posts payloads as JSON to the spreadsheet web app.
type Client struct {
	url  string
	http *http.Client
}

func NewClient(cfg ClientConfig) *Client {
	var h *http.Client
	if cfg.TokenURL != "" {
		cc := clientcredentials.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			TokenURL:     cfg.TokenURL,
		}
		h = cc.Client(context.Background())
	} else {
		h = &http.Client{}
	}
	if cfg.Timeout > 0 {
		h.Timeout = cfg.Timeout
	}
	return &Client{url: cfg.URL, http: h}
}

func (c *Client) Post(ctx context.Context, p Payload) (Response, error) {
	if c.url == "" {
		return Response{}, errors.New("submission url not configured")
	}
	body, err := json.Marshal(p)
	if err != nil {
		return Response{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return Response{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Cache-Control", "no-cache")

	res, err := c.http.Do(req)
	if err != nil {
		return Response{}, err
	}
	defer res.Body.Close()
	raw, _ := io.ReadAll(io.LimitReader(res.Body, 64<<10))
	if res.StatusCode/100 != 2 {
		return Response{}, fmt.Errorf("post submission: %s", res.Status)
	}

	var out Response
	if len(bytes.TrimSpace(raw)) > 0 {
		if err := json.Unmarshal(raw, &out); err != nil {
			// Apps Script web apps sometimes answer with plain text; 2xx is enough.
			return Response{Status: "ok", Message: strings.TrimSpace(string(raw))}, nil
		}
	}
	switch strings.ToLower(out.Status) {
	case "error", "failed", "failure":
		return out, fmt.Errorf("%w: %s", ErrRemoteRejected, out.Message)
	}
	return out, nil
}
