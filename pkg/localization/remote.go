package localization

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/medilink-health/triage/pkg/gateway/httpclient"
	"golang.org/x/oauth2/clientcredentials"
)

type RemoteConfig struct {
	BaseURL      string
	TokenURL     string
	ClientID     string
	ClientSecret string
	Timeout      time.Duration
	Retries      int
}

// Remote calls an external translation API:
//
//	POST {BaseURL}/translate {"q": [...], "source": "english", "target": "hindi"}
//	-> {"translations": [...]}
type Remote struct {
	client  *http.Client
	baseURL string
	retries int
}

func NewRemote(cfg RemoteConfig) (*Remote, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("translator base URL required")
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 5 * time.Second
	}

	var client *http.Client
	if cfg.TokenURL != "" {
		cc := &clientcredentials.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			TokenURL:     cfg.TokenURL,
		}
		client = httpclient.New(cfg.Timeout, cc.TokenSource(context.Background()))
	} else {
		client = httpclient.New(cfg.Timeout, nil)
	}

	return NewRemoteWithClient(client, cfg.BaseURL, cfg.Retries), nil
}

func NewRemoteWithClient(client *http.Client, baseURL string, retries int) *Remote {
	return &Remote{
		client:  client,
		baseURL: strings.TrimRight(baseURL, "/"),
		retries: retries,
	}
}

type translateRequest struct {
	Q      []string `json:"q"`
	Source Language `json:"source"`
	Target Language `json:"target"`
}

type translateResponse struct {
	Translations []string `json:"translations"`
}

func (r *Remote) Translate(ctx context.Context, text string, target Language) (string, error) {
	if text == "" || target.IsSource() {
		return text, nil
	}
	out, err := r.TranslateMany(ctx, []string{text}, target)
	if err != nil {
		return "", err
	}
	return out[0], nil
}

func (r *Remote) TranslateMany(ctx context.Context, texts []string, target Language) ([]string, error) {
	if target.IsSource() || len(texts) == 0 {
		return append([]string(nil), texts...), nil
	}

	body, err := json.Marshal(translateRequest{Q: texts, Source: Source, Target: target})
	if err != nil {
		return nil, err
	}

	var decoded translateResponse
	err = httpclient.Retry(ctx, r.retries, 100*time.Millisecond, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL+"/translate", bytes.NewReader(body))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := r.client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			io.Copy(io.Discard, resp.Body)
			return &httpclient.StatusError{StatusCode: resp.StatusCode}
		}
		return json.NewDecoder(resp.Body).Decode(&decoded)
	})
	if err != nil {
		return nil, fmt.Errorf("remote translate: %w", err)
	}

	if len(decoded.Translations) != len(texts) {
		return nil, fmt.Errorf("remote translate: expected %d translations, got %d", len(texts), len(decoded.Translations))
	}
	for i, translated := range decoded.Translations {
		if translated == "" {
			decoded.Translations[i] = texts[i]
		}
	}
	return decoded.Translations, nil
}
