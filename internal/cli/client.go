// Package cli is the HTTP client behind the mw admin tool. Every call
// authenticates with the shared service token.
package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

type Client struct {
	BaseURL string
	Token   string
	HTTP    *http.Client
}

func NewClient(baseURL, token string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Token:   token,
		HTTP: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (c *Client) EnsurePlayer(ctx context.Context, userID, username string) (map[string]any, error) {
	var out map[string]any
	err := c.jsonRequest(ctx, http.MethodPost, "/v1/players", map[string]any{
		"user_id":  userID,
		"username": username,
	}, &out, "")
	return out, err
}

func (c *Client) Profile(ctx context.Context, userID string) (map[string]any, error) {
	var out map[string]any
	err := c.jsonRequest(ctx, http.MethodGet, "/v1/players/"+url.PathEscape(userID)+"/", nil, &out, "")
	return out, err
}

func (c *Client) Balances(ctx context.Context, userID string) (map[string]any, error) {
	var out map[string]any
	err := c.jsonRequest(ctx, http.MethodGet, "/v1/players/"+url.PathEscape(userID)+"/balances", nil, &out, "")
	return out, err
}

func (c *Client) Transactions(ctx context.Context, userID string, limit int) (map[string]any, error) {
	path := "/v1/players/" + url.PathEscape(userID) + "/transactions"
	if limit > 0 {
		path = fmt.Sprintf("%s?limit=%d", path, limit)
	}
	var out map[string]any
	err := c.jsonRequest(ctx, http.MethodGet, path, nil, &out, "")
	return out, err
}

func (c *Client) Credit(ctx context.Context, userID string, amount int64, pool, kind, idem string) (map[string]any, error) {
	var out map[string]any
	err := c.jsonRequest(ctx, http.MethodPost, "/v1/players/"+url.PathEscape(userID)+"/credit", map[string]any{
		"amount": amount,
		"pool":   pool,
		"kind":   kind,
	}, &out, idem)
	return out, err
}

func (c *Client) BankTransfer(ctx context.Context, userID string, amount int64, from, to, idem string) (map[string]any, error) {
	var out map[string]any
	err := c.jsonRequest(ctx, http.MethodPost, "/v1/players/"+url.PathEscape(userID)+"/bank/transfer", map[string]any{
		"amount": amount,
		"from":   from,
		"to":     to,
	}, &out, idem)
	return out, err
}

func (c *Client) BankUpgrade(ctx context.Context, userID, idem string) (map[string]any, error) {
	var out map[string]any
	err := c.jsonRequest(ctx, http.MethodPost, "/v1/players/"+url.PathEscape(userID)+"/bank/upgrade", map[string]any{}, &out, idem)
	return out, err
}

func (c *Client) BuyCrypto(ctx context.Context, userID, coinID string, amount int64, pool, idem string) (map[string]any, error) {
	var out map[string]any
	err := c.jsonRequest(ctx, http.MethodPost, "/v1/players/"+url.PathEscape(userID)+"/crypto/buy", map[string]any{
		"coin_id": coinID,
		"amount":  amount,
		"pool":    pool,
	}, &out, idem)
	return out, err
}

func (c *Client) SellCrypto(ctx context.Context, userID, coinID string, coinAmount float64, pool, idem string) (map[string]any, error) {
	var out map[string]any
	err := c.jsonRequest(ctx, http.MethodPost, "/v1/players/"+url.PathEscape(userID)+"/crypto/sell", map[string]any{
		"coin_id":     coinID,
		"coin_amount": coinAmount,
		"pool":        pool,
	}, &out, idem)
	return out, err
}

func (c *Client) Coins(ctx context.Context) (map[string]any, error) {
	var out map[string]any
	err := c.jsonRequest(ctx, http.MethodGet, "/v1/coins", nil, &out, "")
	return out, err
}

func (c *Client) Crimes(ctx context.Context) (map[string]any, error) {
	var out map[string]any
	err := c.jsonRequest(ctx, http.MethodGet, "/v1/crimes", nil, &out, "")
	return out, err
}

func (c *Client) CommitCrime(ctx context.Context, userID, crimeID, idem string) (map[string]any, error) {
	var out map[string]any
	err := c.jsonRequest(ctx, http.MethodPost,
		"/v1/players/"+url.PathEscape(userID)+"/crimes/"+url.PathEscape(crimeID), map[string]any{}, &out, idem)
	return out, err
}

func (c *Client) JailStatus(ctx context.Context, userID string) (map[string]any, error) {
	var out map[string]any
	err := c.jsonRequest(ctx, http.MethodGet, "/v1/players/"+url.PathEscape(userID)+"/jail", nil, &out, "")
	return out, err
}

func (c *Client) Sentence(ctx context.Context, userID string, minutes, severity int, crime, idem string) (map[string]any, error) {
	var out map[string]any
	err := c.jsonRequest(ctx, http.MethodPost, "/v1/players/"+url.PathEscape(userID)+"/jail/sentence",
		map[string]any{"minutes": minutes, "severity": severity, "crime": crime}, &out, idem)
	return out, err
}

func (c *Client) Bribe(ctx context.Context, userID, idem string) (map[string]any, error) {
	var out map[string]any
	err := c.jsonRequest(ctx, http.MethodPost, "/v1/players/"+url.PathEscape(userID)+"/jail/bribe", map[string]any{}, &out, idem)
	return out, err
}

func (c *Client) ActionBlocking(ctx context.Context, userID, action string) (map[string]any, error) {
	var out map[string]any
	err := c.jsonRequest(ctx, http.MethodGet,
		"/v1/players/"+url.PathEscape(userID)+"/jail/blocking?action="+url.QueryEscape(action), nil, &out, "")
	return out, err
}

func (c *Client) AssetTemplates(ctx context.Context) (map[string]any, error) {
	var out map[string]any
	err := c.jsonRequest(ctx, http.MethodGet, "/v1/assets/templates", nil, &out, "")
	return out, err
}

func (c *Client) Assets(ctx context.Context, userID string) (map[string]any, error) {
	var out map[string]any
	err := c.jsonRequest(ctx, http.MethodGet, "/v1/players/"+url.PathEscape(userID)+"/assets", nil, &out, "")
	return out, err
}

func (c *Client) PurchaseAsset(ctx context.Context, userID, templateID, method, idem string) (map[string]any, error) {
	var out map[string]any
	err := c.jsonRequest(ctx, http.MethodPost, "/v1/players/"+url.PathEscape(userID)+"/assets/purchase", map[string]any{
		"template_id":    templateID,
		"payment_method": method,
	}, &out, idem)
	return out, err
}

func (c *Client) CollectAssets(ctx context.Context, userID, idem string) (map[string]any, error) {
	var out map[string]any
	err := c.jsonRequest(ctx, http.MethodPost, "/v1/players/"+url.PathEscape(userID)+"/assets/collect", map[string]any{}, &out, idem)
	return out, err
}

func (c *Client) UpgradeAsset(ctx context.Context, userID string, assetID int64, kind, method, idem string) (map[string]any, error) {
	var out map[string]any
	err := c.jsonRequest(ctx, http.MethodPost,
		fmt.Sprintf("/v1/players/%s/assets/%d/upgrade", url.PathEscape(userID), assetID), map[string]any{
			"kind":           kind,
			"payment_method": method,
		}, &out, idem)
	return out, err
}

func (c *Client) jsonRequest(ctx context.Context, method, path string, in any, out any, idem string) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}
	if idem != "" {
		req.Header.Set("Idempotency-Key", idem)
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("api status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
