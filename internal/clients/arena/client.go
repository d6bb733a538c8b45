package arena

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/CrwnG/DndProyect-sub001/internal/domain/combat"
	dnderr "github.com/CrwnG/DndProyect-sub001/internal/errors"
)

type client struct {
	baseURL    string
	httpClient *http.Client
}

// Config holds configuration for the arena HTTP client
type Config struct {
	BaseURL string

	// HTTPClient is optional; a default with a 30s timeout is used when
	// nil. Per-call deadlines are the caller's job via context.
	HTTPClient *http.Client
}

// New creates an arena gateway client
func New(cfg *Config) (Client, error) {
	if cfg == nil {
		return nil, dnderr.InvalidArgument("cfg cannot be nil")
	}
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, dnderr.InvalidArgument("arena base URL is required")
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}

	return &client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: httpClient,
	}, nil
}

type reachableResponse struct {
	Reachable []combat.Position `json:"reachable"`
}

// GetReachableCells implements Client.GetReachableCells
func (c *client) GetReachableCells(ctx context.Context, combatID, combatantID string) ([]combat.Position, error) {
	if combatID == "" || combatantID == "" {
		return nil, dnderr.InvalidArgument("combat id and combatant id are required")
	}

	path := fmt.Sprintf("/combats/%s/combatants/%s/reachable", combatID, combatantID)
	var out reachableResponse
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out.Reachable, nil
}

type moveRequest struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// MoveCombatant implements Client.MoveCombatant
func (c *client) MoveCombatant(ctx context.Context, combatID, combatantID string, x, y int) (*MoveResult, error) {
	if combatID == "" || combatantID == "" {
		return nil, dnderr.InvalidArgument("combat id and combatant id are required")
	}

	path := fmt.Sprintf("/combats/%s/combatants/%s/move", combatID, combatantID)
	var out MoveResult
	if err := c.doJSON(ctx, http.MethodPost, path, moveRequest{X: x, Y: y}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

type reactionRequest struct {
	Kind            string `json:"kind"`
	TriggerSourceID string `json:"trigger_source_id"`
}

// UseReaction implements Client.UseReaction
func (c *client) UseReaction(ctx context.Context, combatID, reactorID, reactionKind, triggerSourceID string) (*ReactionResult, error) {
	if combatID == "" || reactorID == "" {
		return nil, dnderr.InvalidArgument("combat id and reactor id are required")
	}

	path := fmt.Sprintf("/combats/%s/combatants/%s/reaction", combatID, reactorID)
	body := reactionRequest{Kind: reactionKind, TriggerSourceID: triggerSourceID}
	var out ReactionResult
	if err := c.doJSON(ctx, http.MethodPost, path, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *client) doJSON(ctx context.Context, method, path string, in, out any) error {
	var body *bytes.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return dnderr.Wrap(err, "failed to marshal request body")
		}
		body = bytes.NewReader(data)
	} else {
		body = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return dnderr.Wrap(err, "failed to build request")
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return dnderr.WrapWithCode(err, dnderr.CodeUnavailable, "arena request failed")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return dnderr.Newf(dnderr.CodeUnavailable, "arena returned status %d for %s %s", resp.StatusCode, method, path)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return dnderr.WrapWithCode(err, dnderr.CodeInternal, "failed to decode arena response")
	}
	return nil
}
