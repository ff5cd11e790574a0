package scoring

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/OFFIS-RIT/claimnet/pkg/claims"
)

// SingleResult is the backend verdict for one claim. Both parts are passed
// through untouched for display.
type SingleResult struct {
	Predictions json.RawMessage `json:"predictions"`
	Evaluation  json.RawMessage `json:"evaluation"`
}

// ScoreSingle posts one claim with its derived fields to /score_single.
func (c *Client) ScoreSingle(ctx context.Context, payload claims.ClaimPayload) (*SingleResult, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal claim: %w", err)
	}

	resp, err := c.do(ctx, request{
		endpoint:    EndpointScoreSingle,
		method:      http.MethodPost,
		url:         c.resolve(EndpointScoreSingle),
		contentType: "application/json",
		body:        body,
	})
	if err != nil {
		return nil, err
	}

	var result SingleResult
	if err := json.Unmarshal(resp, &result); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadResponse, err)
	}
	if len(result.Predictions) == 0 {
		return nil, fmt.Errorf("%w: missing predictions", ErrBadResponse)
	}
	return &result, nil
}
