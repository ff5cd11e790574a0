package scoring

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/OFFIS-RIT/claimnet/pkg/claims"
	csvloader "github.com/OFFIS-RIT/claimnet/pkg/loader/csv"
	"github.com/OFFIS-RIT/claimnet/pkg/logger"

	"golang.org/x/sync/errgroup"
)

// Artifact fetches, labelled like their endpoints in metrics.
const (
	endpointExplanations = "inference:explanations"
	endpointReport       = "inference:report"
	endpointPredictions  = "inference:predictions"
)

// InferenceURLs are the artifact locations returned by /inference_graph,
// resolved against the backend base URL.
type InferenceURLs struct {
	Predictions  string `json:"predictions_url"`
	Explanations string `json:"explanations_url"`
	Report       string `json:"report_url"`
}

// FlexString accepts a JSON string or number; claim ids and predictions come
// back as either.
type FlexString string

func (s *FlexString) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	switch {
	case trimmed == "null":
		*s = ""
	case strings.HasPrefix(trimmed, `"`):
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*s = FlexString(v)
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("expected string or number, got %s", trimmed)
		}
		*s = FlexString(n.String())
	}
	return nil
}

type ExplainerResults struct {
	ImportantEdges    json.RawMessage `json:"important_edges"`
	ImportantFeatures json.RawMessage `json:"important_features"`
}

type ExplanationSchema struct {
	ReasoningTrace   []string         `json:"reasoning_trace"`
	ExplainerResults ExplainerResults `json:"explainer_results"`
}

// Explanation is the model's account of one claim prediction.
type Explanation struct {
	ClaimID    FlexString        `json:"claim_id"`
	Prediction FlexString        `json:"prediction"`
	Confidence float64           `json:"confidence"`
	Schema     ExplanationSchema `json:"schema"`
	Narrative  string            `json:"narrative"`
}

type InferenceResult struct {
	URLs         InferenceURLs `json:"urls"`
	Explanations []Explanation `json:"explanations"`
	Report       string        `json:"report"`
	Predictions  *claims.Table `json:"predictions"`
}

// InferenceGraph uploads a claims CSV to /inference_graph and downloads the
// three artifacts it produces.
func (c *Client) InferenceGraph(ctx context.Context, filename string, content []byte) (*InferenceResult, error) {
	body, contentType, err := multipartFile(filename, "text/csv", content)
	if err != nil {
		return nil, fmt.Errorf("failed to encode upload: %w", err)
	}

	resp, err := c.do(ctx, request{
		endpoint:    EndpointInferenceGraph,
		method:      http.MethodPost,
		url:         c.resolve(EndpointInferenceGraph),
		contentType: contentType,
		body:        body,
	})
	if err != nil {
		return nil, err
	}

	var urls InferenceURLs
	if err := json.Unmarshal(resp, &urls); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadResponse, err)
	}
	if urls.Predictions == "" || urls.Explanations == "" || urls.Report == "" {
		return nil, fmt.Errorf("%w: missing artifact url", ErrBadResponse)
	}
	urls.Predictions = c.resolve(urls.Predictions)
	urls.Explanations = c.resolve(urls.Explanations)
	urls.Report = c.resolve(urls.Report)

	result := &InferenceResult{URLs: urls}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		raw, err := c.get(gctx, endpointExplanations, urls.Explanations)
		if err != nil {
			return err
		}
		var explanations []Explanation
		if err := json.Unmarshal(raw, &explanations); err != nil {
			return fmt.Errorf("%w: explanations: %v", ErrBadResponse, err)
		}
		result.Explanations = explanations
		return nil
	})
	g.Go(func() error {
		raw, err := c.get(gctx, endpointReport, urls.Report)
		if err != nil {
			return err
		}
		result.Report = string(raw)
		return nil
	})
	g.Go(func() error {
		raw, err := c.get(gctx, endpointPredictions, urls.Predictions)
		if err != nil {
			return err
		}
		table, err := csvloader.ParseTable(raw)
		if err != nil {
			return fmt.Errorf("%w: predictions: %v", ErrBadResponse, err)
		}
		result.Predictions = table
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	logger.Debug("[Scoring] Inference completed", "explanations", len(result.Explanations), "predictions", result.Predictions.Len())
	return result, nil
}

func (c *Client) get(ctx context.Context, endpoint, url string) ([]byte, error) {
	return c.do(ctx, request{
		endpoint: endpoint,
		method:   http.MethodGet,
		url:      url,
	})
}
