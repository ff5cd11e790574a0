package scoring

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/OFFIS-RIT/claimnet/pkg/claims"
	csvloader "github.com/OFFIS-RIT/claimnet/pkg/loader/csv"
)

// Columns of the batch predictions CSV.
const (
	ColPredictedFraud     = "predicted_fraud"
	ColPredictedFraudType = "predicted_fraud_type"
	benignFraudType       = "benign"
)

type BatchResult struct {
	PredictionsCSV []byte
	Summary        BatchSummary
}

type FraudTypeCount struct {
	FraudType string `json:"fraud_type"`
	Count     int    `json:"count"`
}

// BatchSummary aggregates a predictions CSV. FraudTypes leaves out the benign
// type and is ordered by count, largest first.
type BatchSummary struct {
	TotalRows         int              `json:"total_rows"`
	PredictedFraud    int              `json:"predicted_fraud"`
	PredictedNotFraud int              `json:"predicted_not_fraud"`
	FraudTypes        []FraudTypeCount `json:"fraud_types"`
}

type batchResponse struct {
	PredictionsCSVB64 string `json:"predictions_csv_b64"`
}

// BatchScore uploads a csv or parquet file to /batch_score and summarises
// the predictions it returns.
func (c *Client) BatchScore(ctx context.Context, filename string, content []byte) (*BatchResult, error) {
	body, contentType, err := multipartFile(filename, "", content)
	if err != nil {
		return nil, fmt.Errorf("failed to encode upload: %w", err)
	}

	resp, err := c.do(ctx, request{
		endpoint:    EndpointBatchScore,
		method:      http.MethodPost,
		url:         c.resolve(EndpointBatchScore),
		contentType: contentType,
		body:        body,
	})
	if err != nil {
		return nil, err
	}

	var decoded batchResponse
	if err := json.Unmarshal(resp, &decoded); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadResponse, err)
	}
	if decoded.PredictionsCSVB64 == "" {
		return nil, fmt.Errorf("%w: missing predictions_csv_b64", ErrBadResponse)
	}
	csvBytes, err := base64.StdEncoding.DecodeString(decoded.PredictionsCSVB64)
	if err != nil {
		return nil, fmt.Errorf("%w: predictions_csv_b64: %v", ErrBadResponse, err)
	}

	table, err := csvloader.ParseTable(csvBytes)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadResponse, err)
	}
	summary, err := Summarize(table)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadResponse, err)
	}

	return &BatchResult{PredictionsCSV: csvBytes, Summary: summary}, nil
}

// Summarize counts rows, flagged rows and fraud types of a predictions table.
// Missing predicted_fraud cells count as not fraud.
func Summarize(table *claims.Table) (BatchSummary, error) {
	if _, ok := table.Column(ColPredictedFraud); !ok {
		return BatchSummary{}, fmt.Errorf("%w: %s", claims.ErrMissingColumn, ColPredictedFraud)
	}

	summary := BatchSummary{TotalRows: table.Len()}
	counts := make(map[string]int)
	for i := 0; i < table.Len(); i++ {
		if isFlagged(table.Value(i, ColPredictedFraud)) {
			summary.PredictedFraud++
		}
		fraudType := strings.TrimSpace(table.Value(i, ColPredictedFraudType))
		if claims.IsMissing(fraudType) || fraudType == benignFraudType {
			continue
		}
		counts[fraudType]++
	}
	summary.PredictedNotFraud = summary.TotalRows - summary.PredictedFraud

	summary.FraudTypes = make([]FraudTypeCount, 0, len(counts))
	for fraudType, count := range counts {
		summary.FraudTypes = append(summary.FraudTypes, FraudTypeCount{FraudType: fraudType, Count: count})
	}
	sort.Slice(summary.FraudTypes, func(i, j int) bool {
		a, b := summary.FraudTypes[i], summary.FraudTypes[j]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		return a.FraudType < b.FraudType
	})

	return summary, nil
}

func isFlagged(value string) bool {
	v, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	return err == nil && v == 1
}
