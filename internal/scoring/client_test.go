package scoring

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/OFFIS-RIT/claimnet/pkg/claims"
)

func noBackoff(int) time.Duration { return 0 }

func newTestClient(t *testing.T, handler http.Handler, retries int) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(NewClientParams{
		BaseURL: srv.URL + "/",
		Retries: retries,
		Backoff: noBackoff,
	})
}

func TestScoreSingle(t *testing.T) {
	var received map[string]any
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != EndpointScoreSingle {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("unexpected content type %q", ct)
		}
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			t.Errorf("decode body: %v", err)
		}
		io.WriteString(w, `{"predictions":{"fraud":1,"fraud_type":"upcoding"},"evaluation":{"score":0.91}}`)
	}), 1)

	form := claims.ClaimForm{ClaimID: "C1", ClaimMonth: 5, BilledAmount: 200, PaidAmount: 100}
	result, err := client.ScoreSingle(context.Background(), form.Payload())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if received["claim_id"] != "C1" || received["claim_quarter"] != float64(2) || received["claim_ratio"] != float64(2) {
		t.Fatalf("unexpected payload %v", received)
	}
	if string(result.Predictions) != `{"fraud":1,"fraud_type":"upcoding"}` {
		t.Fatalf("unexpected predictions %s", result.Predictions)
	}
	if string(result.Evaluation) != `{"score":0.91}` {
		t.Fatalf("unexpected evaluation %s", result.Evaluation)
	}
}

func TestScoreSingle_MissingPredictions(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"evaluation":{}}`)
	}), 3)

	_, err := client.ScoreSingle(context.Background(), claims.ClaimPayload{})
	if !errors.Is(err, ErrBadResponse) {
		t.Fatalf("expected ErrBadResponse, got %v", err)
	}
}

func TestClient_Retries(t *testing.T) {
	tests := []struct {
		name      string
		statuses  []int
		retries   int
		wantCalls int32
		wantErr   int
	}{
		{"server errors retried until success", []int{500, 503, 200}, 3, 3, 0},
		{"client error not retried", []int{422, 200}, 3, 1, 422},
		{"retries exhausted", []int{502, 502, 502, 200}, 3, 3, 502},
		{"single attempt", []int{500, 200}, 1, 1, 500},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls atomic.Int32
			client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				n := calls.Add(1)
				status := tt.statuses[n-1]
				if status != http.StatusOK {
					http.Error(w, "backend says no", status)
					return
				}
				io.WriteString(w, `{"predictions":[1],"evaluation":null}`)
			}), tt.retries)

			_, err := client.ScoreSingle(context.Background(), claims.ClaimPayload{})
			if got := calls.Load(); got != tt.wantCalls {
				t.Fatalf("expected %d calls, got %d", tt.wantCalls, got)
			}
			if tt.wantErr == 0 {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			var backendErr *BackendError
			if !errors.As(err, &backendErr) {
				t.Fatalf("expected BackendError, got %v", err)
			}
			if backendErr.Status != tt.wantErr || backendErr.Endpoint != EndpointScoreSingle {
				t.Fatalf("unexpected backend error %+v", backendErr)
			}
			if backendErr.Body != "backend says no" {
				t.Fatalf("expected body to be kept, got %q", backendErr.Body)
			}
		})
	}
}

func TestClient_TransportErrorRetried(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	client := NewClient(NewClientParams{BaseURL: url, Retries: 2, Backoff: noBackoff})
	_, err := client.ScoreSingle(context.Background(), claims.ClaimPayload{})
	if err == nil {
		t.Fatal("expected error for unreachable backend")
	}
	var backendErr *BackendError
	if errors.As(err, &backendErr) {
		t.Fatalf("expected transport error, got %v", backendErr)
	}
	if !strings.Contains(err.Error(), "unreachable") {
		t.Fatalf("unexpected error %v", err)
	}
}

func TestBatchScore(t *testing.T) {
	predictions := "claim_id,predicted_fraud,predicted_fraud_type\n" +
		"C1,1,upcoding\n" +
		"C2,0,benign\n" +
		"C3,1,phantom_billing\n" +
		"C4,1,upcoding\n"

	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != EndpointBatchScore {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			t.Errorf("expected file field: %v", err)
			http.Error(w, "no file", http.StatusBadRequest)
			return
		}
		defer file.Close()
		content, _ := io.ReadAll(file)
		if header.Filename != "claims.csv" || string(content) != "claim_id\nC1\n" {
			t.Errorf("unexpected upload %q: %q", header.Filename, content)
		}
		json.NewEncoder(w).Encode(map[string]string{
			"predictions_csv_b64": base64.StdEncoding.EncodeToString([]byte(predictions)),
		})
	}), 1)

	result, err := client.BatchScore(context.Background(), "claims.csv", []byte("claim_id\nC1\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(result.PredictionsCSV) != predictions {
		t.Fatalf("unexpected csv %q", result.PredictionsCSV)
	}
	s := result.Summary
	if s.TotalRows != 4 || s.PredictedFraud != 3 || s.PredictedNotFraud != 1 {
		t.Fatalf("unexpected summary %+v", s)
	}
	want := []FraudTypeCount{{"upcoding", 2}, {"phantom_billing", 1}}
	if len(s.FraudTypes) != len(want) {
		t.Fatalf("unexpected fraud types %+v", s.FraudTypes)
	}
	for i := range want {
		if s.FraudTypes[i] != want[i] {
			t.Fatalf("fraud types = %+v, want %+v", s.FraudTypes, want)
		}
	}
}

func TestBatchScore_BadPayload(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not json", `<html>`},
		{"missing field", `{}`},
		{"bad base64", `{"predictions_csv_b64":"!!!"}`},
		{"no prediction column", `{"predictions_csv_b64":"` + base64.StdEncoding.EncodeToString([]byte("a,b\n1,2\n")) + `"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				io.WriteString(w, tt.body)
			}), 3)
			_, err := client.BatchScore(context.Background(), "claims.csv", []byte("x"))
			if !errors.Is(err, ErrBadResponse) {
				t.Fatalf("expected ErrBadResponse, got %v", err)
			}
		})
	}
}

func TestSummarize(t *testing.T) {
	table := claims.NewTable(
		[]string{"claim_id", "predicted_fraud", "predicted_fraud_type"},
		[][]string{
			{"C1", "1.0", "b_type"},
			{"C2", "", ""},
			{"C3", "1", "a_type"},
			{"C4", "0", "benign"},
		},
	)
	s, err := Summarize(table)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.TotalRows != 4 || s.PredictedFraud != 2 || s.PredictedNotFraud != 2 {
		t.Fatalf("unexpected summary %+v", s)
	}
	// equal counts are ordered by name
	if len(s.FraudTypes) != 2 || s.FraudTypes[0].FraudType != "a_type" || s.FraudTypes[1].FraudType != "b_type" {
		t.Fatalf("unexpected fraud types %+v", s.FraudTypes)
	}

	if _, err := Summarize(claims.NewTable([]string{"claim_id"}, nil)); !errors.Is(err, claims.ErrMissingColumn) {
		t.Fatalf("expected ErrMissingColumn, got %v", err)
	}
}
