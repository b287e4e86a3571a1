package network

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

type payload struct {
	Name string `json:"name"`
}

func parsePayload(data []byte) (payload, error) {
	var p payload
	if err := json.Unmarshal(data, &p); err != nil {
		return payload{}, err
	}
	if p.Name == "" {
		return payload{}, &DecodeError{Expected: `object with "name"`, Actual: string(data)}
	}
	return p, nil
}

func TestLoad_FetchesAndParses(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("X-Token"); got != "secret" {
			t.Errorf("X-Token = %q, want secret", got)
		}
		w.Write([]byte(`{"name":"fog"}`))
	}))
	defer srv.Close()

	req := Request[payload]{
		URL:    srv.URL,
		Header: http.Header{"X-Token": []string{"secret"}},
		Parse:  parsePayload,
	}
	got, err := Load(context.Background(), NewClient(srv.Client()), req)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got.Name != "fog" {
		t.Fatalf("name = %q, want fog", got.Name)
	}
}

func TestLoad_StatusFailureIsFetchError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	defer srv.Close()

	_, err := Load(context.Background(), NewClient(srv.Client()), Request[payload]{URL: srv.URL, Parse: parsePayload})
	var fetchErr *FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("error = %v, want *FetchError", err)
	}
	if fetchErr.Status != http.StatusForbidden {
		t.Fatalf("status = %d, want %d", fetchErr.Status, http.StatusForbidden)
	}
}

func TestLoad_TransportFailureIsFetchError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // refuse connections

	_, err := Load(context.Background(), NewClient(nil), Request[payload]{URL: srv.URL, Parse: parsePayload})
	var fetchErr *FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("error = %v, want *FetchError", err)
	}
}

func TestLoad_ShapeMismatchIsDecodeError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"other":"field"}`))
	}))
	defer srv.Close()

	_, err := Load(context.Background(), NewClient(srv.Client()), Request[payload]{URL: srv.URL, Parse: parsePayload})
	var decodeErr *DecodeError
	if !errors.As(err, &decodeErr) {
		t.Fatalf("error = %v, want *DecodeError", err)
	}
	if decodeErr.Expected == "" || decodeErr.Actual == "" {
		t.Fatalf("decode error should carry expected and actual shape, got %+v", decodeErr)
	}
}

func TestLoad_UndecodableBodyIsWrappedDecodeError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	}))
	defer srv.Close()

	_, err := Load(context.Background(), NewClient(srv.Client()), Request[payload]{URL: srv.URL, Parse: parsePayload})
	var decodeErr *DecodeError
	if !errors.As(err, &decodeErr) {
		t.Fatalf("error = %v, want *DecodeError", err)
	}
	if decodeErr.Err == nil {
		t.Fatal("wrapped decode error should keep the underlying cause")
	}
}

func TestLoad_CancelledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Load(ctx, NewClient(srv.Client()), Request[payload]{URL: srv.URL, Parse: parsePayload})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("error = %v, want context.Canceled through the wrapper", err)
	}
}
