package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rushteam/premiumkit/core"
)

func TestKServeClient_PredictV2(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v2/models/premium-rest/versions/3/infer", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"model_name":"premium-rest","outputs":[
			{"name":"aux","data":[0]},
			{"name":"premium","shape":[1,1],"datatype":"FP64","data":[12345.6]}]}`))
	}))
	defer srv.Close()

	c := NewKServeClient(srv.URL, "premium-rest",
		WithKServeVersion("3"),
		WithKServeV2OutputName("premium"),
		WithKServeAuth(&AuthConfig{Type: "bearer", Token: "secret"}),
	)
	resp, err := c.Predict(context.Background(), &core.MLPredictRequest{Instances: [][]float64{{0.1, 0.2, 0.3}}})
	require.NoError(t, err)
	assert.Equal(t, []float64{12345.6}, resp.Predictions)

	inputs := got["inputs"].([]any)
	input := inputs[0].(map[string]any)
	assert.Equal(t, "input0", input["name"])
	assert.Equal(t, []any{1.0, 3.0}, input["shape"])
	assert.Equal(t, []any{0.1, 0.2, 0.3}, input["data"])
}

func TestKServeClient_PredictV1(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/models/premium-young:predict", r.URL.Path)
		var body struct {
			Instances [][]float64 `json:"instances"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Len(t, body.Instances, 1)
		_, _ = w.Write([]byte(`{"predictions":[[7000.9, 0.1]]}`))
	}))
	defer srv.Close()

	c := NewKServeClient(srv.URL, "ignored", WithKServeProtocol(KServeV1))
	resp, err := c.Predict(context.Background(), &core.MLPredictRequest{
		Instances: [][]float64{{1, 2}},
		ModelName: "premium-young",
	})
	require.NoError(t, err)
	assert.Equal(t, []float64{7000.9}, resp.Predictions)
}

func TestKServeClient_Errors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v2/models/down/infer":
			http.Error(w, "model not loaded", http.StatusServiceUnavailable)
		case "/v2/models/empty/infer":
			_, _ = w.Write([]byte(`{"outputs":[]}`))
		case "/v2/models/short/infer":
			_, _ = w.Write([]byte(`{"outputs":[{"name":"o","data":[]}]}`))
		}
	}))
	defer srv.Close()

	req := &core.MLPredictRequest{Instances: [][]float64{{1}}}
	for _, name := range []string{"down", "empty", "short"} {
		t.Run(name, func(t *testing.T) {
			_, err := NewKServeClient(srv.URL, name).Predict(context.Background(), req)
			require.Error(t, err)
			assert.True(t, core.IsUnavailable(err))
		})
	}

	_, err := NewKServeClient(srv.URL, "x").Predict(context.Background(), &core.MLPredictRequest{})
	assert.True(t, core.IsInvalidInput(err))
}

func TestKServeClient_Health(t *testing.T) {
	var ready atomic.Bool
	ready.Store(true)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/v2/health/ready" && ready.Load() {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewKServeClient(srv.URL, "premium")
	require.NoError(t, TestConnection(context.Background(), c))

	ready.Store(false)
	assert.True(t, core.IsUnavailable(c.Health(context.Background())))
	assert.NoError(t, c.Close(context.Background()))
}

func TestNewMLService(t *testing.T) {
	svc, err := NewMLService(&ServiceConfig{
		Type:      ServiceTypeKServeV1,
		Endpoint:  "http://localhost:8000",
		ModelName: "premium",
		Timeout:   2,
		Params:    map[string]any{"v2_input_name": "features"},
	})
	require.NoError(t, err)
	c := svc.(*KServeClient)
	assert.Equal(t, KServeV1, c.Protocol)
	assert.Equal(t, "features", c.V2InputName)

	svc, err = NewMLService(&ServiceConfig{Endpoint: "http://localhost:8000", ModelName: "premium"})
	require.NoError(t, err)
	assert.Equal(t, KServeV2, svc.(*KServeClient).Protocol)

	_, err = NewMLService(&ServiceConfig{Type: "torch_serve", Endpoint: "http://x", ModelName: "m"})
	assert.True(t, core.IsNotSupported(err))

	_, err = NewMLService(&ServiceConfig{ModelName: "m"})
	assert.True(t, core.IsConfigurationError(err))
}
