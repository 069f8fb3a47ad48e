package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rushteam/premiumkit/core"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o600))
	return p
}

// writeArtifacts 写一套最小的线性模型制品，返回 manifest 路径
func writeArtifacts(t *testing.T, dir string) string {
	t.Helper()
	writeFile(t, dir, "scaler.json", `{"name":"scaler","cols_to_scale":["age"],"scaler":{"type":"minmax","min":[0],"scale":[1]}}`)
	writeFile(t, dir, "young.json", `{"name":"model_young","feature_names":["age","income_lakhs"],"intercept":1000,"coefficients":[10,1]}`)
	writeFile(t, dir, "rest.json", `{"name":"model_rest","feature_names":["age","income_lakhs"],"intercept":2000,"coefficients":[20,2]}`)
	return writeFile(t, dir, "manifest.yaml", `
version: v-test
bands:
  - name: young
    scaler: scaler.json
    model: {type: linear, path: young.json}
  - name: rest
    scaler: scaler.json
    model: {type: linear, path: rest.json}
`)
}

func applicant(age float64) core.ApplicantInput {
	return core.ApplicantInput{
		core.FieldAge:                age,
		core.FieldNumberOfDependants: float64(0),
		core.FieldIncomeLakhs:        float64(6),
		core.FieldGeneticalRisk:      float64(0),
		core.FieldMedicalHistory:     "No Disease",
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("PREMIUMKIT_MANIFEST", "/srv/manifest.yaml")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "/srv/manifest.yaml", cfg.Manifest)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, CacheNone, cfg.Cache.Type)
	assert.Equal(t, 32*1024*1024, cfg.Cache.SizeBytes)
	assert.Equal(t, 3600, cfg.Cache.TTLSeconds)
	assert.Equal(t, "premiumkit", cfg.Metrics.Namespace)
	assert.Equal(t, 10, cfg.ScalerTimeout)
}

func TestLoad_FileAndEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "premiumkit.yaml", `
manifest: /data/manifest.yaml
logging:
  level: debug
  format: console
cache:
  type: memory
  size_bytes: 1048576
  ttl_seconds: 60
metrics:
  namespace: insurance
`)
	t.Setenv("PREMIUMKIT_CACHE_TTL_SECONDS", "120")
	t.Setenv("PREMIUMKIT_LOGGING_LEVEL", "warn")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/data/manifest.yaml", cfg.Manifest)
	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.Equal(t, "console", cfg.Logging.Format)
	assert.Equal(t, CacheMemory, cfg.Cache.Type)
	assert.Equal(t, 1048576, cfg.Cache.SizeBytes)
	assert.Equal(t, 120, cfg.Cache.TTLSeconds)
	assert.Equal(t, "insurance", cfg.Metrics.Namespace)
}

func TestLoad_Invalid(t *testing.T) {
	dir := t.TempDir()

	_, err := Load(filepath.Join(dir, "missing.yaml"))
	assert.True(t, core.IsConfigurationError(err))

	// 缺 manifest
	_, err = Load(writeFile(t, dir, "a.yaml", "cache: {type: memory}\n"))
	assert.True(t, core.IsConfigurationError(err))
	assert.Contains(t, err.Error(), "manifest is required")

	_, err = Load(writeFile(t, dir, "b.yaml", "manifest: m.yaml\ncache: {type: etcd}\n"))
	assert.True(t, core.IsConfigurationError(err))
	assert.Contains(t, err.Error(), `unsupported cache.type "etcd"`)

	_, err = Load(writeFile(t, dir, "c.yaml", "manifest: m.yaml\nlogging: {format: xml}\n"))
	assert.True(t, core.IsConfigurationError(err))
}

func TestValidate_RedisRequiresAddr(t *testing.T) {
	cfg := &Config{Manifest: "m.yaml", Logging: LoggingConfig{Format: "json"}, Cache: CacheConfig{Type: CacheRedis}}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cache.addr")
}

func TestBuild_MemoryCache(t *testing.T) {
	dir := t.TempDir()
	cfg := &Config{
		Manifest: writeArtifacts(t, dir),
		Logging:  LoggingConfig{Level: "error", Format: "json", Service: "test"},
		Cache:    CacheConfig{Type: CacheMemory, SizeBytes: 1024 * 1024, TTLSeconds: 60},
		Metrics:  MetricsConfig{Namespace: "test"},
	}
	promReg := prometheus.NewRegistry()

	svc, log, closeFn, err := Build(context.Background(), cfg, promReg)
	require.NoError(t, err)
	require.NotNil(t, log)
	defer func() { assert.NoError(t, closeFn(context.Background())) }()

	// young: 1000 + 10*20 + 1*6
	p, err := svc.PredictDetail(context.Background(), applicant(20))
	require.NoError(t, err)
	assert.Equal(t, "young", p.Band)
	assert.Equal(t, 1206, p.Value)
	assert.False(t, p.Cached)

	p, err = svc.PredictDetail(context.Background(), applicant(20))
	require.NoError(t, err)
	assert.True(t, p.Cached)

	// rest: 2000 + 20*40 + 2*6
	v, err := svc.Predict(context.Background(), applicant(40))
	require.NoError(t, err)
	assert.Equal(t, 2812, v)

	count, err := testutil.GatherAndCount(promReg, "test_predictions_total")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestBuild_RedisCache(t *testing.T) {
	mr := miniredis.RunT(t)
	dir := t.TempDir()
	cfg := &Config{
		Manifest: writeArtifacts(t, dir),
		Logging:  LoggingConfig{Level: "error", Format: "json"},
		Cache:    CacheConfig{Type: CacheRedis, Addr: mr.Addr(), KeyPrefix: "pk:", TTLSeconds: 30},
	}

	svc, _, closeFn, err := Build(context.Background(), cfg, nil)
	require.NoError(t, err)
	defer func() { _ = closeFn(context.Background()) }()

	_, err = svc.Predict(context.Background(), applicant(30))
	require.NoError(t, err)
	assert.Len(t, mr.Keys(), 1)
	assert.Contains(t, mr.Keys()[0], "pk:premium:v-test:")
}

func TestBuild_Errors(t *testing.T) {
	dir := t.TempDir()

	_, _, _, err := Build(context.Background(), &Config{
		Manifest: filepath.Join(dir, "absent.yaml"),
		Logging:  LoggingConfig{Level: "info", Format: "json"},
	}, nil)
	assert.True(t, core.IsConfigurationError(err))

	// redis 不可达
	_, _, _, err = Build(context.Background(), &Config{
		Manifest: writeArtifacts(t, dir),
		Logging:  LoggingConfig{Level: "info", Format: "json"},
		Cache:    CacheConfig{Type: CacheRedis, Addr: "127.0.0.1:1"},
	}, nil)
	require.Error(t, err)
	assert.Equal(t, core.ErrorCodeUnavailable, core.ErrorCode(err))
}
