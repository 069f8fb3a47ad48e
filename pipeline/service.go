package pipeline

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/rushteam/premiumkit/core"
	"github.com/rushteam/premiumkit/feature"
	"github.com/rushteam/premiumkit/model"
	"github.com/rushteam/premiumkit/pkg/logger"
	"github.com/rushteam/premiumkit/registry"
)

// Prepared 是预处理结果：模型期望顺序的特征向量
type Prepared struct {
	Band         string
	Model        string
	FeatureNames []string
	Vector       []float64
}

// Prediction 是完整预测结果
type Prediction struct {
	Band   string  `json:"band"`
	Model  string  `json:"model"`
	Score  float64 `json:"score"`
	Value  int     `json:"value"`
	Cached bool    `json:"-"`
}

// Service 保费预测服务（PredictionService）。
//
// validate -> normalize -> encode -> assemble -> scale -> route -> reorder -> predict -> 截断取整
//
// 所有制品在 registry 加载后只读，Service 无锁并发安全。
type Service struct {
	registry *registry.Registry
	prepare  *Pipeline
	predict  *Pipeline

	logger   *zap.Logger
	metrics  *Metrics
	cache    core.Store
	cacheTTL int
}

// Option 配置 Service
type Option func(*options)

type options struct {
	logger     *zap.Logger
	metrics    *Metrics
	cache      core.Store
	cacheTTL   int
	normalizer *feature.RiskNormalizer
	encoder    *feature.CategoricalEncoder
	assembler  *feature.Assembler
	schema     map[string]any
}

// WithLogger 设置日志
func WithLogger(l *zap.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithMetrics 设置指标
func WithMetrics(m *Metrics) Option {
	return func(o *options) { o.metrics = m }
}

// WithCache 开启预测结果缓存，ttlSeconds<=0 表示不过期
func WithCache(store core.Store, ttlSeconds int) Option {
	return func(o *options) {
		o.cache = store
		o.cacheTTL = ttlSeconds
	}
}

// WithRiskNormalizer 替换病史风险表
func WithRiskNormalizer(n *feature.RiskNormalizer) Option {
	return func(o *options) { o.normalizer = n }
}

// WithEncoder 替换类别编码定义
func WithEncoder(e *feature.CategoricalEncoder) Option {
	return func(o *options) { o.encoder = e }
}

// WithAssembler 替换特征组装（例如换 schema）
func WithAssembler(a *feature.Assembler) Option {
	return func(o *options) { o.assembler = a }
}

// WithInputSchema 替换输入契约
func WithInputSchema(schema map[string]any) Option {
	return func(o *options) { o.schema = schema }
}

// NewService 创建预测服务
func NewService(reg *registry.Registry, opts ...Option) (*Service, error) {
	if reg == nil {
		return nil, core.NewConfigurationError(core.ModulePipeline, "registry is required")
	}
	o := &options{
		normalizer: feature.NewDefaultRiskNormalizer(),
		encoder:    feature.NewDefaultCategoricalEncoder(),
		assembler:  feature.NewDefaultAssembler(),
		schema:     InputSchema,
	}
	for _, opt := range opts {
		opt(o)
	}

	validator, err := NewValidator(o.schema)
	if err != nil {
		return nil, err
	}
	router := model.NewRouter(reg)

	prepare := &Pipeline{Nodes: []Node{
		validateNode{v: validator},
		normalizeNode{n: o.normalizer},
		encodeNode{e: o.encoder},
		assembleNode{a: o.assembler},
		scaleNode{s: feature.NewScalingRouter(reg)},
		routeNode{reg: reg, router: router},
		reorderNode{router: router},
	}}
	predict := &Pipeline{Nodes: append(append([]Node(nil), prepare.Nodes...), predictNode{})}

	return &Service{
		registry: reg,
		prepare:  prepare,
		predict:  predict,
		logger:   logger.OrNop(o.logger),
		metrics:  o.metrics,
		cache:    o.cache,
		cacheTTL: o.cacheTTL,
	}, nil
}

// Predict 返回截断取整后的保费预测
func (s *Service) Predict(ctx context.Context, input core.ApplicantInput) (int, error) {
	p, err := s.PredictDetail(ctx, input)
	if err != nil {
		return 0, err
	}
	return p.Value, nil
}

// Preprocess 执行到重排为止，返回送入模型的向量
func (s *Service) Preprocess(ctx context.Context, input core.ApplicantInput) (*Prepared, error) {
	st := &State{Input: input}
	if err := s.prepare.Run(ctx, st); err != nil {
		return nil, err
	}
	return &Prepared{
		Band:         st.Band,
		Model:        st.Model.Name(),
		FeatureNames: st.Model.FeatureNames(),
		Vector:       st.Vector,
	}, nil
}

// PredictDetail 返回分段、原始分数和截断后的预测值
func (s *Service) PredictDetail(ctx context.Context, input core.ApplicantInput) (*Prediction, error) {
	start := time.Now()

	key, cacheable := s.cacheKey(input)
	if cacheable {
		if p, ok := s.cached(ctx, key); ok {
			s.observe(p.Band, start, nil)
			return p, nil
		}
	}

	st := &State{Input: input}
	if err := s.predict.Run(ctx, st); err != nil {
		s.observe(st.Band, start, err)
		return nil, err
	}
	value, err := truncate(st.Score)
	if err != nil {
		err = fmt.Errorf("%s: %w", KindPredict, err)
		s.observe(st.Band, start, err)
		return nil, err
	}

	p := &Prediction{Band: st.Band, Model: st.Model.Name(), Score: st.Score, Value: value}
	s.logger.Debug("prediction",
		zap.String("band", p.Band),
		zap.String("model", p.Model),
		zap.Float64("age", st.Age),
		zap.Float64("score", p.Score),
		zap.Int("value", p.Value),
	)
	if cacheable {
		s.store(ctx, key, p)
	}
	s.observe(p.Band, start, nil)
	return p, nil
}

// truncate 向零截断
func truncate(score float64) (int, error) {
	if math.IsNaN(score) || math.IsInf(score, 0) {
		return 0, core.NewDomainError(core.ModuleModel, core.ErrorCodeInternalError,
			fmt.Sprintf("model returned non-finite score %v", score))
	}
	return int(math.Trunc(score)), nil
}

// cacheKey 输入的规范 JSON（encoding/json 对 map 按 key 排序）加制品版本的 SHA-256
func (s *Service) cacheKey(input core.ApplicantInput) (string, bool) {
	if s.cache == nil {
		return "", false
	}
	data, err := json.Marshal(input)
	if err != nil {
		return "", false
	}
	sum := sha256.Sum256(data)
	return "premium:" + s.registry.Version() + ":" + hex.EncodeToString(sum[:]), true
}

func (s *Service) cached(ctx context.Context, key string) (*Prediction, bool) {
	data, err := s.cache.Get(ctx, key)
	if err != nil {
		if !core.IsStoreNotFound(err) {
			s.logger.Warn("prediction cache get failed", zap.String("store", s.cache.Name()), zap.Error(err))
		}
		return nil, false
	}
	var p Prediction
	if err := json.Unmarshal(data, &p); err != nil {
		s.logger.Warn("prediction cache entry corrupted", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	p.Cached = true
	if s.metrics != nil {
		s.metrics.CacheHits.Inc()
	}
	return &p, true
}

func (s *Service) store(ctx context.Context, key string, p *Prediction) {
	data, err := json.Marshal(p)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, data, s.cacheTTL); err != nil {
		s.logger.Warn("prediction cache set failed", zap.String("store", s.cache.Name()), zap.Error(err))
	}
}

func (s *Service) observe(band string, start time.Time, err error) {
	if s.metrics == nil {
		return
	}
	if err != nil {
		s.metrics.Errors.WithLabelValues(core.ErrorCode(err)).Inc()
		return
	}
	s.metrics.Predictions.WithLabelValues(band).Inc()
	s.metrics.Duration.WithLabelValues(band).Observe(time.Since(start).Seconds())
}
