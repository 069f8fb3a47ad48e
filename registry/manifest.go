package registry

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/rushteam/premiumkit/core"
)

// Manifest 分段清单（YAML）：
//
//	version: v1
//	bands:
//	  - name: young
//	    when: "age <= 25.0"
//	    scaler: artifacts/scaler_young.json
//	    model:
//	      type: linear
//	      path: artifacts/model_young.json
type Manifest struct {
	Version string     `yaml:"version"`
	Bands   []BandSpec `yaml:"bands"`
}

// BandSpec 单个分段的配置
type BandSpec struct {
	Name   string    `yaml:"name"`
	When   string    `yaml:"when"`   // CEL 规则，为空时取 DefaultRules[name]
	Scaler string    `yaml:"scaler"` // 本地路径或 http(s) URL
	Model  ModelSpec `yaml:"model"`
}

// ModelSpec 模型配置，Type 决定使用哪个 ModelBuilder
type ModelSpec struct {
	Type         string         `yaml:"type"` // linear / kserve / rpc
	Path         string         `yaml:"path"`
	Endpoint     string         `yaml:"endpoint"`
	ModelName    string         `yaml:"model_name"`
	ModelVersion string         `yaml:"model_version"`
	Protocol     string         `yaml:"protocol"`
	FeatureNames []string       `yaml:"feature_names"`
	Timeout      int            `yaml:"timeout"` // 秒
	Params       map[string]any `yaml:"params"`
}

// Rule 返回分段的规则表达式
func (b BandSpec) Rule() string {
	if strings.TrimSpace(b.When) != "" {
		return b.When
	}
	return DefaultRules[b.Name]
}

// ParseManifest 解析 YAML 清单
func ParseManifest(data []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, core.WrapDomainError(core.ModuleRegistry, core.ErrorCodeConfiguration, "parse manifest", err)
	}
	return &m, nil
}

// LoadManifest 从文件加载清单，相对路径按清单所在目录解析
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, core.WrapDomainError(core.ModuleRegistry, core.ErrorCodeConfiguration, "read manifest", err)
	}
	m, err := ParseManifest(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	m.resolvePaths(filepath.Dir(path))
	return m, nil
}

func (m *Manifest) resolvePaths(dir string) {
	for i := range m.Bands {
		b := &m.Bands[i]
		b.Scaler = resolvePath(dir, b.Scaler)
		b.Model.Path = resolvePath(dir, b.Model.Path)
	}
}

func resolvePath(dir, p string) string {
	if p == "" || filepath.IsAbs(p) || strings.HasPrefix(p, "http://") || strings.HasPrefix(p, "https://") {
		return p
	}
	return filepath.Join(dir, p)
}

// Validate 校验清单结构以及所有 model.type 均已注册
func (m *Manifest) Validate() error {
	if len(m.Bands) == 0 {
		return core.NewConfigurationError(core.ModuleRegistry, "manifest declares no bands")
	}
	supported := SupportedTypes()
	for i, b := range m.Bands {
		if b.Name == "" {
			return core.NewConfigurationError(core.ModuleRegistry, fmt.Sprintf("bands[%d]: name is required", i))
		}
		if b.Rule() == "" {
			return core.NewConfigurationError(core.ModuleRegistry, fmt.Sprintf("band %q: when is required", b.Name))
		}
		if b.Scaler == "" {
			return core.NewConfigurationError(core.ModuleRegistry, fmt.Sprintf("band %q: scaler is required", b.Name))
		}
		if _, ok := lookup(b.Model.Type); !ok {
			return core.NewConfigurationError(core.ModuleRegistry,
				fmt.Sprintf("band %q: unsupported model type %q (supported: %v)", b.Name, b.Model.Type, supported))
		}
	}
	return nil
}
