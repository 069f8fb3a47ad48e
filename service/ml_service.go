package service

// ServiceType 服务类型
type ServiceType string

const (
	ServiceTypeKServe   ServiceType = "kserve"    // KServe V2（Open Inference Protocol）
	ServiceTypeKServeV1 ServiceType = "kserve_v1" // KServe V1（TF Serving REST 兼容）
)

// ServiceConfig 远程评分服务配置，对应分段清单里 model.type=kserve 的那一段
type ServiceConfig struct {
	// Type 服务类型，默认 kserve
	Type ServiceType

	// Endpoint 服务根地址，如 "http://localhost:8000"
	Endpoint string

	// ModelName 模型名称
	ModelName string

	// ModelVersion 模型版本（可选）
	ModelVersion string

	// Timeout 超时时间（秒）
	Timeout int

	// Auth 认证信息（可选）
	Auth *AuthConfig

	// Params 额外参数：v2_input_name / v2_output_name
	Params map[string]interface{}
}

// AuthConfig 认证配置
type AuthConfig struct {
	Type     string // "basic", "bearer", "api_key"
	Username string
	Password string
	Token    string
	APIKey   string
}
