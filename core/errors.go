package core

import "errors"

// DomainError 是领域层的统一错误类型。
//
// 错误分类：
//   - CONFIGURATION：加载的制品缺少必需字段（如 scaler 缺少 cols_to_scale）、无可用分段等，致命且不降级
//   - SCHEMA_MISMATCH：组装出的特征记录无法满足模型/scaler 声明的列，致命
//   - INVALID_INPUT：必填字段缺失或类型错误
//   - UNAVAILABLE：远程模型、缓存等外部依赖不可用
//
// 未识别的类别值、未识别的病史、未识别的输入字段不是错误，它们按约定落到默认值。
type DomainError struct {
	Code    string // 错误代码（如 "CONFIGURATION", "SCHEMA_MISMATCH"）
	Message string // 错误消息
	Module  string // 模块名称（如 "feature", "scaling", "model"）
	Err     error  // 底层错误（可选）
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// IsDomainError 检查错误链中是否存在 DomainError
func IsDomainError(err error) bool {
	return GetDomainError(err) != nil
}

// GetDomainError 获取错误链中的 DomainError，不存在则返回 nil
func GetDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	return nil
}

// NewDomainError 创建新的领域错误
func NewDomainError(module, code, message string) *DomainError {
	return &DomainError{
		Module:  module,
		Code:    code,
		Message: message,
	}
}

// WrapDomainError 创建携带底层错误的领域错误
func WrapDomainError(module, code, message string, err error) *DomainError {
	return &DomainError{
		Module:  module,
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// 错误代码常量
const (
	ErrorCodeNotFound       = "NOT_FOUND"       // 资源不存在
	ErrorCodeNotSupported   = "NOT_SUPPORTED"   // 操作不支持
	ErrorCodeUnavailable    = "UNAVAILABLE"     // 服务不可用
	ErrorCodeInvalidInput   = "INVALID_INPUT"   // 输入无效
	ErrorCodeConfiguration  = "CONFIGURATION"   // 制品/配置缺失或非法
	ErrorCodeSchemaMismatch = "SCHEMA_MISMATCH" // 特征列与模型/scaler 声明不一致
	ErrorCodeInternalError  = "INTERNAL_ERROR"  // 内部错误
)

// 模块名称常量
const (
	ModuleStore    = "store"    // 缓存存储
	ModuleFeature  = "feature"  // 特征编码与组装
	ModuleScaling  = "scaling"  // 数值缩放
	ModuleModel    = "model"    // 模型路由与推理
	ModuleRegistry = "registry" // 分段注册表
	ModuleService  = "service"  // 外部模型服务
	ModulePipeline = "pipeline" // 预测编排
)

// NewConfigurationError 创建 CONFIGURATION 错误
func NewConfigurationError(module, message string) *DomainError {
	return NewDomainError(module, ErrorCodeConfiguration, message)
}

// NewSchemaMismatchError 创建 SCHEMA_MISMATCH 错误
func NewSchemaMismatchError(module, message string) *DomainError {
	return NewDomainError(module, ErrorCodeSchemaMismatch, message)
}

// NewInvalidInputError 创建 INVALID_INPUT 错误
func NewInvalidInputError(module, message string) *DomainError {
	return NewDomainError(module, ErrorCodeInvalidInput, message)
}

func hasCode(err error, code string) bool {
	if domainErr := GetDomainError(err); domainErr != nil {
		return domainErr.Code == code
	}
	return false
}

// IsNotFound 检查错误是否为 NOT_FOUND
func IsNotFound(err error) bool { return hasCode(err, ErrorCodeNotFound) }

// IsNotSupported 检查错误是否为 NOT_SUPPORTED
func IsNotSupported(err error) bool { return hasCode(err, ErrorCodeNotSupported) }

// IsUnavailable 检查错误是否为 UNAVAILABLE
func IsUnavailable(err error) bool { return hasCode(err, ErrorCodeUnavailable) }

// IsInvalidInput 检查错误是否为 INVALID_INPUT
func IsInvalidInput(err error) bool { return hasCode(err, ErrorCodeInvalidInput) }

// IsConfigurationError 检查错误是否为 CONFIGURATION
func IsConfigurationError(err error) bool { return hasCode(err, ErrorCodeConfiguration) }

// IsSchemaMismatch 检查错误是否为 SCHEMA_MISMATCH
func IsSchemaMismatch(err error) bool { return hasCode(err, ErrorCodeSchemaMismatch) }

// ErrorCode 返回错误链中 DomainError 的错误代码，非领域错误返回 INTERNAL_ERROR
func ErrorCode(err error) string {
	if domainErr := GetDomainError(err); domainErr != nil {
		return domainErr.Code
	}
	return ErrorCodeInternalError
}
