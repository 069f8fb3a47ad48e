package core

// ApplicantInput 是单次请求的原始投保人属性（RawApplicantInput）。
//
// key 为固定词表中的字段名，value 为数字或字符串。Age 与 Medical History 必填，
// 其余字段缺省时对应的指示列全部为 0。不在词表中的字段被静默忽略。
type ApplicantInput map[string]any

// 原始输入字段名（固定词表）
const (
	FieldAge                = "Age"
	FieldGender             = "Gender"
	FieldRegion             = "Region"
	FieldMaritalStatus      = "Marital Status"
	FieldBMICategory        = "BMI Category"
	FieldSmokingStatus      = "Smoking Status"
	FieldEmploymentStatus   = "Employment Status"
	FieldInsurancePlan      = "Insurance Plan"
	FieldNumberOfDependants = "Number of Dependants"
	FieldIncomeLakhs        = "Income in Lakhs"
	FieldGeneticalRisk      = "Genetical Risk"
	FieldMedicalHistory     = "Medical History"
)

// RequiredFields 必填字段
var RequiredFields = []string{FieldAge, FieldMedicalHistory}

// Get 读取字段值
func (in ApplicantInput) Get(field string) (any, bool) {
	if in == nil {
		return nil, false
	}
	v, ok := in[field]
	return v, ok
}

// GetString 读取字符串字段；缺失或非字符串返回 ("", false)
func (in ApplicantInput) GetString(field string) (string, bool) {
	v, ok := in.Get(field)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}
