package model

// ── 课程常量 ──

// AssessmentLevel 掌握程度等级（1..3）
type AssessmentLevel int

const (
	LevelBerkembang AssessmentLevel = 1 // 发展中，需要引导
	LevelCakap      AssessmentLevel = 2 // 胜任
	LevelMahir      AssessmentLevel = 3 // 熟练
)

// Valid 是否为合法等级
func (l AssessmentLevel) Valid() bool {
	return l >= LevelBerkembang && l <= LevelMahir
}

// Label 报告中使用的等级文字
func (l AssessmentLevel) Label() string {
	switch l {
	case LevelBerkembang:
		return "Berkembang (Perlu Bimbingan)"
	case LevelCakap:
		return "Cakap (Layak)"
	case LevelMahir:
		return "Mahir (Sangat Baik)"
	default:
		return "-"
	}
}

// ShortLabel 表格中使用的简短等级文字
func (l AssessmentLevel) ShortLabel() string {
	switch l {
	case LevelBerkembang:
		return "Berkembang"
	case LevelCakap:
		return "Cakap"
	case LevelMahir:
		return "Mahir"
	default:
		return "-"
	}
}

// TPType 学习目标所属类别（固定 3 类）
type TPType string

const (
	TPTypeABP   TPType = "Nilai Agama dan Budi Pekerti"
	TPTypeJD    TPType = "Jati Diri"
	TPTypeIMTAK TPType = "Dasar Literasi, Matematika, Sains, Teknologi, Rekayasa dan Seni"
)

// TPCategories 报告中类别的固定顺序
var TPCategories = []TPType{TPTypeABP, TPTypeJD, TPTypeIMTAK}

// Valid 是否为已知类别
func (t TPType) Valid() bool {
	for _, c := range TPCategories {
		if c == t {
			return true
		}
	}
	return false
}

// AIProvider 叙述生成服务提供方
type AIProvider string

const (
	AIProviderGemini AIProvider = "gemini"
	AIProviderGroq   AIProvider = "groq"
)

// Valid 是否为支持的提供方
func (p AIProvider) Valid() bool {
	return p == AIProviderGemini || p == AIProviderGroq
}

// groqKeyPrefix Groq 密钥固定前缀
const groqKeyPrefix = "gsk_"

// DetectAIProvider 兼容旧数据：设置中未保存提供方时按密钥形态推断一次
func DetectAIProvider(apiKey string) AIProvider {
	if len(apiKey) >= len(groqKeyPrefix) && apiKey[:len(groqKeyPrefix)] == groqKeyPrefix {
		return AIProviderGroq
	}
	return AIProviderGemini
}
