package model

import "time"

// SettingsRowID 设置单例在远端表中的固定主键
const SettingsRowID = "global_settings"

// SchoolSettings 学校设置（单例）
type SchoolSettings struct {
	Name         string     `json:"name"`
	NPSN         string     `json:"npsn"` // 国家学校编号
	Address      string     `json:"address"`
	PostalCode   string     `json:"postalCode"`
	Village      string     `json:"village"`
	District     string     `json:"district"`
	Regency      string     `json:"regency"`
	Province     string     `json:"province"`
	Website      string     `json:"website"`
	Email        string     `json:"email"`
	Headmaster   string     `json:"headmaster"`
	Teacher      string     `json:"teacher"` // 班级未指定教师时的默认签名
	CurrentClass string     `json:"currentClass"`
	Semester     string     `json:"semester"`
	AcademicYear string     `json:"academicYear"`
	ReportDate   string     `json:"reportDate"`
	ReportPlace  string     `json:"reportPlace"`
	LogoURL      string     `json:"logoUrl,omitempty"`
	AIProvider   AIProvider `json:"aiProvider,omitempty"`
	AIAPIKey     string     `json:"aiApiKey,omitempty"`
}

// DefaultSettings 首次使用时的默认设置
func DefaultSettings(now time.Time) SchoolSettings {
	return SchoolSettings{
		Name:         "TK Pertiwi Harapan",
		NPSN:         "12345678",
		Address:      "Jl. Merdeka No. 1",
		PostalCode:   "12345",
		Village:      "Sukamaju",
		District:     "Maju Jaya",
		Regency:      "Jakarta Selatan",
		Province:     "DKI Jakarta",
		Website:      "www.tkpertiwi.sch.id",
		Email:        "info@tkpertiwi.sch.id",
		Headmaster:   "Budi Santoso, S.Pd",
		Teacher:      "Siti Aminah, S.Pd",
		CurrentClass: "Kelompok A",
		Semester:     "1 (Ganjil)",
		AcademicYear: "2024/2025",
		ReportPlace:  "Jakarta",
		ReportDate:   now.Format("2006-01-02"),
	}
}
