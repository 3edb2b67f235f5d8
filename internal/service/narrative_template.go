package service

import (
	"fmt"
	"strings"

	"rapor-paud/backend/internal/dto"
	"rapor-paud/backend/internal/model"
)

// ── 离线模板（确定性，无随机成分） ──

// TemplateCategoryDescription 按 Mahir → Cakap → Berkembang 顺序逐级生成一句，拼成段落
func TemplateCategoryDescription(studentName, category string, facts []dto.AssessmentFact) string {
	var mahir, cakap, berkembang []string
	for _, f := range facts {
		activity := strings.ToLower(f.Activity)
		switch f.Score {
		case model.LevelMahir:
			mahir = append(mahir, activity)
		case model.LevelCakap:
			cakap = append(cakap, activity)
		case model.LevelBerkembang:
			berkembang = append(berkembang, activity)
		}
	}

	parts := []string{fmt.Sprintf("Pada aspek %s, Ananda %s", category, studentName)}
	if len(mahir) > 0 {
		parts = append(parts, fmt.Sprintf("menunjukkan kemampuan yang sangat baik dalam %s.", strings.Join(mahir, ", ")))
	}
	if len(cakap) > 0 {
		connector := "telah"
		if len(mahir) > 0 {
			connector = "Selain itu, ananda juga"
		}
		parts = append(parts, fmt.Sprintf("%s mampu %s.", connector, strings.Join(cakap, ", ")))
	}
	if len(berkembang) > 0 {
		parts = append(parts, fmt.Sprintf("Namun, ananda masih memerlukan bimbingan dan motivasi dalam hal %s agar dapat berkembang lebih optimal.", strings.Join(berkembang, ", ")))
	}
	return strings.Join(parts, " ")
}

// TemplateP5Description P5 离线模板，措辞与评分无关
func TemplateP5Description(studentName, subDimension, keywords string) string {
	return strings.TrimSpace(fmt.Sprintf("Ananda %s menunjukkan perkembangan dalam %s. %s", studentName, subDimension, keywords))
}

// ── 提示词 ──

func categoryScoreText(l model.AssessmentLevel) string {
	switch l {
	case model.LevelBerkembang:
		return "Mulai Berkembang"
	case model.LevelCakap:
		return "Cakap / Mampu"
	case model.LevelMahir:
		return "Sangat Mahir"
	}
	return ""
}

func p5ScoreText(l model.AssessmentLevel) string {
	switch l {
	case model.LevelBerkembang:
		return "Mulai Berkembang"
	case model.LevelCakap:
		return "Berkembang Sesuai Harapan"
	case model.LevelMahir:
		return "Sangat Berkembang"
	}
	return ""
}

func categoryPrompt(studentName, category string, facts []dto.AssessmentFact, keywords string) string {
	lines := make([]string, 0, len(facts))
	for _, f := range facts {
		lines = append(lines, fmt.Sprintf("- TP: %q (Aktivitas: %s) -> Capaian: %s", f.TP, f.Activity, categoryScoreText(f.Score)))
	}

	var b strings.Builder
	b.WriteString("Bertindaklah sebagai guru PAUD Kurikulum Merdeka.\n")
	b.WriteString("Buatlah SATU paragraf narasi deskripsi perkembangan anak untuk Rapor.\n\n")
	fmt.Fprintf(&b, "Data Siswa: %s\n", studentName)
	fmt.Fprintf(&b, "Kategori Perkembangan: %s\n\n", category)
	b.WriteString("Data Penilaian TP dan Aktivitas:\n")
	b.WriteString(strings.Join(lines, "\n"))
	fmt.Fprintf(&b, "\n\nCatatan Tambahan/Kata Kunci Guru: %s\n\n", keywords)
	b.WriteString("Panduan:\n")
	b.WriteString("1. Buat narasi yang mengalir, padu, dan positif (apresiatif).\n")
	b.WriteString("2. Jangan sebutkan nilai angka atau poin-poin. Gabungkan menjadi cerita.\n")
	b.WriteString("3. Untuk yang 'Mahir', berikan apresiasi tinggi.\n")
	b.WriteString("4. Untuk yang 'Cakap', nyatakan kemampuannya.\n")
	b.WriteString("5. Untuk yang 'Berkembang', gunakan bahasa yang memotivasi (misal: \"Ananda mulai mengenal...\", \"perlu bimbingan dalam...\").\n")
	fmt.Fprintf(&b, "6. Gunakan sudut pandang orang ketiga (Ananda %s...).\n", studentName)
	b.WriteString("7. Panjang sekitar 3-5 kalimat.\n")
	return b.String()
}

func p5Prompt(studentName, subDimension string, score model.AssessmentLevel, keywords string) string {
	var b strings.Builder
	b.WriteString("Buatkan narasi singkat untuk Rapor Projek Penguatan Profil Pelajar Pancasila (P5) PAUD.\n\n")
	fmt.Fprintf(&b, "Nama Siswa: %s\n", studentName)
	fmt.Fprintf(&b, "Dimensi/Elemen P5: %s\n", subDimension)
	fmt.Fprintf(&b, "Capaian: %s\n", p5ScoreText(score))
	fmt.Fprintf(&b, "Kata Kunci/Perilaku yang diamati: %s\n\n", keywords)
	b.WriteString("Instruksi:\n")
	b.WriteString("- Buat 1 paragraf pendek (2-3 kalimat).\n")
	fmt.Fprintf(&b, "- Narasikan bagaimana anak menunjukkan perilaku %s sesuai kata kunci tersebut.\n", subDimension)
	b.WriteString("- Gunakan bahasa yang positif dan personal.\n")
	return b.String()
}
