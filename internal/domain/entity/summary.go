package entity

// Summary итог по одному изображению. Считается заново на каждый запрос.
type Summary struct {
	Counts       map[string]int // количество объектов по метке
	Labels       []string       // уникальные метки в порядке появления
	Primary      *Detection     // первая строка ответа модели
	Total        int            // всего объектов
	NoDetections bool           // модель ничего не нашла
	Compliant    int            // различные метки из списка СИЗ
	Violations   int            // различные метки с маркером нарушения
	Workers      int            // люди плюс все нарушения
}

// SummaryLine строка сводки для отображения
type SummaryLine struct {
	Label    string   `json:"label"`
	Status   string   `json:"status"`
	Category Category `json:"category"`
	Count    int      `json:"count"`
}

// PrimaryLabel возвращает метку основного объекта или "none".
func (s *Summary) PrimaryLabel() string {
	if s == nil || s.Primary == nil {
		return PrimaryNoneSentinel
	}
	return s.Primary.Label
}

// Lines раскладывает счётчики по строкам с человекочитаемым статусом.
func (s *Summary) Lines(cm ComplianceMap) []SummaryLine {
	if s == nil {
		return nil
	}
	lines := make([]SummaryLine, 0, len(s.Labels))
	for _, label := range s.Labels {
		lines = append(lines, SummaryLine{
			Label:    label,
			Status:   cm.Status(label),
			Category: cm.Category(label),
			Count:    s.Counts[label],
		})
	}
	return lines
}
