package entity

import "image"

// BoundingBox область найденного объекта в пикселях исходного изображения
type BoundingBox struct {
	XMin float64 `json:"xmin"` // левая граница
	YMin float64 `json:"ymin"` // верхняя граница
	XMax float64 `json:"xmax"` // правая граница
	YMax float64 `json:"ymax"` // нижняя граница
}

// Rect переводит рамку в целочисленный прямоугольник, дробная часть отбрасывается.
func (b BoundingBox) Rect() image.Rectangle {
	return image.Rect(int(b.XMin), int(b.YMin), int(b.XMax), int(b.YMax))
}

// Center возвращает координаты центра рамки
func (b BoundingBox) Center() (x, y float64) {
	return (b.XMin + b.XMax) / 2, (b.YMin + b.YMax) / 2
}

// Detection один объект, найденный моделью на изображении.
type Detection struct {
	Label      string      `json:"label"`
	Confidence float64     `json:"confidence"`
	Box        BoundingBox `json:"box"`
}

// AiDescription — текстовое описание результата от ИИ.
type AiDescription struct {
	Text string
}
