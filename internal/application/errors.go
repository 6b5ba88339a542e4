package app

import "errors"

var (
	// ErrNoImage фото не передано
	ErrNoImage = errors.New("no image supplied")
	// ErrImageTooLarge фото больше допустимого размера
	ErrImageTooLarge = errors.New("image is too large")
	// ErrUnsupportedImage формат не JPEG/PNG/WebP
	ErrUnsupportedImage = errors.New("unsupported image format")
	// ErrInferenceFailed ошибка внешней модели
	ErrInferenceFailed = errors.New("inference failed")
	// ErrDetectorNotConfigured детектор не подключён
	ErrDetectorNotConfigured = errors.New("detector is not configured")
)
