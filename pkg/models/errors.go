package models

import "errors"

// Ошибки движка. Адаптер и композер оборачивают их через %w,
// вызывающая сторона проверяет errors.Is.
var (
	// ErrDataUnavailable: источник не вернул пригодный ряд свечей
	ErrDataUnavailable = errors.New("рыночные данные недоступны")
	// ErrInsufficientData: истории меньше, чем требуют обязательные индикаторы
	ErrInsufficientData = errors.New("недостаточно истории для индикаторов")
)
