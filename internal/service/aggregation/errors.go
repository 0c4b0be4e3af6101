package aggregation

import "errors"

var (
	// ErrUpstreamAuth EMS отклонил учетные данные, агрегат не собирается
	ErrUpstreamAuth = errors.New("aggregation: upstream rejected credentials")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("aggregation: invalid input data")
)
