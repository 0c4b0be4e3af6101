package snapshot

import "errors"

var (
	// ErrSnapshotNotFound возвращается, когда снимка за дату нет
	ErrSnapshotNotFound = errors.New("snapshot.repository: snapshot not found")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("snapshot.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("snapshot.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("snapshot.repository: failed to scan row")

	// ErrPayload возвращается, если снимок не удалось закодировать или разобрать
	ErrPayload = errors.New("snapshot.repository: invalid payload")
)
