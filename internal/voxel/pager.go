package voxel

import "context"

// PageInResult описывает, откуда взялось содержимое чанка
type PageInResult int

const (
	PageGenerated PageInResult = iota // Чанк сгенерирован заново
	PageLoaded                        // Чанк загружен из хранилища
	PageFailed                        // PageIn вернул ошибку, содержимое чанка не определено
)

// Generated возвращает true, если чанк был сгенерирован
func (r PageInResult) Generated() bool {
	return r == PageGenerated
}

func (r PageInResult) String() string {
	switch r {
	case PageGenerated:
		return "generated"
	case PageLoaded:
		return "loaded"
	case PageFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Pager - источник содержимого чанков для контейнера кеша.
// Контейнер вызывает PageIn до того, как чанк станет доступен,
// и PageOut не более одного раза перед уничтожением чанка.
// Исключение - автосохранение: изменённый чанк, оставшийся в памяти,
// может получить PageOut повторно. PageOut должен быть идемпотентен.
type Pager interface {
	PageIn(ctx context.Context, chunk *Chunk) (PageInResult, error)
	PageOut(ctx context.Context, chunk *Chunk)
}
