package repository

import "context"

// カートスナップショットの置き場。
// キー1つにつき直列化済みスナップショット1つを保持し、Saveは常に全体を上書きする。
type CartSnapshotRepository interface {
	// 無ければErrNotFound
	Load(ctx context.Context, key string) (string, error)
	Save(ctx context.Context, key string, data string) error
}
