package notification

import (
	"sort"
	"sync"

	"github.com/secondbrain/backend/internal/domain/notification"
)

// maxPerUser 每个用户保留的通知上限
const maxPerUser = 100

// MemoryRepository 内存仓储实现
type MemoryRepository struct {
	mu    sync.RWMutex
	items map[string][]*notification.Notification
}

// NewMemoryRepository 创建内存仓储
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		items: make(map[string][]*notification.Notification),
	}
}

// Save 保存通知，超出上限时丢弃最旧的
func (r *MemoryRepository) Save(n *notification.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	list := append(r.items[n.UserID], n)
	if len(list) > maxPerUser {
		list = list[len(list)-maxPerUser:]
	}
	r.items[n.UserID] = list
	return nil
}

// FindByUser 按创建时间倒序返回
func (r *MemoryRepository) FindByUser(userID string, limit int) ([]*notification.Notification, error) {
	r.mu.RLock()
	list := make([]*notification.Notification, len(r.items[userID]))
	copy(list, r.items[userID])
	r.mu.RUnlock()

	sort.SliceStable(list, func(i, j int) bool {
		return list[i].CreatedAt.After(list[j].CreatedAt)
	})
	if limit > 0 && len(list) > limit {
		list = list[:limit]
	}
	return list, nil
}

// 编译时检查接口实现
var _ notification.Repository = (*MemoryRepository)(nil)
