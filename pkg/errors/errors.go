package errors

import "errors"

// ErrConnectionClosed 连接已关闭：向已注销或已断开的连接写入时返回
var ErrConnectionClosed = errors.New("连接已关闭")
