package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"insurecost/insurance"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
)

// liveReply 实时估算的单条回复
type liveReply struct {
	Cost      float64                `json:"cost,omitempty"`
	Formatted string                 `json:"formatted,omitempty"`
	Error     string                 `json:"error,omitempty"`
	Fields    []insurance.FieldError `json:"fields,omitempty"`
}

// liveSession 一个浏览器连接: 读协程逐条推理, 写协程负责回复与心跳
type liveSession struct {
	conn *websocket.Conn
	send chan liveReply
	done chan struct{}
	id   string
}

// handleLiveEstimate 表单每次变化发送一条请求, 服务端同步返回一次估算
func (h *Handlers) handleLiveEstimate(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	session := &liveSession{
		conn: conn,
		send: make(chan liveReply, 16),
		done: make(chan struct{}),
		id:   GetRequestID(r.Context()),
	}
	go session.writePump(h.logger)
	session.readPump(h, r)
}

func (s *liveSession) readPump(h *Handlers, r *http.Request) {
	defer close(s.send)

	s.conn.SetReadLimit(maxMessageSize)
	s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Info("websocket closed", zap.String("request_id", s.id), zap.Error(err))
			}
			return
		}

		var req insurance.PredictionRequest
		if err := json.Unmarshal(data, &req); err != nil {
			if !s.reply(liveReply{Error: "invalid request: " + err.Error()}) {
				return
			}
			continue
		}

		estimate, err := h.predict(r, req)
		if err != nil {
			_, body := classify(err)
			if !s.reply(liveReply{Error: body.Error, Fields: body.Fields}) {
				return
			}
			continue
		}
		if !s.reply(liveReply{Cost: estimate.Cost, Formatted: estimate.Formatted}) {
			return
		}
	}
}

// reply 写协程退出后返回 false
func (s *liveSession) reply(msg liveReply) bool {
	select {
	case s.send <- msg:
		return true
	case <-s.done:
		return false
	}
}

func (s *liveSession) writePump(logger *zap.Logger) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		s.conn.Close()
		close(s.done)
	}()

	for {
		select {
		case reply, ok := <-s.send:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				s.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := s.conn.WriteJSON(reply); err != nil {
				logger.Warn("websocket write error", zap.String("request_id", s.id), zap.Error(err))
				return
			}

		case <-ticker.C:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
