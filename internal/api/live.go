package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"schooladmin/internal/school"
)

const writeWait = 10 * time.Second

var liveCollections = map[string]bool{
	school.Students:     true,
	school.Teachers:     true,
	school.Homeworks:    true,
	school.Notices:      true,
	school.ExamResults:  true,
	school.Timetables:   true,
	school.Settings:     true,
	school.Applications: true,
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin:     func(*http.Request) bool { return true },
}

// Snapshot is one push of a whole collection.
type Snapshot struct {
	Collection string `json:"collection"`
	Documents  any    `json:"documents"`
}

func (h *Handler) snapshot(ctx context.Context, collection string) (Snapshot, error) {
	switch collection {
	case school.Students:
		students, err := h.School.ListStudents(ctx, "")
		return Snapshot{Collection: collection, Documents: students}, err
	case school.Teachers:
		teachers, err := h.School.ListTeachers(ctx)
		return Snapshot{Collection: collection, Documents: teachers}, err
	}
	docs, err := h.Store.List(ctx, collection)
	return Snapshot{Collection: collection, Documents: docs}, err
}

// Live upgrades to a websocket and pushes a snapshot of the collection on
// connect and after every change, until either side goes away.
func (h *Handler) Live(c *gin.Context) {
	collection := c.Param("collection")
	if !liveCollections[collection] {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown collection"})
		return
	}
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.Log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	changes, err := h.Broker.Subscribe(ctx, collection)
	if err != nil {
		h.Log.Error("live subscribe failed", zap.String("collection", collection), zap.Error(err))
		return
	}

	// The client never sends anything; reading detects the close.
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	if !h.push(ctx, conn, collection) {
		return
	}
	for {
		select {
		case <-ctx.Done():
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
			return
		case _, ok := <-changes:
			if !ok {
				return
			}
			if !h.push(ctx, conn, collection) {
				return
			}
		}
	}
}

func (h *Handler) push(ctx context.Context, conn *websocket.Conn, collection string) bool {
	snap, err := h.snapshot(ctx, collection)
	if err != nil {
		h.Log.Error("live snapshot failed", zap.String("collection", collection), zap.Error(err))
		return false
	}
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteJSON(snap); err != nil {
		h.Log.Debug("live client gone", zap.String("collection", collection), zap.Error(err))
		return false
	}
	return true
}
