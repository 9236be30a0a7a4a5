package ws

import (
	"context"
	"encoding/json"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/openrange/backend/internal/shots"
)

// StartShotEventSubscriber relays shot events published by any server
// instance to the local feed room.
func StartShotEventSubscriber(ctx context.Context, rdb *redis.Client, hub *Hub) {
	if rdb == nil {
		log.Println("[WS] Redis client not set; shot event subscriber not started")
		return
	}

	pubsub := rdb.Subscribe(ctx, shots.EventsChannel)
	ch := pubsub.Channel()
	go func() {
		defer pubsub.Close()
		log.Printf("[WS] %s subscriber started", shots.EventsChannel)
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				var evt shots.ShotEvent
				if err := json.Unmarshal([]byte(msg.Payload), &evt); err != nil {
					log.Printf("[WS] invalid shot event payload: %v", err)
					continue
				}
				hub.Broadcast(FeedRoom, evt)
			}
		}
	}()
}

// HandleFeed upgrades a listen-only connection into the feed room.
func HandleFeed(hub *Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Printf("[WS] Upgrade error: %v", err)
			return
		}
		client := &Client{
			hub:  hub,
			conn: conn,
			id:   shots.NewToken("c"),
			room: FeedRoom,
			send: make(chan []byte, sendBuffer),
		}
		hub.register <- client
		go client.writePump()
		go client.readPump(nil)
	}
}
