package sources

import (
	"encoding/json"
	"log"
	"time"

	"github.com/gorilla/websocket"
	"github.com/skovlyst/chorusmap/pkg/densitymap"
)

// LiveFeed subscribes to the classifier's websocket stream of same-day
// detection events and hands each one to the callback. The feed is optional
// and additive: the session's loaded series stay authoritative for past
// days, live events only increment the current day.
type LiveFeed struct {
	URL     string
	OnEvent func(densitymap.LiveEvent)
}

type liveMessage struct {
	Type string `json:"type"`
	Data struct {
		Species string  `json:"species"`
		Site    string  `json:"site"`
		Date    string  `json:"date"`
		Count   float64 `json:"count"`
	} `json:"data"`
}

// Listen connects and consumes events until the process exits, reconnecting
// with exponential backoff on any failure. Run it on its own goroutine.
func (f *LiveFeed) Listen() {
	backoff := 1 * time.Second
	for {
		log.Printf("Connecting to live feed: %s", f.URL)
		c, _, err := websocket.DefaultDialer.Dial(f.URL, nil)
		if err != nil {
			log.Printf("Dial error: %v. Retrying in %v...", err, backoff)
			time.Sleep(backoff)
			backoff *= 2
			if backoff > 60*time.Second {
				backoff = 60 * time.Second
			}
			continue
		}
		backoff = 1 * time.Second

		subscribe := `{"type": "subscribe", "data": {"stream": "detections"}}`
		if err := c.WriteMessage(websocket.TextMessage, []byte(subscribe)); err != nil {
			log.Printf("Subscribe error: %v", err)
			c.Close()
			continue
		}

		for {
			_, message, err := c.ReadMessage()
			if err != nil {
				log.Printf("Read error: %v. Reconnecting...", err)
				break
			}
			var msg liveMessage
			if json.Unmarshal(message, &msg) != nil {
				continue
			}
			switch msg.Type {
			case "error":
				log.Printf("[FEED ERROR] %s", string(message))
			case "detection":
				if f.OnEvent != nil && msg.Data.Site != "" {
					f.OnEvent(densitymap.LiveEvent{
						Species: msg.Data.Species,
						Site:    msg.Data.Site,
						Date:    msg.Data.Date,
						Count:   msg.Data.Count,
					})
				}
			}
		}
		c.Close()
		time.Sleep(time.Second)
	}
}
