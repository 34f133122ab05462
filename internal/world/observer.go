package world

import (
	"github.com/zeusync/orbwalk/internal/core/events/bus"
	"github.com/zeusync/orbwalk/internal/core/observability/log"
)

// busLogger traces bus traffic at debug level and surfaces handler failures.
type busLogger struct {
	log log.Log
}

func (o *busLogger) OnPublish(eventType string, event bus.Event) {
	o.log.Debug("event published",
		log.String("type", eventType),
		log.String("id", event.ID()),
		log.String("source", event.Source()),
	)
}

func (o *busLogger) OnDelivered(eventType string, handlers int, err error, durationMicros int64) {
	if err != nil {
		o.log.Warn("event delivery failed",
			log.String("type", eventType),
			log.Int("handlers", handlers),
			log.Error(err),
		)
		return
	}
	o.log.Debug("event delivered",
		log.String("type", eventType),
		log.Int("handlers", handlers),
		log.Int64("duration_us", durationMicros),
	)
}
