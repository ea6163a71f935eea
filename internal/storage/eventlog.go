package storage

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/GiftNdimande/taskdeck/internal/events"
)

// activityFile is the JSONL file holding the activity history.
const activityFile = "activity.jsonl"

// EventLogger persists bus events to a JSONL activity log.
type EventLogger struct {
	dir         string
	bus         *events.Bus
	unsubscribe func()
}

// NewEventLogger creates an EventLogger that subscribes to all bus events
// and appends them to activity.jsonl under dir.
func NewEventLogger(dir string, bus *events.Bus) *EventLogger {
	el := &EventLogger{
		dir: dir,
		bus: bus,
	}
	el.unsubscribe = bus.Subscribe(el.handleEvent)
	return el
}

// Close unsubscribes the logger from the event bus.
func (el *EventLogger) Close() {
	if el.unsubscribe != nil {
		el.unsubscribe()
	}
}

func (el *EventLogger) handleEvent(e events.Event) {
	// Filter out filter.changed: UI-local, not task activity.
	if e.Type == events.EventFilterChanged {
		return
	}
	_ = el.writeEvent(e)
}

func (el *EventLogger) writeEvent(e events.Event) error {
	data, err := json.Marshal(e)
	if err != nil {
		return err
	}
	data = append(data, '\n')

	if err := os.MkdirAll(el.dir, 0755); err != nil {
		return err
	}

	f, err := os.OpenFile(filepath.Join(el.dir, activityFile), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = f.Write(data)
	return err
}

// ReadRecent returns the last limit events from the activity log under dir,
// oldest first. A missing log yields nil; limit <= 0 means everything.
func ReadRecent(dir string, limit int) ([]events.Event, error) {
	f, err := os.Open(filepath.Join(dir, activityFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()

	var all []events.Event
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var e events.Event
		if err := json.Unmarshal(line, &e); err != nil {
			continue // skip corrupted lines
		}
		all = append(all, e)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	if limit > 0 && len(all) > limit {
		all = all[len(all)-limit:]
	}
	return all, nil
}
