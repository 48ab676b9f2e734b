// Package notify is the fire-and-forget notification boundary. Ledger
// operations dispatch events after their transaction commits; a failed
// dispatch is logged and never propagated back to the caller.
package notify

import (
	"encoding/json"
	"log"

	"gorm.io/gorm"

	"github.com/smartsupply/delivery-app/internal/models"
)

// Dispatcher delivers an event to a user. Implementations must not block
// the caller on delivery problems.
type Dispatcher interface {
	Notify(userID uint, kind string, payload map[string]any)
}

// DBDispatcher persists notifications so clients can poll or stream them.
// It stands in for the original real-time socket registry; the transport
// behind the rows is not this package's concern.
type DBDispatcher struct {
	DB *gorm.DB
}

func NewDBDispatcher(db *gorm.DB) *DBDispatcher { return &DBDispatcher{DB: db} }

func (d *DBDispatcher) Notify(userID uint, kind string, payload map[string]any) {
	raw, err := json.Marshal(payload)
	if err != nil {
		log.Printf("notify: marshal payload kind=%s user=%d: %v", kind, userID, err)
		return
	}
	n := models.Notification{UserID: userID, Kind: kind, Payload: raw}
	if err := d.DB.Create(&n).Error; err != nil {
		log.Printf("notify: persist kind=%s user=%d: %v", kind, userID, err)
	}
}

// Nop discards events.
type Nop struct{}

func (Nop) Notify(uint, string, map[string]any) {}
