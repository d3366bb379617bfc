package core

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// IDFunc generates a system identifier for a record with the given prefix.
type IDFunc func(prefix string) string

// NewRecordID returns "{PREFIX}-{unix millis}-{8 hex chars}".
func NewRecordID(prefix string) string {
	return recordID(prefix, time.Now(), uuid.New())
}

func recordID(prefix string, at time.Time, u uuid.UUID) string {
	suffix := strings.ToUpper(strings.ReplaceAll(u.String(), "-", "")[:8])
	return fmt.Sprintf("%s-%d-%s", prefix, at.UnixMilli(), suffix)
}
