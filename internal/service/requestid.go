package service

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// newRequestID builds the externally visible identifier, e.g. RSC-20261014-4F9A2C.
func newRequestID(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:6])
	return "RSC-" + now.Format("20060102") + "-" + suffix
}
