package utils

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// GenerateCertificateNumber returns a unique, human-readable certificate
// number such as CERT-20240301-1F3A9C2E.
func GenerateCertificateNumber(now time.Time) string {
	id := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
	return "CERT-" + now.Format("20060102") + "-" + id[:8]
}

// NewRequestID returns a correlation id for one request.
func NewRequestID() string {
	return uuid.NewString()
}
