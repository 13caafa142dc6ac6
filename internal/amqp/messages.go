package amqp

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"fincircle/internal/report"
)

var ErrInvalidMessage = errors.New("invalid export request")

// ExportRequestMessage asks the worker to render one report export and
// write it to the export directory.
type ExportRequestMessage struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"owner_id"`
	Year      int       `json:"year"`
	Month     *int      `json:"month,omitempty"`
	Format    string    `json:"format"`
	Timestamp time.Time `json:"timestamp"`
}

// NewExportRequestMessage stamps a fresh id and timestamp.
func NewExportRequestMessage(ownerID string, w report.Window, format string) *ExportRequestMessage {
	return &ExportRequestMessage{
		ID:        uuid.NewString(),
		OwnerID:   ownerID,
		Year:      w.Year,
		Month:     w.Month,
		Format:    strings.ToLower(strings.TrimSpace(format)),
		Timestamp: time.Now().UTC(),
	}
}

func (m *ExportRequestMessage) Window() report.Window {
	return report.Window{Year: m.Year, Month: m.Month}
}

// Validate rejects messages the worker could never process.
func (m *ExportRequestMessage) Validate() error {
	if _, err := uuid.Parse(m.ID); err != nil {
		return fmt.Errorf("%w: id %q: %v", ErrInvalidMessage, m.ID, err)
	}
	if strings.TrimSpace(m.OwnerID) == "" {
		return fmt.Errorf("%w: missing owner", ErrInvalidMessage)
	}
	if m.Year <= 0 {
		return fmt.Errorf("%w: year %d", ErrInvalidMessage, m.Year)
	}
	if err := m.Window().Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidMessage, err)
	}
	switch m.Format {
	case "csv", "xlsx":
	default:
		return fmt.Errorf("%w: format %q", ErrInvalidMessage, m.Format)
	}
	return nil
}

func (m *ExportRequestMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ExportRequestMessageFromJSON decodes and validates a message body.
func ExportRequestMessageFromJSON(data []byte) (*ExportRequestMessage, error) {
	var msg ExportRequestMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidMessage, err)
	}
	if err := msg.Validate(); err != nil {
		return nil, err
	}
	return &msg, nil
}
