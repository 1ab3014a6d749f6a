package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Settings is an open-ended preference mapping stored as one JSON text
// column. Keys are never typed individually, so new preferences need no
// schema change and unknown keys round-trip untouched.
type Settings map[string]any

// Value implements driver.Valuer.
func (s Settings) Value() (driver.Value, error) {
	if s == nil {
		s = Settings{}
	}
	raw, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("marshal settings: %w", err)
	}
	return string(raw), nil
}

// Scan implements sql.Scanner.
func (s *Settings) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*s = Settings{}
		return nil
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return fmt.Errorf("unsupported settings column type %T", src)
	}
	if len(raw) == 0 {
		*s = Settings{}
		return nil
	}
	if err := json.Unmarshal(raw, s); err != nil {
		return fmt.Errorf("unmarshal settings: %w", err)
	}
	return nil
}

// User is an account record. Username is the primary identity; the
// record is immutable after creation except for Settings.
type User struct {
	Username     string `gorm:"primaryKey"`
	Email        string `gorm:"uniqueIndex"`
	PasswordHash string
	Settings     Settings `gorm:"type:text;default:'{}'"`
	CreatedAt    time.Time
}
