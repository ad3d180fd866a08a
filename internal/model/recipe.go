package model

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// JSONBStringArray is a custom type for handling string arrays in JSONB
type JSONBStringArray []string

// Value implements the driver.Valuer interface
func (a JSONBStringArray) Value() (driver.Value, error) {
	if len(a) == 0 {
		return "[]", nil
	}
	return json.Marshal(a)
}

// Scan implements the sql.Scanner interface
func (a *JSONBStringArray) Scan(value interface{}) error {
	if value == nil {
		*a = JSONBStringArray{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return nil
	}

	return json.Unmarshal(bytes, a)
}

// Recipe difficulty levels as instructed in the generation prompt.
const (
	DifficultyEasy   = "Easy"
	DifficultyMedium = "Medium"
	DifficultyHard   = "Hard"
)

// Recipe is a generated recipe row. Rows are created only by the
// generation cycle and never mutated afterwards.
type Recipe struct {
	ID          uuid.UUID        `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
	DeletedAt   gorm.DeletedAt   `gorm:"index" json:"-"`
	Title       string           `gorm:"size:255;not null" json:"title"`
	Description string           `gorm:"type:text" json:"description"`
	Ingredients JSONBStringArray `gorm:"type:jsonb;not null;default:'[]'" json:"ingredients"`
	PrepTime    string           `gorm:"size:50" json:"prep_time"`
	Difficulty  string           `gorm:"size:20" json:"difficulty"`
	Image       *string          `gorm:"size:255" json:"image"`
	UserID      uuid.UUID        `gorm:"type:uuid;not null;index" json:"user_id"`
}
