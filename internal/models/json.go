package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// Value implements the driver.Valuer interface
func (c SavedCards) Value() (driver.Value, error) {
	if c == nil {
		return "[]", nil
	}
	data, err := json.Marshal(c)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// Scan implements the sql.Scanner interface
func (c *SavedCards) Scan(value interface{}) error {
	var data []byte
	switch v := value.(type) {
	case nil:
		*c = SavedCards{}
		return nil
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported saved cards column type %T", value)
	}
	if len(data) == 0 {
		*c = SavedCards{}
		return nil
	}
	return json.Unmarshal(data, c)
}
