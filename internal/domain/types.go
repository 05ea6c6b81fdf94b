package domain

import (
	"encoding/json"
	"time"
)

// FoodType tags which analysis schema a scan result follows.
type FoodType string

const (
	FoodTypePackaged FoodType = "packaged"
	FoodTypeRaw      FoodType = "raw"
)

func (t FoodType) Valid() bool {
	return t == FoodTypePackaged || t == FoodTypeRaw
}

// ScanRecord is one persisted analysis. ImagePath is the uploaded file's
// original name, not a storage location; PhotoKey points into the photo
// archive when one is configured.
type ScanRecord struct {
	ID         int64           `json:"id"`
	ImagePath  string          `json:"image_path"`
	ScanResult json.RawMessage `json:"scan_result"`
	CreatedAt  time.Time       `json:"created_at"`
	FoodType   FoodType        `json:"food_type"`
	PhotoKey   string          `json:"photo_key,omitempty"`
}
