package schema

import "time"

// KeyValueStore stores arbitrary key-value pairs of service state
// Block cursors are stored under block_cursor:{chain}:{nftAddress}
type KeyValueStore struct {
	Key       string    `gorm:"primaryKey;type:text"`
	Value     string    `gorm:"type:text;not null"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (KeyValueStore) TableName() string {
	return "key_value_store"
}
