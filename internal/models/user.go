package models

import "time"

// User is the profile record behind a verified identity. Token issuance and
// signup live outside this service; the auth middleware only resolves a
// token's subject to this record.
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Handle    string    `gorm:"size:60;not null;uniqueIndex" json:"handle"`
	ImageURL  string    `json:"image_url"`
	Bio       string    `gorm:"type:text" json:"bio"`
	Location  string    `gorm:"size:120" json:"location"`
	Website   string    `gorm:"size:200" json:"website"`
	IsAdmin   bool      `gorm:"default:false" json:"is_admin"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for GORM.
func (User) TableName() string {
	return "users"
}
