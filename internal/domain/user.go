package domain

// User is a row of the users table. PasswordHash is persisted in the
// password column and is never serialized.
type User struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	Username     string `gorm:"size:255;not null" json:"username"`
	Email        string `gorm:"size:255;not null" json:"email"`
	PasswordHash string `gorm:"column:password;size:1024;not null" json:"-"`
}
