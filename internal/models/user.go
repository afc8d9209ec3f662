package models

// User is an account known to the service. Tokens are issued elsewhere;
// the subject claim of a bearer token is matched against ID.
type User struct {
	Base
	Username     string `gorm:"size:150;not null;uniqueIndex:idx_users_username" json:"username"`
	Email        string `gorm:"size:254" json:"email"`
	PasswordHash string `gorm:"size:255" json:"-"`
	IsStaff      bool   `gorm:"not null" json:"is_staff"`
}

// TableName overrides the table name for User
func (User) TableName() string {
	return "users"
}
