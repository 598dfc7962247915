package model

type User struct {
	ID           RecordID `gorm:"primaryKey;type:varchar(24)" bson:"_id" json:"id"`
	Email        string   `gorm:"uniqueIndex;not null" bson:"email" json:"email"`
	PasswordHash string   `gorm:"not null" bson:"password" json:"-"`
}
