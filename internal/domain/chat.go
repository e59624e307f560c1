package domain

import "github.com/google/uuid"

const MessageTypeText = "text"

// ProjectChat is one message in a project's discussion.
type ProjectChat struct {
	BaseModel
	ProjectID   uuid.UUID `gorm:"type:uuid;not null;index" json:"project_id"`
	UserEmail   string    `gorm:"type:varchar(255);not null" json:"user_email"`
	UserName    string    `gorm:"type:varchar(255)" json:"user_name"`
	Message     string    `gorm:"type:text;not null" json:"message"`
	MessageType string    `gorm:"type:varchar(20);not null;default:'text'" json:"message_type"`
}

func (ProjectChat) TableName() string      { return "project_chats" }
func (ProjectChat) CollectionName() string { return CollectionProjectChat }
