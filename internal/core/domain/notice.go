package domain

import "time"

// NoticeKind distinguishes the in-app notices the gateway emits.
type NoticeKind string

const (
	NoticeMilestone NoticeKind = "milestone"
	NoticeReminder  NoticeKind = "reminder"
)

// Notice is a user-visible message produced by the streak notifier.
type Notice struct {
	ID          string     `json:"id" bson:"_id"`
	Username    string     `json:"-" bson:"username"`
	Kind        NoticeKind `json:"kind" bson:"kind"`
	Title       string     `json:"title" bson:"title"`
	Description string     `json:"description" bson:"description"`
	Streak      int        `json:"streak" bson:"streak"`
	CreatedAt   time.Time  `json:"created_at" bson:"created_at"`
}
