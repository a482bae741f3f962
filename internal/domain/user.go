package domain

import "time"

// User identifica a un participante por la clave compuesta (grupo, miembro).
type User struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	StudentID string    `json:"student_id"`
	Group     int       `json:"group"`
	Member    string    `json:"member"`
	Consent   string    `json:"consent"`
	CreatedAt time.Time `json:"created_at"`
}
