package course

import "time"

// Certificate is issued once per learner and course when every required section is completed.
type Certificate struct {
	ID                uint      `json:"id" gorm:"primaryKey"`
	UserID            uint      `json:"user_id" gorm:"not null;uniqueIndex:idx_certificates_user_course"`
	CourseID          uint      `json:"course_id" gorm:"not null;index;uniqueIndex:idx_certificates_user_course"`
	CertificateNumber string    `json:"certificate_number" gorm:"not null;uniqueIndex"`
	IssuedAt          time.Time `json:"issued_at"`
	CreatedAt         time.Time `json:"created_at"`
}
