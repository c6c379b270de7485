package models

import "time"

// CodePurpose tells verification codes apart from password reset codes.
type CodePurpose string

const (
	CodeVerify CodePurpose = "verify"
	CodeReset  CodePurpose = "reset"
)

// Code is an emailed one-time code. At most one code per user and purpose
// exists; issuing a new one replaces the old.
type Code struct {
	UserID   string
	Purpose  CodePurpose
	CodeHash string
	Expires  time.Time
	Attempts int
}
