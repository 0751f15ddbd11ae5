package model

import "time"

// AuditAction identifies what happened to an audited object.
type AuditAction string

const (
	AuditCredentialCreate AuditAction = "credential.create"
	AuditCredentialReveal AuditAction = "credential.reveal"
	AuditCredentialUpdate AuditAction = "credential.update"
	AuditCredentialDelete AuditAction = "credential.delete"
)

// AuditEvent records a security-relevant action taken by an account.
// It never carries plaintext secrets or ciphertext.
type AuditEvent struct {
	ID        int64
	AccountID int64
	Action    AuditAction
	TargetID  int64
	CreatedAt time.Time
}
