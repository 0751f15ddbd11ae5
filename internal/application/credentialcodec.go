package application

import (
	"fmt"
	"time"

	"github.com/ericfisherdev/docnest/internal/domain/model"
	"github.com/ericfisherdev/docnest/internal/domain/port/driven"
)

// maxLabelLen bounds website and username, matching the column contract.
const maxLabelLen = 255

// CredentialPayload is the write-view input. Nil fields were absent from the
// request. Any owner or id sent by the client is dropped during decoding.
type CredentialPayload struct {
	Website  *string
	Username *string
	Password *string
}

// CredentialSummary is the write-view output. It never carries the password.
type CredentialSummary struct {
	ID        int64
	Website   string
	Username  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CredentialView is the read-view output with the decrypted password.
type CredentialView struct {
	CredentialSummary
	Password string
}

// DecodeCredentialPayload parses a JSON request body into a CredentialPayload.
// Non-string values yield a ValidationError naming the offending field.
func DecodeCredentialPayload(raw []byte) (CredentialPayload, error) {
	fields, err := decodeStringFields(raw, "website", "username", "password")
	if err != nil {
		return CredentialPayload{}, err
	}
	return CredentialPayload{
		Website:  fields["website"],
		Username: fields["username"],
		Password: fields["password"],
	}, nil
}

// CredentialCodec translates between the wire payload and the stored record.
// It is the only component that calls the Cipher for credentials.
type CredentialCodec struct {
	cipher driven.Cipher
}

// NewCredentialCodec creates a codec bound to the process-wide cipher.
func NewCredentialCodec(cipher driven.Cipher) *CredentialCodec {
	return &CredentialCodec{cipher: cipher}
}

// validate trims surrounding whitespace from the labels and checks every
// rule. Label content is otherwise stored exactly as sent. partial relaxes
// the required rule for absent fields.
func (c *CredentialCodec) validate(p *CredentialPayload, partial bool) error {
	p.Website = trimmed(p.Website)
	p.Username = trimmed(p.Username)

	verr := NewValidationError()
	checkText(verr, "website", p.Website, partial, maxLabelLen)
	checkText(verr, "username", p.Username, partial, maxLabelLen)
	checkText(verr, "password", p.Password, partial, 0)
	return verr.errOrNil()
}

// NewRecord validates a create payload and builds a record for ownerID with
// the password sealed.
func (c *CredentialCodec) NewRecord(ownerID int64, p CredentialPayload) (model.Credential, error) {
	if err := c.validate(&p, false); err != nil {
		return model.Credential{}, err
	}

	ciphertext, err := c.cipher.Encrypt(*p.Password)
	if err != nil {
		return model.Credential{}, fmt.Errorf("encrypt password: %w", err)
	}

	return model.Credential{
		OwnerID:            ownerID,
		Website:            *p.Website,
		Username:           *p.Username,
		PasswordCiphertext: ciphertext,
	}, nil
}

// Apply validates an update payload and merges it into rec. When partial is
// false every field is required. The password is re-sealed only when the
// payload supplies one; otherwise the stored ciphertext is kept as is.
func (c *CredentialCodec) Apply(rec model.Credential, p CredentialPayload, partial bool) (model.Credential, error) {
	if err := c.validate(&p, partial); err != nil {
		return model.Credential{}, err
	}

	if p.Website != nil {
		rec.Website = *p.Website
	}
	if p.Username != nil {
		rec.Username = *p.Username
	}
	if p.Password != nil {
		ciphertext, err := c.cipher.Encrypt(*p.Password)
		if err != nil {
			return model.Credential{}, fmt.Errorf("encrypt password: %w", err)
		}
		rec.PasswordCiphertext = ciphertext
	}

	return rec, nil
}

// Summary renders the write view of rec.
func (c *CredentialCodec) Summary(rec model.Credential) CredentialSummary {
	return CredentialSummary{
		ID:        rec.ID,
		Website:   rec.Website,
		Username:  rec.Username,
		CreatedAt: rec.CreatedAt,
		UpdatedAt: rec.UpdatedAt,
	}
}

// Reveal renders the read view of rec, decrypting the password on every call.
func (c *CredentialCodec) Reveal(rec model.Credential) (CredentialView, error) {
	password, err := c.cipher.Decrypt(rec.PasswordCiphertext)
	if err != nil {
		return CredentialView{}, fmt.Errorf("reveal credential %d: %w", rec.ID, err)
	}
	return CredentialView{CredentialSummary: c.Summary(rec), Password: password}, nil
}
