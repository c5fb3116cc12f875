// Package keys defines the access key value types shared by the credential
// store, the identity provider client and the rotation orchestrator.
package keys

// AccessKey is an AWS access key pair. The owning identity is implied by
// whichever credentials were used to create or resolve it; the pair itself
// never carries account information.
type AccessKey struct {
	// ID is the access key ID (the public half, "AKIA..." for IAM users).
	ID string `json:"id"`

	// Secret is the secret access key. Never log this directly; use
	// logging.Secret or Mask.
	Secret string `json:"-"`
}

// Complete reports whether both halves of the pair are present.
func (k AccessKey) Complete() bool {
	return k.ID != "" && k.Secret != ""
}

// Mask returns a display-safe form of a credential component, keeping the
// first and last four characters of longer values.
func Mask(value string) string {
	if len(value) <= 8 {
		return "****"
	}
	return value[:4] + "****" + value[len(value)-4:]
}
