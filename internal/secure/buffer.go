// Package secure holds secret material in protected memory.
//
// The rotation orchestrator keeps the ambient secret access key in a
// memguard enclave between resolving it from the credential store and
// handing it to the SDK, so the plaintext is encrypted at rest in process
// memory and protected from swapping via mlock. Call memguard.Purge() at
// process exit for full cleanup.
package secure

import (
	"strings"
	"sync"

	"github.com/awnumar/memguard"
)

// Buffer wraps a memguard enclave holding one secret value.
type Buffer struct {
	enclave *memguard.Enclave
	mu      sync.RWMutex
}

// NewBuffer seals the given secret into a protected buffer. The input string
// is copied; the caller's copy is untouched.
func NewBuffer(secret string) *Buffer {
	return &Buffer{enclave: memguard.NewEnclave([]byte(secret))}
}

// Reveal decrypts the secret and returns a plain-string copy for APIs that
// require one (the AWS SDK credential provider does). The locked view is
// wiped immediately after the copy.
func (b *Buffer) Reveal() (string, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.enclave == nil {
		return "", nil
	}

	locked, err := b.enclave.Open()
	if err != nil {
		return "", err
	}
	defer locked.Destroy()

	return strings.Clone(locked.String()), nil
}

// Destroy drops the enclave reference. Idempotent; Reveal afterwards returns
// an empty string. The encrypted ciphertext is garbage collected.
func (b *Buffer) Destroy() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.enclave = nil
}
