package verify

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/plugland/plugd/updating"
)

// MismatchError reports an artifact whose digest differs from the
// candidate's expected checksum.
type MismatchError struct {
	Name string
	Want string
	Got  string
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("checksum mismatch for %v: want %v, got %v", e.Name, e.Want, e.Got)
}

// SHA256Verifier checks downloaded artifacts against their expected
// SHA-256 hex digest.
type SHA256Verifier struct{}

// Compile time check for protocol compatibility
var _ updating.Verifier = (*SHA256Verifier)(nil)

func NewSHA256Verifier() *SHA256Verifier {
	return &SHA256Verifier{}
}

func (v *SHA256Verifier) Verify(candidate updating.Candidate, path string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}

	defer file.Close()

	hash := sha256.New()
	if _, err := io.Copy(hash, file); err != nil {
		return err
	}

	got := hex.EncodeToString(hash.Sum(nil))
	want := strings.ToLower(candidate.SHA256)

	if got != want {
		return &MismatchError{
			Name: candidate.Name,
			Want: want,
			Got:  got,
		}
	}

	return nil
}
