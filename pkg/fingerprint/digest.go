package fingerprint

import (
	"crypto/md5"
	"encoding/hex"
	"os"

	"github.com/arthur-debert/kiln/pkg/errors"
)

// Digester computes content and command digests. The algorithm only has
// to detect change, not resist attack, so it stays swappable behind this
// interface.
type Digester interface {
	// File digests the current on-disk bytes at path. A path with no
	// regular file behind it digests as the empty byte sequence, a
	// distinct deterministic value rather than a missing entry.
	File(path string) (string, error)

	// Command digests the exact command text
	Command(command string) string
}

// MD5 is the default Digester: 128-bit hex output, cheap and stable
type MD5 struct{}

// NewMD5 returns the default digester
func NewMD5() MD5 {
	return MD5{}
}

// File implements Digester
func (MD5) File(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		if err == nil || os.IsNotExist(err) {
			// Absent counts as empty content, not as an error
			sum := md5.Sum(nil)
			return hex.EncodeToString(sum[:]), nil
		}
		return "", errors.Wrapf(err, errors.ErrFileAccess, "cannot stat %s", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrFileAccess, "cannot read %s", path)
	}
	sum := md5.Sum(data)
	return hex.EncodeToString(sum[:]), nil
}

// Command implements Digester
func (MD5) Command(command string) string {
	sum := md5.Sum([]byte(command))
	return hex.EncodeToString(sum[:])
}
