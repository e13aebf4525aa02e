package keys

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/dmitrijs2005/passkeeper/internal/common"
	"github.com/dmitrijs2005/passkeeper/internal/cryptox"
)

const redacted = "[KEY]"

// Material is the raw vault key. It redacts itself when formatted or
// marshalled so it cannot leak through logs.
type Material []byte

func (m Material) String() string { return redacted }

// Format implements fmt.Formatter so every verb prints the redaction marker.
func (m Material) Format(f fmt.State, _ rune) {
	_, _ = io.WriteString(f, redacted)
}

func (m Material) MarshalJSON() ([]byte, error) { return json.Marshal(redacted) }

func (m Material) MarshalText() ([]byte, error) { return []byte(redacted), nil }

// Zero overwrites the key bytes.
func (m Material) Zero() {
	common.WipeByteArray(m)
}

func encodeMaterial(m Material) []byte {
	return []byte(base64.StdEncoding.EncodeToString(m) + "\n")
}

func decodeMaterial(raw []byte) (Material, error) {
	b, err := base64.StdEncoding.DecodeString(strings.TrimSpace(string(raw)))
	if err != nil {
		return nil, fmt.Errorf("%w: malformed key artifact: %w", common.ErrStorage, err)
	}
	if len(b) != cryptox.KeySize {
		return nil, fmt.Errorf("%w: malformed key artifact: expected %d bytes, got %d", common.ErrStorage, cryptox.KeySize, len(b))
	}
	return Material(b), nil
}
