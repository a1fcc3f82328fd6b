package manager

import (
	"bytes"
	"encoding/gob"
	"fmt"

	"github.com/jonco5555/vault/rpcpb"
)

// encodeGobCiphertext serializes a wire Ciphertext for storage in the vault
// table; the manager never inspects a secret's plaintext, only ferries this
// blob between StoreSecret and RetrieveSecret.
func encodeGobCiphertext(ct rpcpb.Ciphertext) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(ct); err != nil {
		return nil, fmt.Errorf("encode ciphertext: %w", err)
	}
	return buf.Bytes(), nil
}

func decodeGobCiphertext(data []byte) (rpcpb.Ciphertext, error) {
	var ct rpcpb.Ciphertext
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&ct); err != nil {
		return rpcpb.Ciphertext{}, fmt.Errorf("decode ciphertext: %w", err)
	}
	return ct, nil
}
