package ton

import (
	"crypto/ed25519"
	"crypto/sha256"
	"encoding/base64"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"time"
)

// TON Connect proof verification, see
// https://docs.ton.org/develop/dapps/ton-connect/sign

// ProofTTL is how long a TON Connect proof stays valid.
const ProofTTL = 15 * time.Minute

// ConnectProof is the signed proof sent by the wallet.
type ConnectProof struct {
	Timestamp int64  `json:"timestamp"`
	Domain    Domain `json:"domain"`
	Signature string `json:"signature"`
	Payload   string `json:"payload"`
}

type Domain struct {
	LengthBytes int    `json:"lengthBytes"`
	Value       string `json:"value"`
}

// WalletAccount is the wallet account info from TON Connect.
type WalletAccount struct {
	Address   string `json:"address"`
	Chain     string `json:"chain"`
	PublicKey string `json:"publicKey"`
}

// VerifyProof checks wallet ownership: fresh timestamp, expected domain and
// a valid ed25519 signature over the proof message.
func VerifyProof(account WalletAccount, proof ConnectProof, allowedDomain string) error {
	if time.Since(time.Unix(proof.Timestamp, 0)) > ProofTTL {
		return errors.New("proof expired")
	}
	if proof.Domain.Value != allowedDomain {
		return fmt.Errorf("domain mismatch: expected %s, got %s", allowedDomain, proof.Domain.Value)
	}

	pubKeyBytes, err := hex.DecodeString(account.PublicKey)
	if err != nil {
		return fmt.Errorf("invalid public key format: %w", err)
	}
	if len(pubKeyBytes) != ed25519.PublicKeySize {
		return errors.New("invalid public key size")
	}

	signatureBytes, err := base64.StdEncoding.DecodeString(proof.Signature)
	if err != nil {
		return fmt.Errorf("invalid signature format: %w", err)
	}

	if !ed25519.Verify(pubKeyBytes, proofMessage(account.Address, proof), signatureBytes) {
		return errors.New("invalid signature")
	}
	return nil
}

// proofMessage reconstructs the bytes the wallet signed:
// sha256("ton-connect" + sha256("ton-proof-item-v2/" + address + domain + ts + payload))
func proofMessage(address string, proof ConnectProof) []byte {
	var message []byte
	message = append(message, []byte("ton-proof-item-v2/")...)
	message = append(message, []byte(address)...)

	domainLen := make([]byte, 4)
	binary.LittleEndian.PutUint32(domainLen, uint32(proof.Domain.LengthBytes))
	message = append(message, domainLen...)
	message = append(message, []byte(proof.Domain.Value)...)

	timestamp := make([]byte, 8)
	binary.LittleEndian.PutUint64(timestamp, uint64(proof.Timestamp))
	message = append(message, timestamp...)
	message = append(message, []byte(proof.Payload)...)

	hash := sha256.Sum256(message)
	final := sha256.Sum256(append([]byte("ton-connect"), hash[:]...))
	return final[:]
}

// ValidateAddress accepts raw ("0:hex", "-1:hex") and user-friendly
// (48-char base64) TON address formats.
func ValidateAddress(address string) bool {
	if len(address) == 0 {
		return false
	}
	if len(address) >= 66 && (address[0:2] == "0:" || address[0:3] == "-1:") {
		return true
	}
	if len(address) == 48 {
		_, err := base64.URLEncoding.DecodeString(address)
		return err == nil
	}
	return false
}

// NormalizeAddress converts a user-friendly address to the raw
// workchain:hash form; raw addresses pass through.
func NormalizeAddress(address string) (string, error) {
	if len(address) >= 66 && (address[0:2] == "0:" || address[0:3] == "-1:") {
		return address, nil
	}

	if len(address) == 48 {
		decoded, err := base64.URLEncoding.DecodeString(address)
		if err != nil {
			return "", fmt.Errorf("invalid address format: %w", err)
		}
		// 1 byte flags + 1 byte workchain + 32 bytes hash + 2 bytes CRC
		if len(decoded) != 36 {
			return "", errors.New("invalid address length")
		}
		workchain := int8(decoded[1])
		hash := decoded[2:34]
		return fmt.Sprintf("%d:%s", workchain, hex.EncodeToString(hash)), nil
	}

	return "", errors.New("unknown address format")
}
