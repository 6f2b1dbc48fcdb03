package service

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/des"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"kekspay-gateway/pkg/apperror"
)

// Algo codes sent to the provider alongside the hash.
const (
	AlgoTripleDES = 0
	AlgoAES       = 1
)

// Cipher is the block cipher selected for a merchant secret key.
type Cipher struct {
	Name      string // openssl name, e.g. "aes-128-cbc"
	AlgoCode  int
	BlockSize int

	newBlock func(key []byte) (cipher.Block, error)
}

// SelectCipher picks 3DES for a 24 character hex key and AES for any other
// key of 16, 24 or 32 bytes. The key bytes are used as-is, never decoded.
func SelectCipher(key string) (Cipher, error) {
	if len(key) == 24 && isHexText(key) {
		return Cipher{
			Name:      "des-ede3-cbc",
			AlgoCode:  AlgoTripleDES,
			BlockSize: des.BlockSize,
			newBlock:  des.NewTripleDESCipher,
		}, nil
	}

	switch len(key) {
	case 16, 24, 32:
		return Cipher{
			Name:      fmt.Sprintf("aes-%d-cbc", len(key)*8),
			AlgoCode:  AlgoAES,
			BlockSize: aes.BlockSize,
			newBlock:  aes.NewCipher,
		}, nil
	}

	return Cipher{}, apperror.ErrInvalidKeyLength(len(key))
}

// HashInput holds the values the provider signs a request over.
type HashInput struct {
	BillID    string
	TID       string
	Amount    string // natural decimal form, e.g. "50" or "13.27"
	Timestamp int64
}

// Payload is the byte string that gets checksummed:
// timestamp, tid, amount and bill id concatenated.
func (in HashInput) Payload() []byte {
	return []byte(strconv.FormatInt(in.Timestamp, 10) + in.TID + in.Amount + in.BillID)
}

// ComputeHash encrypts the raw MD5 of the payload with the merchant secret
// key (CBC, zero IV, PKCS#7) and returns it as uppercase hex.
func ComputeHash(in HashInput, key string) (string, error) {
	c, err := SelectCipher(key)
	if err != nil {
		return "", apperror.ErrHashGenerationFailed(err)
	}

	block, err := c.newBlock([]byte(key))
	if err != nil {
		return "", apperror.ErrHashGenerationFailed(fmt.Errorf("creating %s cipher: %w", c.Name, err))
	}

	checksum := md5.Sum(in.Payload())
	plaintext := pkcs7Pad(checksum[:], c.BlockSize)
	iv := make([]byte, c.BlockSize)

	out := make([]byte, len(plaintext))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(out, plaintext)

	return strings.ToUpper(hex.EncodeToString(out)), nil
}

func pkcs7Pad(data []byte, blockSize int) []byte {
	padding := blockSize - len(data)%blockSize
	return append(append([]byte{}, data...), bytes.Repeat([]byte{byte(padding)}, padding)...)
}

func isHexText(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !strings.ContainsRune("0123456789abcdefABCDEF", rune(s[i])) {
			return false
		}
	}
	return true
}
