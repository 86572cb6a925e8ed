package wire

import (
	"bytes"
	"compress/flate"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
)

// SessionKeySize is the symmetric key size (AES-256).
const SessionKeySize = 32

var (
	ErrCiphertextShort = errors.New("wire: ciphertext shorter than IV")
	ErrCiphertextAlign = errors.New("wire: ciphertext not a whole number of blocks")
	ErrBadPadding      = errors.New("wire: invalid padding")
)

// Codec transforms raw packet bytes to and from their wire form for one
// session: compress, encrypt under the session key with a fresh IV, and
// length-frame. A Codec is safe for concurrent use.
type Codec struct {
	block cipher.Block
}

// NewCodec builds a codec around a 32-byte session key.
func NewCodec(key []byte) (*Codec, error) {
	if len(key) != SessionKeySize {
		return nil, fmt.Errorf("wire: session key must be %d bytes, got %d", SessionKeySize, len(key))
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("wire: new cipher: %w", err)
	}
	return &Codec{block: block}, nil
}

// Encode runs the outbound pipeline: compress raw, encrypt, then
// prepend the 4-byte length of the encrypted payload (IV included).
// The result is ready to write to the socket.
func (c *Codec) Encode(raw []byte) ([]byte, error) {
	compressed, err := Compress(raw)
	if err != nil {
		return nil, err
	}
	encrypted, err := c.encrypt(compressed)
	if err != nil {
		return nil, err
	}
	return PrependLength(encrypted), nil
}

// Decode reverses Encode for one frame payload (the length header is
// already consumed by the framing loop): split the leading IV, decrypt
// the remainder, decompress. Any failure is a decode error the caller
// logs and discards; the connection loop must survive it.
func (c *Codec) Decode(frame []byte) ([]byte, error) {
	compressed, err := c.decrypt(frame)
	if err != nil {
		return nil, err
	}
	return Decompress(compressed)
}

// encrypt applies AES-CBC with PKCS7 padding under a fresh random IV
// and prepends the IV in clear.
func (c *Codec) encrypt(plain []byte) ([]byte, error) {
	padded := pkcs7Pad(plain, aes.BlockSize)
	out := make([]byte, aes.BlockSize+len(padded))
	iv := out[:aes.BlockSize]
	if _, err := io.ReadFull(rand.Reader, iv); err != nil {
		return nil, fmt.Errorf("wire: generate IV: %w", err)
	}
	cipher.NewCBCEncrypter(c.block, iv).CryptBlocks(out[aes.BlockSize:], padded)
	return out, nil
}

func (c *Codec) decrypt(data []byte) ([]byte, error) {
	if len(data) < aes.BlockSize {
		return nil, ErrCiphertextShort
	}
	iv, ct := data[:aes.BlockSize], data[aes.BlockSize:]
	if len(ct) == 0 || len(ct)%aes.BlockSize != 0 {
		return nil, ErrCiphertextAlign
	}
	plain := make([]byte, len(ct))
	cipher.NewCBCDecrypter(c.block, iv).CryptBlocks(plain, ct)
	return pkcs7Unpad(plain, aes.BlockSize)
}

func pkcs7Pad(data []byte, blockSize int) []byte {
	n := blockSize - len(data)%blockSize
	padded := make([]byte, len(data)+n)
	copy(padded, data)
	for i := len(data); i < len(padded); i++ {
		padded[i] = byte(n)
	}
	return padded
}

func pkcs7Unpad(data []byte, blockSize int) ([]byte, error) {
	if len(data) == 0 || len(data)%blockSize != 0 {
		return nil, ErrBadPadding
	}
	n := int(data[len(data)-1])
	if n == 0 || n > blockSize || n > len(data) {
		return nil, ErrBadPadding
	}
	for _, b := range data[len(data)-n:] {
		if int(b) != n {
			return nil, ErrBadPadding
		}
	}
	return data[:len(data)-n], nil
}

// Compress DEFLATE-compresses data.
func Compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	w, err := flate.NewWriter(&buf, flate.DefaultCompression)
	if err != nil {
		return nil, fmt.Errorf("wire: compress: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return nil, fmt.Errorf("wire: compress: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("wire: compress: %w", err)
	}
	return buf.Bytes(), nil
}

// Decompress reverses Compress, refusing to inflate past MaxFrameSize.
func Decompress(data []byte) ([]byte, error) {
	r := flate.NewReader(bytes.NewReader(data))
	defer r.Close()
	out, err := io.ReadAll(io.LimitReader(r, MaxFrameSize+1))
	if err != nil {
		return nil, fmt.Errorf("wire: decompress: %w", err)
	}
	if len(out) > MaxFrameSize {
		return nil, ErrFrameTooLarge
	}
	return out, nil
}
