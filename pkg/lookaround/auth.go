package lookaround

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"math/rand"
	"net/url"
	"strings"
	"time"
)

const (
	tokenP1 = "4cjLaD4jGRwlQ9U"
	tokenP2 = "72xIzEBe0vHBmf9"

	sessionIDLength = 40
	tokenP3Length   = 16
	tokenP3Chars    = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
)

// Authenticator signs tile request URLs the way the first-party Apple
// Maps clients do: the path is encrypted with a key derived from two
// fixed token parts and a random third part, and the result is attached
// as an accessKey parameter.
type Authenticator struct {
	sessionID string
	now       func() time.Time
	rnd       *rand.Rand
}

func NewAuthenticator() *Authenticator {
	rnd := rand.New(rand.NewSource(time.Now().UnixNano()))
	return &Authenticator{
		sessionID: randomDigits(rnd, sessionIDLength),
		now:       time.Now,
		rnd:       rnd,
	}
}

// AuthenticateURL returns the URL with sid and accessKey parameters
// appended.
func (a *Authenticator) AuthenticateURL(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}

	tokenP3 := randomString(a.rnd, tokenP3Chars, tokenP3Length)
	timestamp := a.now().Unix() + 4200

	urlPath := u.Path
	if u.RawQuery != "" {
		urlPath += "?" + u.RawQuery
	}
	sep := "&"
	if u.RawQuery == "" {
		sep = "?"
	}

	plaintext := fmt.Sprintf("%s%ssid=%s%d%s", urlPath, sep, a.sessionID, timestamp, tokenP3)
	key := sha256.Sum256([]byte(tokenP1 + tokenP2 + tokenP3))
	ciphertext, err := encryptCBC(key[:], []byte(plaintext))
	if err != nil {
		return "", err
	}

	cipherURL := url.QueryEscape(base64.StdEncoding.EncodeToString(ciphertext))
	accessKey := fmt.Sprintf("%d_%s_%s", timestamp, tokenP3, cipherURL)
	return fmt.Sprintf("%s%ssid=%s&accessKey=%s", rawURL, sep, a.sessionID, accessKey), nil
}

// encryptCBC is AES-CBC with a zero IV and PKCS7 padding.
func encryptCBC(key, plaintext []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	padLen := aes.BlockSize - len(plaintext)%aes.BlockSize
	padded := make([]byte, len(plaintext)+padLen)
	copy(padded, plaintext)
	for i := len(plaintext); i < len(padded); i++ {
		padded[i] = byte(padLen)
	}
	iv := make([]byte, aes.BlockSize)
	out := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(out, padded)
	return out, nil
}

func randomDigits(rnd *rand.Rand, n int) string {
	var sb strings.Builder
	for i := 0; i < n; i++ {
		sb.WriteByte(byte('0' + rnd.Intn(10)))
	}
	return sb.String()
}

func randomString(rnd *rand.Rand, chars string, n int) string {
	var sb strings.Builder
	for i := 0; i < n; i++ {
		sb.WriteByte(chars[rnd.Intn(len(chars))])
	}
	return sb.String()
}
