package utils

import (
	"crypto/rand"
)

// codeCharset is the alphabet for queue/participant codes: upper alnum only
// so codes survive being read over the phone or typed from a printed slip.
const codeCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// maxUnbiasedByte is the largest multiple of len(codeCharset) below 256.
// Bytes at or above it are rejected so every character is equally likely.
const maxUnbiasedByte = 256 / len(codeCharset) * len(codeCharset)

// GenerateCode returns n random upper-alphanumeric characters.
func GenerateCode(n int) (string, error) {
	code := make([]byte, n)
	buf := make([]byte, n)

	filled := 0
	for filled < n {
		if _, err := rand.Read(buf[:n-filled]); err != nil {
			return "", err
		}
		for _, b := range buf[:n-filled] {
			if int(b) >= maxUnbiasedByte {
				continue
			}
			code[filled] = codeCharset[int(b)%len(codeCharset)]
			filled++
		}
	}

	return string(code), nil
}
