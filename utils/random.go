package utils

import (
	"crypto/rand"
	"fmt"
)

// ExchangeCodeCharset omits 0, 1, I and O so printed codes are not misread.
const ExchangeCodeCharset = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// GenerateCode returns a random code of the given length drawn from charset.
func GenerateCode(length int, charset string) (string, error) {
	if length <= 0 || charset == "" {
		return "", fmt.Errorf("invalid code length %d or empty charset", length)
	}

	// Reject bytes above the largest multiple of len(charset) to keep the
	// distribution uniform.
	limit := 256 - 256%len(charset)
	code := make([]byte, 0, length)
	buf := make([]byte, length)
	for len(code) < length {
		if _, err := rand.Read(buf); err != nil {
			return "", err
		}
		for _, b := range buf {
			if int(b) >= limit {
				continue
			}
			code = append(code, charset[int(b)%len(charset)])
			if len(code) == length {
				break
			}
		}
	}

	return string(code), nil
}

func GenerateExchangeCode() (string, error) {
	return GenerateCode(8, ExchangeCodeCharset)
}
