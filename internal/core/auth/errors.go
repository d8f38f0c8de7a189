package auth

import "errors"

var (
	// ErrMalformedKey 公钥 blob 无法解析
	ErrMalformedKey = errors.New("malformed public key")

	// ErrKeyLength 公钥 blob 长度不符
	ErrKeyLength = errors.New("public key has wrong length")

	// ErrUnsupportedKeySize 模数宽度不是 2048 位
	ErrUnsupportedKeySize = errors.New("unsupported RSA modulus size")
)
