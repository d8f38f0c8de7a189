package auth

import (
	"crypto/rsa"
	"crypto/sha256"
	"encoding/base64"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"
)

// Android 公钥布局常量（2048 位 RSA）
const (
	modulusSize  = 256
	modulusWords = modulusSize / 4
	// blobSize = words(4) + n0inv(4) + modulus + rr + exponent(4)
	blobSize = 4 + 4 + modulusSize + modulusSize + 4
)

// Key 一把已解析的对端公钥
type Key struct {
	Public  *rsa.PublicKey
	Comment string
}

// Fingerprint 返回公钥的 SHA-256 十六进制指纹
func (k *Key) Fingerprint() string {
	sum := sha256.Sum256(k.Public.N.Bytes())
	return hex.EncodeToString(sum[:])
}

// reverse 原地反转字节序（blob 内多字节量一律小端）
func reverse(b []byte) []byte {
	for i, j := 0, len(b)-1; i < j; i, j = i+1, j-1 {
		b[i], b[j] = b[j], b[i]
	}
	return b
}

// ParseKey 解析线上的公钥负载
//
// 形式为 "base64(blob)[ comment]"，允许尾随 NUL 或换行。
func ParseKey(payload []byte) (*Key, error) {
	text := strings.TrimRight(string(payload), "\x00\n")
	encoded, comment, _ := strings.Cut(text, " ")

	blob, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedKey, err)
	}
	pub, err := decodeBlob(blob)
	if err != nil {
		return nil, err
	}
	return &Key{Public: pub, Comment: comment}, nil
}

// decodeBlob 解出 Android 布局的 RSA 公钥
func decodeBlob(blob []byte) (*rsa.PublicKey, error) {
	if len(blob) != blobSize {
		return nil, fmt.Errorf("%w: %d != %d", ErrKeyLength, len(blob), blobSize)
	}
	words := binary.LittleEndian.Uint32(blob[0:4])
	if words != modulusWords {
		return nil, fmt.Errorf("%w: %d words", ErrUnsupportedKeySize, words)
	}

	modulus := make([]byte, modulusSize)
	copy(modulus, blob[8:8+modulusSize])
	n := new(big.Int).SetBytes(reverse(modulus))

	exponent := binary.LittleEndian.Uint32(blob[8+2*modulusSize : 8+2*modulusSize+4])
	if exponent != 3 && exponent != 65537 {
		return nil, fmt.Errorf("%w: exponent %d", ErrMalformedKey, exponent)
	}

	return &rsa.PublicKey{N: n, E: int(exponent)}, nil
}

// EncodeKey 生成线上形式的公钥负载
//
// 蒙哥马利参数（n0inv、rr）按源布局补齐，主机实现依赖它们做快速验签。
func EncodeKey(pub *rsa.PublicKey, comment string) ([]byte, error) {
	if pub.N.BitLen() != modulusSize*8 {
		return nil, ErrUnsupportedKeySize
	}

	blob := make([]byte, blobSize)
	binary.LittleEndian.PutUint32(blob[0:4], modulusWords)

	// n0inv = -1 / n[0] mod 2^32
	b32 := big.NewInt(1)
	b32.Lsh(b32, 32)
	n0 := new(big.Int).Mod(pub.N, b32)
	n0inv := new(big.Int).ModInverse(n0, b32)
	n0inv.Sub(b32, n0inv)
	binary.LittleEndian.PutUint32(blob[4:8], uint32(n0inv.Uint64()))

	modulus := pub.N.FillBytes(make([]byte, modulusSize))
	copy(blob[8:], reverse(modulus))

	// rr = (2^2048)^2 mod n
	rr := big.NewInt(1)
	rr.Lsh(rr, modulusSize*8*2)
	rr.Mod(rr, pub.N)
	rrBytes := rr.FillBytes(make([]byte, modulusSize))
	copy(blob[8+modulusSize:], reverse(rrBytes))

	binary.LittleEndian.PutUint32(blob[8+2*modulusSize:], uint32(pub.E))

	out := base64.StdEncoding.EncodeToString(blob)
	if comment != "" {
		out += " " + comment
	}
	return []byte(out), nil
}
