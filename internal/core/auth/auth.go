package auth

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"strings"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/Lunaris-AOSP/packages-modules-adb/pkg/lib/log"
)

var logger = log.Logger("core/auth")

// TokenSize 挑战长度
const TokenSize = 20

// acceptedKeyCacheSize 已授权公钥缓存容量
const acceptedKeyCacheSize = 64

// Policy 公钥授权策略
//
// 返回 true 表示接受该公钥。为 nil 时采用配置的默认裁决。
type Policy func(key *Key) bool

// Config 认证子系统配置
type Config struct {
	// Required 是否要求认证
	Required bool

	// AllowNewKeys 未配置策略时，是否自动接受新公钥
	AllowNewKeys bool

	// AuthorizedKeys 预装的公钥行（"base64 comment" 每行一把）
	AuthorizedKeys []string
}

// Authenticator 守护进程侧认证器
type Authenticator struct {
	cfg    Config
	policy Policy

	mu       sync.Mutex
	keys     map[string]*Key // 预装公钥，按指纹索引
	accepted *lru.Cache[string, *Key]
}

// New 创建认证器
func New(cfg Config, policy Policy) (*Authenticator, error) {
	cache, err := lru.New[string, *Key](acceptedKeyCacheSize)
	if err != nil {
		return nil, err
	}

	a := &Authenticator{
		cfg:      cfg,
		policy:   policy,
		keys:     make(map[string]*Key),
		accepted: cache,
	}
	for _, line := range cfg.AuthorizedKeys {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		key, err := ParseKey([]byte(line))
		if err != nil {
			logger.Warn("预装公钥无法解析", "error", err)
			continue
		}
		a.keys[key.Fingerprint()] = key
	}
	return a, nil
}

// Required 是否要求认证
func (a *Authenticator) Required() bool {
	return a.cfg.Required
}

// GenerateToken 生成随机挑战
func (a *Authenticator) GenerateToken() ([]byte, error) {
	token := make([]byte, TokenSize)
	if _, err := rand.Read(token); err != nil {
		return nil, err
	}
	return token, nil
}

// VerifySignature 用全部已知公钥验证签名
//
// 签名是对挑战的 RSA PKCS#1 v1.5 / SHA-1：挑战本身即摘要。
func (a *Authenticator) VerifySignature(token, sig []byte) bool {
	if len(token) != TokenSize {
		return false
	}
	for _, key := range a.knownKeys() {
		if rsa.VerifyPKCS1v15(key.Public, crypto.SHA1, token, sig) == nil {
			return true
		}
	}
	return false
}

// ConfirmPublicKey 裁决对端出示的公钥
//
// 接受的公钥进入缓存，此后凭签名即可通过。
func (a *Authenticator) ConfirmPublicKey(payload []byte) bool {
	key, err := ParseKey(payload)
	if err != nil {
		logger.Warn("对端公钥无法解析", "error", err)
		return false
	}

	accepted := a.cfg.AllowNewKeys
	if a.policy != nil {
		accepted = a.policy(key)
	}
	if !accepted {
		return false
	}

	a.mu.Lock()
	a.accepted.Add(key.Fingerprint(), key)
	a.mu.Unlock()
	logger.Info("公钥已授权", "fingerprint", key.Fingerprint()[:16], "comment", key.Comment)
	return true
}

// KnownKeyCount 返回已知公钥总数（预装加已授权）
func (a *Authenticator) KnownKeyCount() int {
	return len(a.knownKeys())
}

func (a *Authenticator) knownKeys() []*Key {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]*Key, 0, len(a.keys)+a.accepted.Len())
	for _, k := range a.keys {
		out = append(out, k)
	}
	for _, fp := range a.accepted.Keys() {
		if k, ok := a.accepted.Peek(fp); ok {
			out = append(out, k)
		}
	}
	return out
}
