package auth

import (
	"os"
	"strings"

	"go.uber.org/fx"

	"github.com/Lunaris-AOSP/packages-modules-adb/config"
)

// Params 认证模块依赖
type Params struct {
	fx.In

	Cfg    *config.Config
	Policy Policy `optional:"true"`
}

// Module 认证 Fx 模块
var Module = fx.Module("auth",
	fx.Provide(provideAuthenticator),
)

func provideAuthenticator(params Params) (*Authenticator, error) {
	cfg := Config{
		Required:     params.Cfg.Auth.Required,
		AllowNewKeys: params.Cfg.Auth.AllowNewKeys,
	}

	if path := params.Cfg.Auth.AuthorizedKeysFile; path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			// 缺失的公钥文件不是致命错误：首次连接走公钥授权
			logger.Warn("公钥文件不可读", "path", path, "error", err)
		} else {
			cfg.AuthorizedKeys = strings.Split(string(data), "\n")
		}
	}

	return New(cfg, params.Policy)
}
