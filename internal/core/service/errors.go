package service

import "errors"

var (
	// ErrUnknownService 服务名无法识别
	ErrUnknownService = errors.New("unknown service")

	// ErrUnsupportedService 服务可识别但本进程未装配实现
	ErrUnsupportedService = errors.New("service not supported in this build")

	// ErrBadServiceArg 服务参数无法解析
	ErrBadServiceArg = errors.New("bad service argument")

	// ErrPolicyForbidden 当前模式下禁止该命令
	ErrPolicyForbidden = errors.New("service forbidden by policy")

	// ErrNoSuchProcess jdwp 目标进程未注册
	ErrNoSuchProcess = errors.New("no such jdwp process")
)
