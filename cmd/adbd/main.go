// Package main 提供 adbd 命令行入口
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	adb "github.com/Lunaris-AOSP/packages-modules-adb"
	"github.com/Lunaris-AOSP/packages-modules-adb/pkg/lib/log"
)

var logger = log.Logger("adbd/cmd")

// ═══════════════════════════════════════════════════════════════════════════
// 命令行参数
//
//	命令行参数：运行时覆盖 / 快速测试（「这次运行」想怎么跑）
//	JSON 配置文件：持久化配置 / 长期运行（「这个实例」的固定配置）
//
// ═══════════════════════════════════════════════════════════════════════════
var (
	configFile = flag.String("config", "", "配置文件路径")
	listen     = flag.String("listen", "", "监听地址，逗号分隔（如 tcp:5555,tcp:127.0.0.1:5556）")
	noAuth     = flag.Bool("noauth", false, "关闭认证（仅限可调试环境）")

	logFile  = flag.String("log", "", "日志文件路径（默认 stderr）")
	logLevel = flag.String("log-level", "info", "日志级别 (debug/info/warn/error)")
)

func main() {
	flag.Parse()

	if err := setupLogging(); err != nil {
		fmt.Fprintln(os.Stderr, "日志初始化失败:", err)
		os.Exit(1)
	}

	var opts []adb.Option
	if *configFile != "" {
		opts = append(opts, adb.WithConfigFile(*configFile))
	}
	if *listen != "" {
		opts = append(opts, adb.WithListenAddrs(strings.Split(*listen, ",")...))
	}
	if *noAuth {
		opts = append(opts, adb.WithoutAuth())
	}

	d, err := adb.New(opts...)
	if err != nil {
		logger.Error("创建守护进程失败", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := d.Run(ctx); err != nil {
		logger.Error("守护进程退出", "error", err)
		os.Exit(1)
	}
}

// setupLogging 初始化日志输出与级别
func setupLogging() error {
	level := log.LevelInfo
	switch *logLevel {
	case "debug":
		level = log.LevelDebug
	case "info":
		level = log.LevelInfo
	case "warn":
		level = log.LevelWarn
	case "error":
		level = log.LevelError
	default:
		return fmt.Errorf("未知日志级别 %q", *logLevel)
	}

	if *logFile != "" {
		f, err := os.OpenFile(*logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return err
		}
		log.SetOutputWithLevel(f, level)
		return nil
	}
	log.SetOutputWithLevel(os.Stderr, level)
	return nil
}
