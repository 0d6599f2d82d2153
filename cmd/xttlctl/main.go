// xttlctl 按配置文件运行一个自过期存储，直到所有条目过期或收到终止信号。
//
// 用法:
//
//	xttlctl <命令> [命令参数]
//
// 命令:
//
//	run        加载配置并运行存储
//	validate   校验配置并以 JSON 输出解析结果
//
// 配置文件（yaml 或 json）:
//
//	store:
//	  name: sessions
//	  lifetime: 2s
//	items:
//	  - key: alice
//	    value: token-a
//	  - value: token-b      # 未指定 key 时自动生成
//	    lifetime: 500ms     # 单条目生存时间，<= 0 使用 store.lifetime
//
// run 运行期间会监视配置文件，store.lifetime 的变更作用于此后设置的条目。
//
// 退出码:
//
//	0: 存储已清空或收到终止信号后正常退出
//	1: 运行失败
//	2: 参数错误（缺少 --config、无效的日志级别、无效的 cron 表达式等）
//
// 示例:
//
//	xttlctl run --config store.yaml
//	xttlctl run --config store.yaml --keys sonyflake --report "@every 1s" --log-format json
//	xttlctl validate --config store.yaml
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v3"
)

// 版本信息（可通过 -ldflags 注入）。
var (
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
)

func main() {
	os.Exit(run(context.Background(), os.Args))
}

// createApp 创建 CLI 应用。
func createApp() *cli.Command {
	return &cli.Command{
		Name:     "xttlctl",
		Usage:    "运行和校验自过期存储定义",
		Version:  fmt.Sprintf("%s (commit: %s)", Version, GitCommit),
		Commands: createCommands(),
		// 由 run() 统一处理退出码
		ExitErrHandler: func(_ context.Context, _ *cli.Command, err error) {
			if _, ok := err.(cli.ExitCoder); ok {
				fmt.Fprintln(os.Stderr, err)
			}
		},
	}
}

func run(ctx context.Context, args []string) int {
	return exitCode(createApp().Run(ctx, args))
}

// exitCode 将命令错误映射为退出码并输出错误信息。
func exitCode(err error) int {
	if err == nil {
		return 0
	}
	var usageErr *usageError
	if errors.As(err, &usageErr) {
		fmt.Fprintf(os.Stderr, "参数错误: %v\n", usageErr)
		return 2
	}
	if isCLIUsageError(err) {
		fmt.Fprintf(os.Stderr, "参数错误: %v\n", err)
		return 2
	}
	fmt.Fprintf(os.Stderr, "错误: %v\n", err)
	return 1
}

// usageError 表示参数错误，退出码 2。
type usageError struct {
	msg string
	err error
}

func (e *usageError) Error() string {
	if e.err != nil {
		return e.msg + ": " + e.err.Error()
	}
	return e.msg
}

func (e *usageError) Unwrap() error { return e.err }

// isCLIUsageError 判断错误是否来自 CLI 框架的参数解析。
func isCLIUsageError(err error) bool {
	msg := err.Error()
	for _, prefix := range []string{
		"flag provided but not defined",
		"Required flag",
		"invalid value",
		"No help topic",
	} {
		if strings.Contains(msg, prefix) {
			return true
		}
	}
	return false
}
