package xid

import "errors"

var (
	// ErrClockBackwardTimeout 时钟回拨等待超时。
	ErrClockBackwardTimeout = errors.New("xid: clock backward wait timeout")

	// ErrInvalidID ID 字符串无效（语法错误或非正值）。
	ErrInvalidID = errors.New("xid: invalid id")

	// ErrOverTimeLimit 时间分量溢出，生成器无法继续生成 ID。
	ErrOverTimeLimit = errors.New("xid: time component overflow")

	// ErrNilContext context 参数为 nil。
	ErrNilContext = errors.New("xid: nil context")

	// ErrInvalidConfig 配置参数无效。
	ErrInvalidConfig = errors.New("xid: invalid config")

	// ErrNilGenerator 生成器为 nil 或未通过 NewGenerator 创建。
	ErrNilGenerator = errors.New("xid: nil generator (use NewGenerator to create)")

	// ErrNoMachineID 所有机器 ID 获取策略均失败。
	ErrNoMachineID = errors.New("xid: no machine id available")
)
