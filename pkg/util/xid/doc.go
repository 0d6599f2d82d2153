// Package xid 提供 xttl 存储的键生成器。
//
// 存储只要求键在单个进程内唯一，不关心格式。xid 提供两种实现：
//
//   - [UUID]：随机 UUIDv4（36 字符），默认键生成器
//   - [Generator]：基于 Sonyflake 的可排序 ID，base36 编码（12-13 字符），
//     按生成时间单调递增，便于日志排查
//
// # 快速开始
//
//	key := xid.UUID()
//
//	gen, err := xid.NewGenerator()
//	if err != nil {
//	    return err
//	}
//	store, _ := xttl.New(xttl.WithKeyFunc[string](gen.KeyFunc()))
//
// # 机器 ID 获取策略
//
// [DefaultMachineID] 按以下优先级获取 16 位机器 ID：
//
//  1. XID_MACHINE_ID 环境变量（直接指定 0-65535）
//  2. POD_NAME 环境变量的 xxhash 哈希（K8s Downward API）
//  3. HOSTNAME 环境变量的 xxhash 哈希
//  4. os.Hostname() 的 xxhash 哈希
//
// 哈希方式存在碰撞风险，多节点部署时建议通过 XID_MACHINE_ID 显式分配。
//
// # 时钟回拨
//
// [Generator.NewStringWithRetry] 使用 retry-go 以固定间隔重试，
// 总等待时间不超过 [WithMaxWaitDuration] 指定的上限（默认 500ms）。
// 时间分量溢出（[ErrOverTimeLimit]）不可恢复，不会重试。
package xid
