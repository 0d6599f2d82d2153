// Package util 提供通用工具相关的子包。
//
// 子包列表：
//   - xttl: 自过期的有序键值集合，条目到期自动移除并通知观察者
//   - xid: 标识生成，UUID 与可排序的 Sonyflake ID
//
// 设计原则：
//   - 并发安全，锁外回调
//   - 零值配置可用，选项按需覆盖
package util
