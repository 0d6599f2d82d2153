// Package xconf 提供配置文件的加载、反序列化与热重载，基于 koanf 实现。
//
// # 设计理念
//
// xconf 定位为最小化配置加载器，只负责文件/字节数据的加载、反序列化和变更监视。
// 字段校验与默认值由调用方在反序列化后完成（如 xttl.Config.Validate）。
//
// # 支持的格式
//
//   - YAML（推荐）：.yaml, .yml
//   - JSON：.json
//
// # 反序列化
//
// Unmarshal 使用 koanf 内置的 mapstructure 解码，默认允许弱类型转换，
// 并支持 "30ms"、"1m" 这类字符串到 time.Duration 的转换：
//
//	var cfg xttl.Config
//	if err := xconf.Decode("store.yaml", "store", &cfg); err != nil {
//	    return err
//	}
//
// # 并发安全
//
// Reload 解析成功后原子替换 koanf 实例，失败时保留旧配置。
// Client 返回当前实例的快照，Reload 后旧指针仍可用但数据已过期。
//
// # 配置监视
//
// Watch 监视配置文件所在目录（兼容编辑器先删除再创建、原子 rename 的写入方式），
// 防抖后调用 Reload 并通知回调。Watch 阻塞直到 ctx 结束，返回时不再有回调执行。
package xconf
