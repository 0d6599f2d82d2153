// Package xttl 提供自动过期的有序/键值双访问集合。
//
// Store 同时表现为按插入顺序排列的序列和按键寻址的映射。
// 每个条目可以携带生存时间（lifetime），到期后自动移除并通知观察者（observer）。
//
// # 核心特性
//
//   - 双访问路径：按键 O(1) 查找，按位置（插入顺序）访问
//   - 条目级 TTL：每个条目独立计时，未设置时使用存储的默认值，0 表示永不过期
//   - 过期通知：条目级观察者优先于存储级默认观察者
//   - 取消作用域：通过 [WithContext] 绑定 context，取消时同步清空并逐个通知
//   - 索引视图：[View] 提供按序号读写（含稀疏填充）的门面
//   - 并发安全：所有方法可并发调用
//
// # 快速开始
//
//	store, err := xttl.New(
//	    xttl.WithLifetime[string](30*time.Second),
//	    xttl.WithObserver(func(v, key string) { log.Println("expired", key, v) }),
//	)
//	if err != nil {
//	    return err
//	}
//	key := store.Push("hello")
//	v, ok := store.Get(key)
//
// # 一致性保证
//
// 有序链表与键索引始终包含完全相同的键，二者只在同一把锁内一起修改。
// 任何移除路径（Delete、Extract、Shift、Pop、覆盖写、Clear、Flush）
// 都会先停止条目的定时器；已经开始执行的过期回调会在加锁后校验条目身份，
// 因此旧定时器永远不会移除复用同一键的新条目。
//
// # 回调约束
//
// 观察者和迭代回调都在锁外执行，可以安全地回调 Store 自身的方法。
// 观察者的 panic 不会被捕获：定时触发的过期会在定时器 goroutine 上 panic。
//
// # 派生集合
//
// Filter、Slice、Concat 返回新的 Store，继承默认 lifetime、观察者、
// 调度器、键生成器、日志和指标，但不继承取消作用域。
// 条目以原键重新写入，定时器重新计时，不保留原条目的剩余时间。
package xttl
