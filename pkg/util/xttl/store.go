package xttl

import (
	"container/list"
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/omeyang/xttl/pkg/observability/xlog"
	"github.com/omeyang/xttl/pkg/observability/xmetrics"
	"github.com/omeyang/xttl/pkg/util/xid"
)

const (
	defaultName = "default"

	// maxKeyAttempts 键生成器连续冲突的上限，超过后回退到 xid.UUID。
	maxKeyAttempts = 8
)

// entry 创建后除 timer 外不再修改；timer 只在持锁时读写。
type entry[V any] struct {
	key   string
	value V
	// observer 条目级观察者，取消作用域清空时使用。
	observer Observer[V]
	// onExpire 写入时解析的过期观察者（条目级优先，否则为当时的默认值）。
	onExpire Observer[V]
	timer    Timer
}

// Store 是自动过期的有序/键值双访问集合。
// 必须通过 [New] 或 [NewFromConfig] 创建，所有方法并发安全。
type Store[V any] struct {
	mu       sync.Mutex
	order    *list.List               // *entry[V]，插入顺序
	index    map[string]*list.Element // 与 order 始终包含相同的键
	lifetime time.Duration
	observer Observer[V]

	scheduler  Scheduler
	keyFunc    func() string
	name       string
	baseLogger xlog.Logger
	logger     xlog.Logger
	recorder   xmetrics.Recorder
	ctx        context.Context // 日志与指标使用，不随取消作用域结束
	stopScope  func() bool
}

// New 创建 Store。默认 lifetime 为负值时返回 [ErrInvalidLifetime]。
func New[V any](opts ...Option[V]) (*Store[V], error) {
	o := &options[V]{
		scheduler: DefaultScheduler(),
		keyFunc:   xid.UUID,
		name:      defaultName,
		logger:    xlog.Discard(),
		recorder:  xmetrics.NoopRecorder{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}
	if o.lifetime < 0 {
		return nil, fmt.Errorf("%w: got %s", ErrInvalidLifetime, o.lifetime)
	}
	if o.name == "" {
		o.name = defaultName
	}

	s := newStore(o)
	if o.ctx != nil {
		s.ctx = context.WithoutCancel(o.ctx)
		s.bind(o.ctx)
	}
	return s, nil
}

func newStore[V any](o *options[V]) *Store[V] {
	return &Store[V]{
		order:      list.New(),
		index:      make(map[string]*list.Element),
		lifetime:   o.lifetime,
		observer:   o.observer,
		scheduler:  o.scheduler,
		keyFunc:    o.keyFunc,
		name:       o.name,
		baseLogger: o.logger,
		logger:     o.logger.With(slog.String("store", o.name)),
		recorder:   o.recorder,
		ctx:        context.Background(),
	}
}

// Name 返回存储名。
func (s *Store[V]) Name() string {
	return s.name
}

// Lifetime 返回默认生存时间。
func (s *Store[V]) Lifetime() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lifetime
}

// SetLifetime 修改默认生存时间，只影响之后写入的条目。负值返回 [ErrInvalidLifetime]。
func (s *Store[V]) SetLifetime(d time.Duration) error {
	if d < 0 {
		return fmt.Errorf("%w: got %s", ErrInvalidLifetime, d)
	}
	s.mu.Lock()
	s.lifetime = d
	s.mu.Unlock()
	return nil
}

// SetObserver 修改默认观察者。
// 已写入条目的过期观察者在写入时确定，不受影响；取消作用域清空时使用最新值。
func (s *Store[V]) SetObserver(fn func(value V, key string)) {
	s.mu.Lock()
	s.observer = fn
	s.mu.Unlock()
}

// ---------------------------------------------------------------------------
// 按键访问
// ---------------------------------------------------------------------------

// Set 写入或替换 key 对应的条目，返回 s 以便链式调用。
//
// 空 key 静默忽略。key 已存在时先停止旧定时器，再原位替换（位置不变）。
// 新条目使用 EntryLifetime 或默认 lifetime 计时，到期时通知
// EntryObserver 或默认观察者。
func (s *Store[V]) Set(key string, value V, opts ...EntryOption[V]) *Store[V] {
	if key == "" {
		return s
	}
	eo := applyEntryOptions(opts)

	s.mu.Lock()
	var t tally
	t.add(s.setLocked(key, value, eo))
	s.mu.Unlock()

	s.report(t)
	return s
}

// Get 返回 key 对应的值，不刷新定时器。
func (s *Store[V]) Get(key string) (V, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if el, ok := s.index[key]; ok {
		return el.Value.(*entry[V]).value, true
	}
	var zero V
	return zero, false
}

// Has 报告 key 是否存在。
func (s *Store[V]) Has(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.index[key]
	return ok
}

// Delete 移除 key 对应的条目，返回 key 是否存在。
func (s *Store[V]) Delete(key string) bool {
	_, ok := s.Extract(key)
	return ok
}

// Extract 移除 key 对应的条目并返回其值。
func (s *Store[V]) Extract(key string) (V, bool) {
	s.mu.Lock()
	el, ok := s.index[key]
	if !ok {
		s.mu.Unlock()
		var zero V
		return zero, false
	}
	e := s.unlinkLocked(el)
	s.mu.Unlock()

	s.removed(EventRemoved, 1)
	return e.value, true
}

// ---------------------------------------------------------------------------
// 按位置访问
// ---------------------------------------------------------------------------

// Push 以自动生成的键追加 value，返回该键。
func (s *Store[V]) Push(value V, opts ...EntryOption[V]) string {
	eo := applyEntryOptions(opts)

	s.mu.Lock()
	key := s.newKeyLocked()
	var t tally
	t.add(s.setLocked(key, value, eo))
	s.mu.Unlock()

	s.report(t)
	return key
}

// Shift 移除并返回第一个条目的值。
func (s *Store[V]) Shift() (V, bool) {
	return s.extractElement(func() *list.Element { return s.order.Front() })
}

// Pop 移除并返回最后一个条目的值。
func (s *Store[V]) Pop() (V, bool) {
	return s.extractElement(func() *list.Element { return s.order.Back() })
}

// At 返回位置 i 的值，i 越界（含负数）时返回 false。
func (s *Store[V]) At(i int) (V, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if el := s.elementLocked(i); el != nil {
		return el.Value.(*entry[V]).value, true
	}
	var zero V
	return zero, false
}

// ExtractAt 移除并返回位置 i 的值。
func (s *Store[V]) ExtractAt(i int) (V, bool) {
	return s.extractElement(func() *list.Element { return s.elementLocked(i) })
}

// First 返回第一个条目的值，不修改集合。
func (s *Store[V]) First() (V, bool) {
	return s.At(0)
}

// Last 返回最后一个条目的值，不修改集合。
func (s *Store[V]) Last() (V, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if el := s.order.Back(); el != nil {
		return el.Value.(*entry[V]).value, true
	}
	var zero V
	return zero, false
}

// Next 是 First 的别名。
func (s *Store[V]) Next() (V, bool) {
	return s.First()
}

// ---------------------------------------------------------------------------
// 批量
// ---------------------------------------------------------------------------

// Clear 停止所有定时器并清空集合，不通知观察者。
func (s *Store[V]) Clear() {
	_, span := xmetrics.Start(s.ctx, s.recorder, xmetrics.SpanOptions{Component: s.name, Operation: opClear})

	s.mu.Lock()
	n := len(s.drainLocked())
	s.mu.Unlock()

	s.removed(EventRemoved, n)
	s.logger.Debug(s.ctx, "store cleared", slog.Int("entries", n))
	span.End(xmetrics.Result{Attrs: []xmetrics.Attr{xmetrics.Int("entries", n)}})
}

// Len 返回存活条目数。
func (s *Store[V]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.order.Len()
}

// Size 与 Len 相同。
func (s *Store[V]) Size() int {
	return s.Len()
}

// IsEmpty 报告集合是否为空。
func (s *Store[V]) IsEmpty() bool {
	return s.Len() == 0
}

// ---------------------------------------------------------------------------
// 内部实现（调用方须持有 s.mu）
// ---------------------------------------------------------------------------

// setLocked 写入条目并安排定时器，返回是否新增以及是否启动了定时器。
func (s *Store[V]) setLocked(key string, value V, eo entryOptions[V]) (added, armed bool) {
	lifetime := eo.lifetime
	if lifetime <= 0 {
		lifetime = s.lifetime
	}
	onExpire := eo.observer
	if onExpire == nil {
		onExpire = s.observer
	}

	e := &entry[V]{key: key, value: value, observer: eo.observer, onExpire: onExpire}
	if el, ok := s.index[key]; ok {
		old := el.Value.(*entry[V])
		disarm(old.timer)
		old.timer = nil
		el.Value = e
	} else {
		s.index[key] = s.order.PushBack(e)
		added = true
	}
	e.timer = arm(s.scheduler, lifetime, func() { s.expire(e) })
	return added, e.timer != nil
}

// replaceLocked 原位替换 el 的值，保留键，不再计时，也不保留条目级观察者。
func (s *Store[V]) replaceLocked(el *list.Element, value V) {
	old := el.Value.(*entry[V])
	disarm(old.timer)
	old.timer = nil
	el.Value = &entry[V]{key: old.key, value: value}
}

// unlinkLocked 从链表和索引中同时移除 el 并停止其定时器。
func (s *Store[V]) unlinkLocked(el *list.Element) *entry[V] {
	e := s.order.Remove(el).(*entry[V])
	delete(s.index, e.key)
	disarm(e.timer)
	e.timer = nil
	return e
}

// drainLocked 按插入顺序取出全部条目，停止定时器并清空两个结构。
func (s *Store[V]) drainLocked() []*entry[V] {
	drained := make([]*entry[V], 0, s.order.Len())
	for el := s.order.Front(); el != nil; el = el.Next() {
		e := el.Value.(*entry[V])
		disarm(e.timer)
		e.timer = nil
		drained = append(drained, e)
	}
	s.order.Init()
	clear(s.index)
	return drained
}

// elementLocked 返回位置 i 的元素，从较近的一端遍历。
func (s *Store[V]) elementLocked(i int) *list.Element {
	n := s.order.Len()
	if i < 0 || i >= n {
		return nil
	}
	if i < n/2 {
		el := s.order.Front()
		for range i {
			el = el.Next()
		}
		return el
	}
	el := s.order.Back()
	for range n - 1 - i {
		el = el.Prev()
	}
	return el
}

// newKeyLocked 生成当前不存在的非空键。
func (s *Store[V]) newKeyLocked() string {
	for range maxKeyAttempts {
		if key := s.keyFunc(); key != "" {
			if _, dup := s.index[key]; !dup {
				return key
			}
		}
	}
	for {
		key := xid.UUID()
		if _, dup := s.index[key]; !dup {
			return key
		}
	}
}

func (s *Store[V]) extractElement(pick func() *list.Element) (V, bool) {
	s.mu.Lock()
	el := pick()
	if el == nil {
		s.mu.Unlock()
		var zero V
		return zero, false
	}
	e := s.unlinkLocked(el)
	s.mu.Unlock()

	s.removed(EventRemoved, 1)
	return e.value, true
}

// expire 是定时器回调。条目已被移除或被替换时直接返回，保证至多通知一次。
func (s *Store[V]) expire(e *entry[V]) {
	s.mu.Lock()
	el, ok := s.index[e.key]
	if !ok || el.Value.(*entry[V]) != e {
		s.mu.Unlock()
		return
	}
	s.unlinkLocked(el)
	s.mu.Unlock()

	s.removed(EventExpired, 1)
	s.logger.Debug(s.ctx, "entry expired", slog.String("key", e.key))
	if e.onExpire != nil {
		e.onExpire(e.value, e.key)
	}
}

// ---------------------------------------------------------------------------
// 指标
// ---------------------------------------------------------------------------

type tally struct {
	added int
	armed int
}

func (t *tally) add(added, armed bool) {
	if added {
		t.added++
	}
	if armed {
		t.armed++
	}
}

func (s *Store[V]) report(t tally) {
	if t.armed > 0 {
		s.recorder.Event(s.ctx, s.name, EventArmed, int64(t.armed))
	}
	if t.added > 0 {
		s.recorder.Live(s.ctx, s.name, int64(t.added))
	}
}

func (s *Store[V]) removed(event string, n int) {
	if n <= 0 {
		return
	}
	s.recorder.Event(s.ctx, s.name, event, int64(n))
	s.recorder.Live(s.ctx, s.name, -int64(n))
}
