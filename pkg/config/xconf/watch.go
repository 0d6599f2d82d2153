package xconf

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce 默认防抖时间。
const DefaultDebounce = 100 * time.Millisecond

// WatchCallback 在配置文件变更并重载后调用，err 非 nil 表示重载或监视出错。
type WatchCallback func(cfg Config, err error)

// WatchOption 监视选项。
type WatchOption func(*watchOptions)

type watchOptions struct {
	debounce time.Duration
}

// WithDebounce 设置防抖时间，<= 0 时使用 DefaultDebounce。
func WithDebounce(d time.Duration) WatchOption {
	return func(o *watchOptions) {
		if d > 0 {
			o.debounce = d
		}
	}
}

// Watch 监视 cfg 的配置文件，变更时重载并调用 callback。
//
// Watch 阻塞直到 ctx 结束，返回 nil；无法建立监视时立即返回错误。
// 返回后不会再有回调执行。
func Watch(ctx context.Context, cfg Config, callback WatchCallback, opts ...WatchOption) error {
	kc, ok := cfg.(*koanfConfig)
	if !ok || kc.path == "" {
		return ErrNotReloadable
	}

	o := &watchOptions{debounce: DefaultDebounce}
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrWatchFailed, err)
	}
	// 监视目录而非文件本身：编辑器保存时可能先删除再创建
	dir := filepath.Dir(kc.path)
	if err := fsWatcher.Add(dir); err != nil {
		return errors.Join(fmt.Errorf("%w: directory %s: %w", ErrWatchFailed, dir, err), fsWatcher.Close())
	}

	w := &watcher{cfg: kc, callback: callback, debounce: o.debounce}
	defer w.stop()
	defer func() { _ = fsWatcher.Close() }()

	filename := filepath.Base(kc.path)
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fsWatcher.Events:
			if !ok {
				return nil
			}
			if relevant(event, filename) {
				w.schedule()
			}

		case err, ok := <-fsWatcher.Errors:
			if !ok {
				return nil
			}
			w.notify(fmt.Errorf("%w: %w", ErrWatchFailed, err))
		}
	}
}

// relevant 只关心目标文件的写入、创建与 rename（原子写入）事件。
func relevant(event fsnotify.Event, filename string) bool {
	if filepath.Base(event.Name) != filename {
		return false
	}
	return event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename)
}

type watcher struct {
	cfg      *koanfConfig
	callback WatchCallback
	debounce time.Duration

	mu      sync.Mutex
	timer   *time.Timer
	stopped bool
	wg      sync.WaitGroup
}

// schedule 重置防抖定时器。
func (w *watcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopped {
		return
	}
	if w.timer != nil && w.timer.Stop() {
		w.wg.Done()
	}
	w.wg.Add(1)
	w.timer = time.AfterFunc(w.debounce, func() {
		defer w.wg.Done()
		w.mu.Lock()
		stopped := w.stopped
		w.mu.Unlock()
		if stopped {
			return
		}
		w.notify(w.cfg.Reload())
	})
}

func (w *watcher) notify(err error) {
	if w.callback != nil {
		w.callback(w.cfg, err)
	}
}

// stop 取消待执行的重载并等待执行中的回调结束。
func (w *watcher) stop() {
	w.mu.Lock()
	w.stopped = true
	if w.timer != nil && w.timer.Stop() {
		w.wg.Done()
	}
	w.mu.Unlock()
	w.wg.Wait()
}
