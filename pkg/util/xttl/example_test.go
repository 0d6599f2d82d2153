package xttl_test

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/omeyang/xttl/pkg/util/xttl"
)

func Example() {
	done := make(chan struct{})
	store, err := xttl.New(
		xttl.WithLifetime[string](20*time.Millisecond),
		xttl.WithObserver(func(v, _ string) {
			fmt.Println("expired:", v)
			close(done)
		}),
	)
	if err != nil {
		fmt.Println(err)
		return
	}

	store.Set("greeting", "hello")
	v, ok := store.Get("greeting")
	fmt.Println(v, ok)

	<-done
	fmt.Println("size:", store.Size())
	// Output:
	// hello true
	// expired: hello
	// size: 0
}

func ExampleWithContext() {
	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	wg.Add(3)
	store, _ := xttl.New(
		xttl.WithContext[int](ctx),
		xttl.WithObserver(func(v int, key string) {
			fmt.Println("default:", key, v)
			wg.Done()
		}),
	)

	store.Set("a", 1)
	store.Set("b", 2, xttl.EntryObserver(func(v int, key string) {
		fmt.Println("own:", key, v)
		wg.Done()
	}))
	store.Set("c", 3)

	cancel()
	wg.Wait()
	fmt.Println("empty:", store.IsEmpty())
	// Output:
	// default: a 1
	// own: b 2
	// default: c 3
	// empty: true
}

func ExampleView_SetIndex() {
	store, _ := xttl.New[string]()
	view := store.View()

	view.SetIndex(3, "hello")
	for i := range store.Len() {
		v, _ := view.Index(i)
		fmt.Printf("%d:%q\n", i, v)
	}
	// Output:
	// 0:""
	// 1:""
	// 2:""
	// 3:"hello"
}

func ExampleStore_Slice() {
	store, _ := xttl.New[int]()
	store.Set("a", 1).Set("b", 2).Set("c", 3)

	fmt.Println(store.Slice(-2, store.Len()))
	fmt.Println(xttl.Reduce(store, func(acc, v, _ int) int { return acc + v }, 0))
	// Output:
	// [["b",2],["c",3]]
	// 6
}
