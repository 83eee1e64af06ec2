package par

import (
	"errors"
	"sync/atomic"
	"testing"
)

func TestWork(t *testing.T) {
	var w Work[int]

	const N = 10000
	n := int32(0)
	w.Add(N)
	errs := w.Do(100, func(i int) error {
		atomic.AddInt32(&n, 1)
		if i >= 2 {
			w.Add(i - 1)
			w.Add(i - 2)
		}
		w.Add(i >> 1)
		w.Add((i >> 1) ^ 1)
		return nil
	})
	if n != N+1 {
		t.Fatalf("ran %d items, expected %d", n, N+1)
	}
	if errs != nil {
		t.Fatalf("Do returned errors %v", errs)
	}
}

func TestWorkErrors(t *testing.T) {
	var w Work[string]
	for _, item := range []string{"gcc", "clang", "msvc", "clangcl"} {
		w.Add(item)
	}
	w.Add("gcc")

	errBroken := errors.New("broken")
	errs := w.Do(3, func(item string) error {
		if item == "msvc" || item == "clangcl" {
			return errBroken
		}
		return nil
	})
	if len(errs) != 2 || errs["msvc"] != errBroken || errs["clangcl"] != errBroken {
		t.Errorf("Do errors = %v", errs)
	}
}

func TestWorkSerial(t *testing.T) {
	var w Work[int]
	running := int32(0)
	for i := 0; i < 50; i++ {
		w.Add(i)
	}
	w.Do(1, func(int) error {
		if atomic.AddInt32(&running, 1) != 1 {
			t.Error("two items ran at once with n = 1")
		}
		atomic.AddInt32(&running, -1)
		return nil
	})
}
