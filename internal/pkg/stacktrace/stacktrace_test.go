package stacktrace

import (
	"reflect"
	"testing"
)

func TestInternalPaths(t *testing.T) {
	stack := []byte(`goroutine 7 [running]:
runtime/debug.Stack()
	/usr/local/go/src/runtime/debug/stack.go:26 +0x5e
github.com/shandysiswandi/webauth/internal/pkg/router.middlewareRecoverer.func1.1()
	/src/internal/pkg/router/middleware_recover.go:28 +0x7a
panic({0x10, 0x20})
	/usr/local/go/src/runtime/panic.go:792 +0x132
github.com/shandysiswandi/webauth/internal/webauth/usecase.(*Usecase).Authenticate(...)
	/src/internal/webauth/usecase/authenticate.go:41
`)

	want := []string{
		"internal/pkg/router/middleware_recover.go:28",
		"internal/webauth/usecase/authenticate.go:41",
	}

	if got := InternalPaths(stack); !reflect.DeepEqual(got, want) {
		t.Fatalf("InternalPaths() = %v, want %v", got, want)
	}
}
