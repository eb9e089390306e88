package observability

import (
	"context"
	"testing"
	"time"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	e := NoopEditHooks{}
	e.OnEditStart(ctx, "expand", 2)
	e.OnEditComplete(ctx, "expand", 5, time.Millisecond, nil)
	e.OnRollback(ctx, "merge", nil)

	b := NoopBookHooks{}
	b.OnBookLoad(ctx, "book.toml", 12, nil)

	h := NoopHTTPHooks{}
	h.OnRequest(ctx, "POST", "/edits")
	h.OnResponse(ctx, "POST", "/edits", 200, time.Millisecond)
}

func TestGlobalHooksRegistry(t *testing.T) {
	Reset()

	if _, ok := Edit().(NoopEditHooks); !ok {
		t.Error("Edit() should return NoopEditHooks by default")
	}
	if _, ok := Book().(NoopBookHooks); !ok {
		t.Error("Book() should return NoopBookHooks by default")
	}
	if _, ok := HTTP().(NoopHTTPHooks); !ok {
		t.Error("HTTP() should return NoopHTTPHooks by default")
	}

	customEdit := &testEditHooks{}
	SetEditHooks(customEdit)
	if Edit() != customEdit {
		t.Error("SetEditHooks should set custom hooks")
	}

	customBook := &testBookHooks{}
	SetBookHooks(customBook)
	if Book() != customBook {
		t.Error("SetBookHooks should set custom hooks")
	}

	Reset()
	if _, ok := Edit().(NoopEditHooks); !ok {
		t.Error("Reset() should restore NoopEditHooks")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()

	custom := &testEditHooks{}
	SetEditHooks(custom)
	SetEditHooks(nil)

	if Edit() != custom {
		t.Error("SetEditHooks(nil) should be ignored")
	}
	Reset()
}

type testEditHooks struct{ NoopEditHooks }

type testBookHooks struct{ NoopBookHooks }
