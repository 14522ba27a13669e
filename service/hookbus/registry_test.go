package hookbus

import (
	"testing"

	"github.com/leandro-lugaresi/hub"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/traPtitech/rolegate/event"
)

func newTestRegistry() *Registry {
	return NewRegistry(hub.New(), zap.NewNop())
}

func TestRegistry_Handlers(t *testing.T) {
	t.Parallel()

	r := newTestRegistry()
	r.RegisterHandler("register", "menu:site", "b", 500)
	r.RegisterHandler("register", "menu:site", "a", 100)
	r.RegisterHandler("register", AllTypes, "c", 300)
	r.RegisterHandler("other", "menu:site", "x", 1)

	// 優先度昇順、all登録も含む
	assert.Equal(t, []string{"a", "c", "b"}, r.Handlers("register", "menu:site"))
	assert.Equal(t, []string{"c"}, r.Handlers("register", "menu:user"))
}

func TestRegistry_SamePriorityKeepsOrder(t *testing.T) {
	t.Parallel()

	r := newTestRegistry()
	r.RegisterHandler("h", "t", "first", 500)
	r.RegisterHandler("h", "t", "second", 500)
	assert.Equal(t, []string{"first", "second"}, r.Handlers("h", "t"))
}

func TestRegistry_Unregister(t *testing.T) {
	t.Parallel()

	r := newTestRegistry()
	r.RegisterHandler("h", "t", "a", 1)
	r.RegisterHandler("h", "t", "b", 2)

	r.UnregisterHandler("h", "t", "a")
	assert.Equal(t, []string{"b"}, r.Handlers("h", "t"))

	r.UnregisterAll("h", "t")
	assert.Empty(t, r.Handlers("h", "t"))
}

func TestRegistry_Trigger(t *testing.T) {
	t.Parallel()

	h := hub.New()
	r := NewRegistry(h, zap.NewNop())

	var calls []string
	r.AddFunc("a", func(name, typ string, payload interface{}) {
		calls = append(calls, "a:"+name+":"+typ)
		assert.Equal(t, 42, payload)
	})
	r.AddFunc("b", func(name, typ string, payload interface{}) {
		calls = append(calls, "b:"+name+":"+typ)
	})

	r.RegisterHandler("save", "object", "b", 200)
	r.RegisterHandler("save", AllTypes, "a", 100)
	// 実体の無いハンドラ名は発火時に無視される
	r.RegisterHandler("save", "object", "ghost", 1)

	sub := h.Subscribe(1, event.HookTriggered)

	r.Trigger("save", "object", 42)
	assert.Equal(t, []string{"a:save:object", "b:save:object"}, calls)

	msg := <-sub.Receiver
	require.Equal(t, event.HookTriggered, msg.Topic())
	assert.Equal(t, "save", msg.Fields["hook_name"])
	assert.Equal(t, 2, msg.Fields["handlers"])
}
