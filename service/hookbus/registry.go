// Package hookbus 名前付きハンドラによるフック・イベント基盤を提供します
package hookbus

import (
	"sort"
	"sync"

	"github.com/leandro-lugaresi/hub"
	"go.uber.org/zap"

	"github.com/traPtitech/rolegate/event"
)

// HandlerFunc フック発火時に呼ばれる関数
//
// nameとtypは発火されたフックの識別子、payloadは発火側の任意データです。
type HandlerFunc func(name, typ string, payload interface{})

// AllTypes 全種別にマッチする種別名
const AllTypes = "all"

type hookKey struct {
	name string
	typ  string
}

type entry struct {
	handler  string
	priority int
	seq      uint64
}

// Registry 名前で登録・解除できるフックハンドラのレジストリ
//
// ハンドラの実体はAddFuncで名前に紐付け、フックへの登録はRegisterHandlerで
// 行います。実体が未登録の名前も登録・解除の対象にできます (発火時に無視)。
// rolegate.HandlerRegistryを実装します。
type Registry struct {
	hub    *hub.Hub
	logger *zap.Logger

	mu    sync.RWMutex
	funcs map[string]HandlerFunc
	hooks map[hookKey][]entry
	seq   uint64
}

// NewRegistry Registryを生成します
func NewRegistry(h *hub.Hub, logger *zap.Logger) *Registry {
	return &Registry{
		hub:    h,
		logger: logger.Named("hookbus"),
		funcs:  make(map[string]HandlerFunc),
		hooks:  make(map[hookKey][]entry),
	}
}

// AddFunc ハンドラ名に関数の実体を紐付けます
func (r *Registry) AddFunc(handler string, fn HandlerFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.funcs[handler] = fn
}

// RegisterHandler implements rolegate.HandlerRegistry interface.
//
// 同一フックへの登録は優先度昇順、同priorityは登録順に実行されます。
func (r *Registry) RegisterHandler(name, typ, handler string, priority int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	k := hookKey{name, typ}
	r.seq++
	entries := append(r.hooks[k], entry{handler: handler, priority: priority, seq: r.seq})
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].priority != entries[j].priority {
			return entries[i].priority < entries[j].priority
		}
		return entries[i].seq < entries[j].seq
	})
	r.hooks[k] = entries
}

// UnregisterHandler implements rolegate.HandlerRegistry interface.
func (r *Registry) UnregisterHandler(name, typ, handler string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	k := hookKey{name, typ}
	entries := r.hooks[k][:0:0]
	for _, e := range r.hooks[k] {
		if e.handler != handler {
			entries = append(entries, e)
		}
	}
	if len(entries) == 0 {
		delete(r.hooks, k)
		return
	}
	r.hooks[k] = entries
}

// UnregisterAll implements rolegate.HandlerRegistry interface.
func (r *Registry) UnregisterAll(name, typ string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.hooks, hookKey{name, typ})
}

// Handlers 指定したフック・種別に登録されているハンドラ名を実行順で返します
//
// 種別そのものへの登録に加え、AllTypesへの登録も含まれます。
func (r *Registry) Handlers(name, typ string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entries := append([]entry(nil), r.hooks[hookKey{name, typ}]...)
	if typ != AllTypes {
		entries = append(entries, r.hooks[hookKey{name, AllTypes}]...)
	}
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].priority != entries[j].priority {
			return entries[i].priority < entries[j].priority
		}
		return entries[i].seq < entries[j].seq
	})

	result := make([]string, len(entries))
	for i, e := range entries {
		result[i] = e.handler
	}
	return result
}

// Trigger フックを発火し、登録済みハンドラを実行順に呼び出します
//
// 実体が紐付いていないハンドラ名はスキップされます。
func (r *Registry) Trigger(name, typ string, payload interface{}) {
	handlers := r.Handlers(name, typ)

	r.mu.RLock()
	fns := make([]HandlerFunc, 0, len(handlers))
	for _, h := range handlers {
		fn, ok := r.funcs[h]
		if !ok {
			r.logger.Debug("skipping handler without registered func",
				zap.String("hook", name),
				zap.String("handler", h),
			)
			continue
		}
		fns = append(fns, fn)
	}
	r.mu.RUnlock()

	for _, fn := range fns {
		fn(name, typ, payload)
	}

	r.hub.Publish(hub.Message{
		Name: event.HookTriggered,
		Fields: hub.Fields{
			"hook_name": name,
			"hook_type": typ,
			"handlers":  len(fns),
		},
	})
}
