package sim

// A HookPos names a position in a component where hooks fire, such as a
// packet emission or a delivered transport block.
type HookPos struct {
	Name string
}

// HookCtx carries the information about the site that triggered a hook.
type HookCtx struct {
	Domain Hookable
	Pos    *HookPos
	Item   any
	Detail any
}

// Hookable is an object that accepts Hooks.
type Hookable interface {
	// AcceptHook registers a hook
	AcceptHook(hook Hook)
}

// HookPosBeforeEvent triggers before the engine handles an event.
var HookPosBeforeEvent = &HookPos{Name: "BeforeEvent"}

// HookPosAfterEvent triggers after the engine handled an event.
var HookPosAfterEvent = &HookPos{Name: "AfterEvent"}

// A Hook is a piece of code invoked at a hook position. Hooks observe the
// simulation without altering it.
type Hook interface {
	// Func determines what to do if hook is invoked.
	Func(ctx HookCtx)
}

// HookableBase provides the hook registry for types that implement the
// Hookable interface.
type HookableBase struct {
	Hooks []Hook
}

// AcceptHook registers a hook.
func (h *HookableBase) AcceptHook(hook Hook) {
	h.Hooks = append(h.Hooks, hook)
}

// InvokeHook calls every registered hook with the given context.
func (h *HookableBase) InvokeHook(ctx HookCtx) {
	for _, hook := range h.Hooks {
		hook.Func(ctx)
	}
}
