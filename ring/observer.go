package ring

// Op identifies a ring mutation reported to an Observer.
type Op uint8

const (
	OpInsert     Op = iota + 1 // new node created and linked
	OpRemove                   // linked node detached
	OpRelink                   // detached node linked again
	OpRelease                  // detached node returned to the free list
	OpSetCurrent               // cursor moved explicitly
)

func (o Op) String() string {
	switch o {
	case OpInsert:
		return "insert"
	case OpRemove:
		return "remove"
	case OpRelink:
		return "relink"
	case OpRelease:
		return "release"
	case OpSetCurrent:
		return "set-current"
	default:
		return "unknown"
	}
}

// Observer receives a call before and after every mutation, with the label
// the mutation concerns. Observers must not mutate the ring they observe.
type Observer interface {
	BeforeMutation(op Op, value uint32)
	AfterMutation(op Op, value uint32)
}

type nopObserver struct{}

func (nopObserver) BeforeMutation(Op, uint32) {}
func (nopObserver) AfterMutation(Op, uint32)  {}

// ObserverFuncs adapts plain functions to Observer. Nil fields are skipped.
type ObserverFuncs struct {
	Before func(op Op, value uint32)
	After  func(op Op, value uint32)
}

func (f ObserverFuncs) BeforeMutation(op Op, value uint32) {
	if f.Before != nil {
		f.Before(op, value)
	}
}

func (f ObserverFuncs) AfterMutation(op Op, value uint32) {
	if f.After != nil {
		f.After(op, value)
	}
}
