package borrows

// Box tracks the borrows of one storage location.
type Box struct {
	Type        any   // opaque to the checker
	Offset      int32 // frame slot of the variable, 0 is the first local
	Borrowed    int32 // -1 for a unique borrow, otherwise the number of shared borrows
	Permissions Perm
}

func NewBox(perms Perm, offset int32) *Box {
	return &Box{
		Offset:      offset,
		Permissions: perms,
	}
}

// compatible checks sig against the granted set: read, write and unique
// must be granted, output must match exactly.
func compatible(granted, sig Perm) error {
	const subset = Read | Write | Unique
	if sig&subset&^granted != 0 || sig&Output != granted&Output {
		return &SignatureError{
			Have: granted,
			Want: sig,
		}
	}
	return nil
}

// Acquire borrows the box with sig. Every successful Acquire must be paired
// with a Release using the same sig.
func (b *Box) Acquire(sig Perm) error {
	if err := compatible(b.Permissions, sig); err != nil {
		return err
	}
	if b.Borrowed == -1 {
		return &BorrowError{
			Box:  b,
			Want: sig,
		}
	}
	if sig&Unique != 0 {
		if b.Borrowed != 0 {
			return &BorrowError{
				Box:        b,
				Want:       sig,
				NeedUnique: true,
			}
		}
		b.Borrowed = -1
		return nil
	}
	b.Borrowed++
	return nil
}

func (b *Box) Release(sig Perm) {
	if sig&Unique != 0 {
		b.Borrowed = 0
	} else {
		b.Borrowed--
	}
}

func (b *Box) Unique() bool {
	return b.Borrowed == -1
}

// Idle reports whether no borrow is outstanding, as required when the binding leaves scope.
func (b *Box) Idle() bool {
	return b.Borrowed == 0
}
