// Package paginator sequences the sections of a form one at a time and gates
// submission on the last section.
package paginator

import (
	"errors"
	"fmt"
)

// ErrEmptyForm reports a paginator over zero sections.
var ErrEmptyForm = errors.New("paginator: form has no sections")

// Paginator tracks the current section index. The zero value is an empty
// paginator.
type Paginator struct {
	count int
	index int
}

// New returns a paginator over count sections positioned on the first one.
func New(count int) *Paginator {
	if count < 0 {
		count = 0
	}
	return &Paginator{count: count}
}

// Count returns the number of sections.
func (p *Paginator) Count() int { return p.count }

// Index returns the current section index.
func (p *Paginator) Index() int { return p.index }

// Empty reports whether there is nothing to paginate.
func (p *Paginator) Empty() bool { return p.count == 0 }

// Next advances one section. It is a no-op on the last section and reports
// whether the index moved.
func (p *Paginator) Next() bool {
	if p.count == 0 || p.index >= p.count-1 {
		return false
	}
	p.index++
	return true
}

// Previous goes back one section. It is a no-op on the first section.
func (p *Paginator) Previous() bool {
	if p.index == 0 {
		return false
	}
	p.index--
	return true
}

// GoTo jumps to index i.
func (p *Paginator) GoTo(i int) error {
	if p.count == 0 {
		return ErrEmptyForm
	}
	if i < 0 || i >= p.count {
		return fmt.Errorf("paginator: index %d out of range [0, %d)", i, p.count)
	}
	p.index = i
	return nil
}

// IsFirst reports whether the first section is current.
func (p *Paginator) IsFirst() bool { return p.index == 0 }

// IsLast reports whether the last section is current.
func (p *Paginator) IsLast() bool {
	return p.count > 0 && p.index == p.count-1
}

// CanSubmit reports whether submission may be invoked.
func (p *Paginator) CanSubmit() bool { return p.IsLast() }

// Progress reports (index+1)/count, or ErrEmptyForm.
func (p *Paginator) Progress() (float64, error) {
	if p.count == 0 {
		return 0, ErrEmptyForm
	}
	return float64(p.index+1) / float64(p.count), nil
}
