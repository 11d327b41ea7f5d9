package activity

import (
	"fmt"
	"sync"

	"subscribe-payflow/internal/domain/model"
	"subscribe-payflow/internal/domain/ports/adapter"
)

var (
	_ adapter.Page    = (*Page)(nil)
	_ adapter.Element = (*Element)(nil)
)

// Element is an in-memory page node.
type Element struct {
	mu       sync.Mutex
	id       string
	attrs    map[string]string
	children int
}

func NewElement(id string, attrs map[string]string, children int) *Element {
	return &Element{id: id, attrs: attrs, children: children}
}

func (e *Element) ID() string { return e.id }

func (e *Element) Attr(name string) string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.attrs[name]
}

func (e *Element) ClearChildren() {
	e.mu.Lock()
	e.children = 0
	e.mu.Unlock()
}

func (e *Element) Children() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.children
}

// Page is the set of slots the publisher page has registered.
type Page struct {
	mu      sync.Mutex
	slots   []*Element
	dialogs int
}

func NewPage() *Page { return &Page{} }

// AddInlineSlot registers a slot tagged with the inline CTA attribute.
func (p *Page) AddInlineSlot(id, attrValue string, children int) *Element {
	el := NewElement(id, map[string]string{model.InlineCTAAttr: attrValue}, children)
	p.mu.Lock()
	p.slots = append(p.slots, el)
	p.mu.Unlock()
	return el
}

func (p *Page) FindInlineSlot(attr, configID string) adapter.Element {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, el := range p.slots {
		if model.InlineSlotMatches(el.Attr(attr), configID) {
			return el
		}
	}
	return nil
}

func (p *Page) NewDialogFrame() adapter.Element {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.dialogs++
	return NewElement(fmt.Sprintf("swg-dialog-%d", p.dialogs), nil, 0)
}
